package packet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
)

// checksumSize is the size of the truncated checksum appended to every encrypted batch.
const checksumSize = 8

// Encryption holds the encryption state of one connection: a fixed key, a keystream per direction and a
// counter per direction. Counters start at zero, increase by one for every batch and never reset. The send
// and receive sides are independent, so an Encryption may be used by one Encoder and one Decoder at the same
// time as long as each side is only used by one goroutine.
type Encryption struct {
	key [32]byte

	sendCounter uint64
	sendStream  cipher.Stream

	receiveCounter uint64
	receiveStream  cipher.Stream
}

// NewEncryption creates an Encryption for the 32-byte key passed. AES-256 is used in counter mode with an IV
// made of the first 12 bytes of the key followed by the big-endian counter value 2.
func NewEncryption(key [32]byte) *Encryption {
	block, _ := aes.NewCipher(key[:])
	iv := append(append(make([]byte, 0, aes.BlockSize), key[:12]...), 0, 0, 0, 2)
	return &Encryption{
		key:           key,
		sendStream:    cipher.NewCTR(block, iv),
		receiveStream: cipher.NewCTR(block, iv),
	}
}

// Encrypt appends the checksum of data to it and encrypts the result in place. The send counter is
// incremented.
func (e *Encryption) Encrypt(data []byte) []byte {
	data = append(data, e.checksum(e.sendCounter, data)...)
	e.sendCounter++
	e.sendStream.XORKeyStream(data, data)
	return data
}

// Decrypt decrypts data in place and verifies the checksum at its end against the receive counter, which is
// incremented for every call. The plaintext without the checksum is returned, or an error wrapping
// ErrIntegrity if the checksum does not match.
func (e *Encryption) Decrypt(data []byte) ([]byte, error) {
	counter := e.receiveCounter
	e.receiveCounter++

	e.receiveStream.XORKeyStream(data, data)
	if len(data) < checksumSize {
		return nil, fmt.Errorf("%w: encrypted batch of %d bytes is too short for a checksum", ErrIntegrity, len(data))
	}
	plaintext, sum := data[:len(data)-checksumSize], data[len(data)-checksumSize:]
	if subtle.ConstantTimeCompare(sum, e.checksum(counter, plaintext)) != 1 {
		return nil, fmt.Errorf("%w: checksum mismatch for batch %d", ErrIntegrity, counter)
	}
	return plaintext, nil
}

// checksum computes SHA-256(counter LE || data || key), truncated to checksumSize bytes.
func (e *Encryption) checksum(counter uint64, data []byte) []byte {
	h := sha256.New()
	_ = binary.Write(h, binary.LittleEndian, counter)
	h.Write(data)
	h.Write(e.key[:])
	return h.Sum(nil)[:checksumSize]
}
