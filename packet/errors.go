package packet

import (
	"errors"
	"fmt"
)

var (
	// ErrFraming is returned when a frame has a bad header or its length framing is malformed.
	ErrFraming = errors.New("framing error")
	// ErrIntegrity is returned when the checksum of a decrypted frame does not match its contents.
	ErrIntegrity = errors.New("integrity check failed")
	// ErrCompression is returned when a batch could not be compressed or decompressed.
	ErrCompression = errors.New("compression error")
	// ErrProtocol is returned when a peer violates the protocol, such as by sending too many packets in one
	// frame or a packet that cannot be decoded.
	ErrProtocol = errors.New("protocol error")
	// ErrUnknownPacket is returned when a packet ID is not present in a Pool. It wraps ErrProtocol.
	ErrUnknownPacket = fmt.Errorf("%w: unknown packet", ErrProtocol)
)
