package login

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/cooldogedev/prism/conn"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

const (
	identityTokenLifetime = time.Hour * 6
	tokenLeeway           = time.Minute
	saltSize              = 16
)

// identityClaims are the claims of the token a client sends in Login.
type identityClaims struct {
	jwt.Claims
	IdentityPublicKey string            `json:"identityPublicKey"`
	ExtraData         conn.IdentityData `json:"extraData"`
}

// handshakeClaims are the claims of the token a server sends in ServerToClientHandshake. Salt is empty when
// the server does not enable encryption.
type handshakeClaims struct {
	Salt string `json:"salt,omitempty"`
}

// signToken signs claims with key using ES384. The public key is put in the x5u header so that the token can
// be verified without any prior knowledge of the key.
func signToken(key *ecdsa.PrivateKey, claims any) (string, error) {
	x5u, err := marshalPublicKey(&key.PublicKey)
	if err != nil {
		return "", err
	}
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.ES384, Key: key}, &jose.SignerOptions{
		ExtraHeaders: map[jose.HeaderKey]any{"x5u": x5u},
	})
	if err != nil {
		return "", fmt.Errorf("create signer: %w", err)
	}
	return jwt.Signed(signer).Claims(claims).Serialize()
}

// parseToken verifies token against the key in its x5u header and decodes its claims into claims. The key
// the token was signed with is returned.
func parseToken(token string, claims any) (*ecdsa.PublicKey, error) {
	tok, err := jwt.ParseSigned(token, []jose.SignatureAlgorithm{jose.ES384})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if len(tok.Headers) != 1 {
		return nil, fmt.Errorf("parse token: expected 1 signature, got %d", len(tok.Headers))
	}
	x5u, ok := tok.Headers[0].ExtraHeaders["x5u"].(string)
	if !ok {
		return nil, errors.New("parse token: missing x5u header")
	}
	key, err := parsePublicKey(x5u)
	if err != nil {
		return nil, err
	}
	if err := tok.Claims(key, claims); err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	return key, nil
}

func marshalPublicKey(key *ecdsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return "", fmt.Errorf("marshal public key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

func parsePublicKey(s string) (*ecdsa.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}
	k, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	key, ok := k.(*ecdsa.PublicKey)
	if !ok || key.Curve != elliptic.P384() {
		return nil, errors.New("parse public key: expected a P-384 ECDSA key")
	}
	return key, nil
}

// sharedKey computes the encryption key from the ECDH secret of priv and pub: SHA-256(salt || secret).
func sharedKey(priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey, salt []byte) ([32]byte, error) {
	local, err := priv.ECDH()
	if err != nil {
		return [32]byte{}, err
	}
	remote, err := pub.ECDH()
	if err != nil {
		return [32]byte{}, err
	}
	secret, err := local.ECDH(remote)
	if err != nil {
		return [32]byte{}, fmt.Errorf("compute shared secret: %w", err)
	}
	return sha256.Sum256(append(append(make([]byte, 0, len(salt)+len(secret)), salt...), secret...)), nil
}
