package login

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"strings"
	"testing"
)

func generateKey(t *testing.T, curve elliptic.Curve) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func TestTokenRoundTrip(t *testing.T) {
	key := generateKey(t, elliptic.P384())
	token, err := signToken(key, handshakeClaims{Salt: "c2FsdA"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	var claims handshakeClaims
	pub, err := parseToken(token, &claims)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !pub.Equal(&key.PublicKey) {
		t.Error("parsed key does not match signing key")
	}
	if claims.Salt != "c2FsdA" {
		t.Errorf("got salt %q", claims.Salt)
	}
}

func TestTokenTampered(t *testing.T) {
	token, err := signToken(generateKey(t, elliptic.P384()), handshakeClaims{Salt: "a"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	parts := strings.Split(token, ".")
	other, err := signToken(generateKey(t, elliptic.P384()), handshakeClaims{Salt: "b"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	// Claims of one token with the header and signature of another.
	parts[1] = strings.Split(other, ".")[1]
	if _, err := parseToken(strings.Join(parts, "."), &handshakeClaims{}); err == nil {
		t.Error("expected tampered token to fail verification")
	}
	if _, err := parseToken("not.a.token", &handshakeClaims{}); err == nil {
		t.Error("expected malformed token to fail")
	}
}

func TestParsePublicKeyCurve(t *testing.T) {
	s, err := marshalPublicKey(&generateKey(t, elliptic.P256()).PublicKey)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := parsePublicKey(s); err == nil {
		t.Error("expected P-256 key to be rejected")
	}
}

func TestSharedKey(t *testing.T) {
	a, b := generateKey(t, elliptic.P384()), generateKey(t, elliptic.P384())
	salt := []byte("0123456789abcdef")
	k1, err := sharedKey(a, &b.PublicKey, salt)
	if err != nil {
		t.Fatalf("shared key: %v", err)
	}
	k2, err := sharedKey(b, &a.PublicKey, salt)
	if err != nil {
		t.Fatalf("shared key: %v", err)
	}
	if k1 != k2 {
		t.Error("keys derived on both ends differ")
	}
	k3, _ := sharedKey(a, &b.PublicKey, []byte("another salt"))
	if k1 == k3 {
		t.Error("salt does not affect the key")
	}
}
