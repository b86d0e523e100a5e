package nuodb

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rc4"
	"crypto/sha1"
)

// streamCipher is the bidirectional transform applied to every byte on the
// wire once the SRP handshake completes. It mirrors pynuodb's BaseCipher:
// a single Transform-like pair of methods, selected once at connect time
// and never renegotiated for the life of the connection.
type streamCipher interface {
	encrypt(dst, src []byte)
	decrypt(dst, src []byte)
}

// noCipher leaves the stream in the clear, used only before authentication
// and for the (discouraged) unencrypted legacy mode some deployments allow.
type noCipher struct{}

func (noCipher) encrypt(dst, src []byte) { copy(dst, src) }
func (noCipher) decrypt(dst, src []byte) { copy(dst, src) }

// rc4StreamCipher wraps two independent crypto/rc4 keystreams, one per
// direction, both seeded from the same SRP session key. NuoDB's engines run
// one RC4 instance for outbound and one for inbound traffic rather than
// sharing a single keystream, so encrypt and decrypt never interfere.
type rc4StreamCipher struct {
	out *rc4.Cipher
	in  *rc4.Cipher
}

func newRC4StreamCipher(sessionKey []byte) (*rc4StreamCipher, error) {
	out, err := rc4.NewCipher(sessionKey)
	if err != nil {
		return nil, wrapError(AuthFailed, err, "failed to initialize RC4 cipher")
	}
	in, err := rc4.NewCipher(sessionKey)
	if err != nil {
		return nil, wrapError(AuthFailed, err, "failed to initialize RC4 cipher")
	}
	return &rc4StreamCipher{out: out, in: in}, nil
}

func (c *rc4StreamCipher) encrypt(dst, src []byte) { c.out.XORKeyStream(dst, src) }
func (c *rc4StreamCipher) decrypt(dst, src []byte) { c.in.XORKeyStream(dst, src) }

// aesCTRStreamCipher implements the newer AES-256-CTR option. The 20-byte
// SRP session key K1 is stretched to 40 bytes via K2 = SHA1(K1), K = K1||K2;
// the first 32 bytes become the AES-256 key and the first 16 bytes of K2
// (bytes 20..35 of K, overlapping the key's tail) become the initial
// counter block, matching spec.md's key-expansion for this cipher.
type aesCTRStreamCipher struct {
	out cipher.Stream
	in  cipher.Stream
}

func expandAESKey(sessionKey []byte) (key [32]byte, iv [16]byte) {
	k1 := sessionKey
	k2 := sha1.Sum(k1)
	expanded := append(append([]byte{}, k1...), k2[:]...)
	copy(key[:], expanded[0:32])
	copy(iv[:], expanded[20:36])
	return
}

func newAESCTRStreamCipher(sessionKey []byte) (*aesCTRStreamCipher, error) {
	key, iv := expandAESKey(sessionKey)

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, wrapError(AuthFailed, err, "failed to initialize AES cipher")
	}
	return &aesCTRStreamCipher{
		out: cipher.NewCTR(block, iv[:]),
		in:  cipher.NewCTR(block, iv[:]),
	}, nil
}

func (c *aesCTRStreamCipher) encrypt(dst, src []byte) { c.out.XORKeyStream(dst, src) }
func (c *aesCTRStreamCipher) decrypt(dst, src []byte) { c.in.XORKeyStream(dst, src) }

// cipherSuite identifies which stream cipher the handshake negotiated.
type cipherSuite string

const (
	cipherNone   cipherSuite = "None"
	cipherRC4    cipherSuite = "RC4"
	cipherAES256 cipherSuite = "AES-256-CTR"
)

func newStreamCipher(suite cipherSuite, sessionKey []byte) (streamCipher, error) {
	switch suite {
	case cipherNone, "":
		return noCipher{}, nil
	case cipherRC4:
		return newRC4StreamCipher(sessionKey)
	case cipherAES256:
		return newAESCTRStreamCipher(sessionKey)
	default:
		return nil, newError(ProtocolError, "unsupported cipher suite %q", suite)
	}
}
