package nuodb

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"math/big"
	"strings"
)

// srpPrimeHex is the 1024-bit SRP-6a group prime shared by every NuoDB
// engine and admin process. generator is always 2.
const srpPrimeHex = "EEAF0AB9ADB38DD69C33F80AFA8FC5E86072618775FF3C0B9EA2314C" +
	"9C256576D674DF7496EA81D3383B4813D692C6E0E0D5D8E250B98BE4" +
	"8E495C1D6089DAD15DC7D7B46154D6B6CE8EF4AD69B15D4982559B29" +
	"7BCF1885C529F566660E57EC68EDBC3C05726CC02FD4CBF4976EAA9A" +
	"FD5138FE8376435B9FC61D2FC0EB06E3"

// srpGroup holds the SRP-6a (N, g, k) triple. k = H(N || pad || g), where
// pad zero-extends g's byte string up to len(N)'s byte string.
type srpGroup struct {
	prime     *big.Int
	generator *big.Int
	k         *big.Int
}

func newSRPGroup() *srpGroup {
	n, ok := new(big.Int).SetString(srpPrimeHex, 16)
	if !ok {
		panic("nuodb: invalid SRP prime constant")
	}
	g := big.NewInt(2)

	nBytes := n.Bytes()
	gBytes := g.Bytes()
	pad := len(nBytes) - len(gBytes)

	h := sha1.New()
	h.Write(nBytes)
	if pad > 0 {
		h.Write(make([]byte, pad))
	}
	h.Write(gBytes)

	return &srpGroup{
		prime:     n,
		generator: g,
		k:         new(big.Int).SetBytes(h.Sum(nil)),
	}
}

// clientSRP drives the client side of one SRP-6a authenticated key exchange,
// mirroring pynuodb's ClientPassword: genClientKey() then
// computeSessionKey(account, password, salt, serverKey).
type clientSRP struct {
	group      *srpGroup
	privateKey *big.Int
	publicKey  *big.Int
}

func newClientSRP() *clientSRP {
	return &clientSRP{group: newSRPGroup()}
}

// genClientKey picks a random 256-bit private exponent a and returns the
// client's public ephemeral A = g^a mod N as uppercase hex, for the
// ClientKey field of the SRPRequest message (spec.md §4.A).
func (c *clientSRP) genClientKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", wrapError(AuthFailed, err, "failed to generate SRP private key")
	}
	c.privateKey = new(big.Int).SetBytes(buf)
	c.publicKey = new(big.Int).Exp(c.group.generator, c.privateKey, c.group.prime)
	return toHexUpper(c.publicKey), nil
}

// computeSessionKey derives the shared 20-byte SHA-1 session key from the
// account, password, server-supplied salt (hex) and server public key
// (hex), following exactly the RFC 5054 / pynuodb crypt.py steps:
//
//	x = H(salt || H(account ':' password))
//	u = H(A || B)
//	S = (B - k*g^x) ^ (a + u*x) mod N
//	K = H(S)
func (c *clientSRP) computeSessionKey(account, password, saltHex, serverKeyHex string) ([]byte, error) {
	if c.privateKey == nil || c.publicKey == nil {
		return nil, newError(AuthFailed, "computeSessionKey called before genClientKey")
	}

	serverPub, ok := new(big.Int).SetString(serverKeyHex, 16)
	if !ok {
		return nil, newError(ProtocolError, "malformed server public key in SRP exchange")
	}

	salt, err := hex.DecodeString(evenHex(saltHex))
	if err != nil {
		return nil, wrapError(ProtocolError, err, "malformed salt in SRP exchange")
	}

	prime := c.group.prime

	x := srpUserHash(account, password, salt)
	u := srpScramble(c.publicKey, serverPub)

	gx := new(big.Int).Exp(c.group.generator, x, prime)
	kgx := new(big.Int).Mod(new(big.Int).Mul(c.group.k, gx), prime)
	diff := new(big.Int).Mod(new(big.Int).Sub(serverPub, kgx), prime)

	ux := new(big.Int).Mod(new(big.Int).Mul(u, x), prime)
	aux := new(big.Int).Mod(new(big.Int).Add(c.privateKey, ux), prime)

	secret := new(big.Int).Exp(diff, aux, prime)

	h := sha1.New()
	h.Write(secret.Bytes())
	return h.Sum(nil), nil
}

// srpUserHash computes x = SHA1(salt || SHA1(account ':' password)).
func srpUserHash(account, password string, salt []byte) *big.Int {
	inner := sha1.Sum([]byte(account + ":" + password))
	h := sha1.New()
	h.Write(salt)
	h.Write(inner[:])
	return new(big.Int).SetBytes(h.Sum(nil))
}

// srpScramble computes u = SHA1(A || B) from the client and server public
// ephemerals, each serialized as a minimal unsigned big-endian byte string.
func srpScramble(clientPub, serverPub *big.Int) *big.Int {
	h := sha1.New()
	h.Write(clientPub.Bytes())
	h.Write(serverPub.Bytes())
	return new(big.Int).SetBytes(h.Sum(nil))
}

// toHexUpper renders v as the even-length uppercase hex string the wire
// protocol uses for ClientKey, Salt and ServerKey fields.
func toHexUpper(v *big.Int) string {
	return strings.ToUpper(evenHex(v.Text(16)))
}

func evenHex(s string) string {
	if len(s)%2 == 1 {
		return "0" + s
	}
	return s
}
