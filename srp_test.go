package nuodb

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// serverSRP is a minimal RFC 5054 server-side verifier used only to check
// that clientSRP derives the same session key a real NuoDB engine would,
// grounded on original_source/pynuodb/crypt.py's RemotePassword: the server
// holds a verifier v = g^x mod N and a random b, publishes B = (k*v + g^b)
// mod N, and derives S = (A * v^u) ^ b mod N.
type serverSRP struct {
	group *srpGroup
	b     *big.Int
	pub   *big.Int
	v     *big.Int
}

func newServerSRP(group *srpGroup, x *big.Int) (*serverSRP, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	b := new(big.Int).SetBytes(buf)
	v := new(big.Int).Exp(group.generator, x, group.prime)
	gb := new(big.Int).Exp(group.generator, b, group.prime)
	kv := new(big.Int).Mod(new(big.Int).Mul(group.k, v), group.prime)
	pub := new(big.Int).Mod(new(big.Int).Add(kv, gb), group.prime)
	return &serverSRP{group: group, b: b, pub: pub, v: v}, nil
}

func (s *serverSRP) sessionKey(clientPub *big.Int) []byte {
	u := srpScramble(clientPub, s.pub)
	vu := new(big.Int).Exp(s.v, u, s.group.prime)
	avu := new(big.Int).Mod(new(big.Int).Mul(clientPub, vu), s.group.prime)
	secret := new(big.Int).Exp(avu, s.b, s.group.prime)
	h := sha1.Sum(secret.Bytes())
	return h[:]
}

func TestSRPHandshakeDerivesMatchingSessionKey(t *testing.T) {
	const account = "dba"
	const password = "goalie"

	group := newSRPGroup()
	salt := make([]byte, 16)
	_, err := rand.Read(salt)
	require.NoError(t, err)

	x := srpUserHash(account, password, salt)
	server, err := newServerSRP(group, x)
	require.NoError(t, err)

	client := newClientSRP()
	clientPubHex, err := client.genClientKey()
	require.NoError(t, err)
	require.NotEmpty(t, clientPubHex)

	saltHex := hex.EncodeToString(salt)
	serverKeyHex := toHexUpper(server.pub)

	clientKey, err := client.computeSessionKey(account, password, saltHex, serverKeyHex)
	require.NoError(t, err)

	serverKey := server.sessionKey(client.publicKey)
	require.Equal(t, serverKey, clientKey)
}

func TestSRPWrongPasswordDerivesDifferentKey(t *testing.T) {
	const account = "dba"

	group := newSRPGroup()
	salt := make([]byte, 16)
	_, err := rand.Read(salt)
	require.NoError(t, err)

	x := srpUserHash(account, "correct-password", salt)
	server, err := newServerSRP(group, x)
	require.NoError(t, err)

	client := newClientSRP()
	_, err = client.genClientKey()
	require.NoError(t, err)

	saltHex := hex.EncodeToString(salt)
	serverKeyHex := toHexUpper(server.pub)

	clientKey, err := client.computeSessionKey(account, "wrong-password", saltHex, serverKeyHex)
	require.NoError(t, err)

	serverKey := server.sessionKey(client.publicKey)
	require.NotEqual(t, serverKey, clientKey)
}

func TestComputeSessionKeyBeforeGenClientKey(t *testing.T) {
	client := newClientSRP()
	_, err := client.computeSessionKey("dba", "pw", "AA", "BB")
	require.Error(t, err)
}

func TestComputeSessionKeyMalformedServerKey(t *testing.T) {
	client := newClientSRP()
	_, err := client.genClientKey()
	require.NoError(t, err)
	_, err = client.computeSessionKey("dba", "pw", "AA", "not hex at all!")
	require.Error(t, err)
}

func TestGenClientKeyIsRandomized(t *testing.T) {
	a := newClientSRP()
	b := newClientSRP()
	keyA, err := a.genClientKey()
	require.NoError(t, err)
	keyB, err := b.genClientKey()
	require.NoError(t, err)
	require.NotEqual(t, keyA, keyB)
}
