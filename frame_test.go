package nuodb

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFrameStreamRoundTripPlain(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	cfs := newFrameStream(client)
	sfs := newFrameStream(server)

	msg := []byte("OpenDatabase payload")
	done := make(chan error, 1)
	go func() { done <- cfs.writeFrame(msg) }()

	got, err := sfs.readFrame()
	require.NoError(t, err)
	require.NoError(t, <-done)
	require.Equal(t, msg, got)
}

func TestFrameStreamRoundTripCiphered(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	cfs := newFrameStream(client)
	sfs := newFrameStream(server)

	// Both sides derive the same key and IV from the shared SRP session key
	// and run independent CTR counters starting at the same state, so a
	// second instance built from the same key keeps step with the first as
	// long as both consume bytes in the same order -- no direction swap
	// needed, just as with RC4, whose out/in keystreams are also seeded
	// identically from the session key.
	sessionKey := []byte("0123456789abcdef0123456789abcdef")
	clientCipher, err := newStreamCipher(cipherAES256, sessionKey)
	require.NoError(t, err)
	serverCipher, err := newStreamCipher(cipherAES256, sessionKey)
	require.NoError(t, err)
	cfs.setCipher(clientCipher)
	sfs.setCipher(serverCipher)

	msg := []byte("ciphered frame body, longer than one AES block to exercise CTR keystream continuity")
	done := make(chan error, 1)
	go func() { done <- cfs.writeFrame(msg) }()

	got, err := sfs.readFrame()
	require.NoError(t, err)
	require.NoError(t, <-done)
	require.Equal(t, msg, got)
}

func TestFrameStreamRejectsOversizedLength(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		var lenBytes [4]byte
		putUint32(lenBytes[:], maxFrameLength+1)
		client.Write(lenBytes[:])
	}()

	sfs := newFrameStream(server)
	_, err := sfs.readFrame()
	require.Error(t, err)
}

func TestFrameStreamReadTimeout(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sfs := newFrameStream(server)
	sfs.readTimeout = 20 * time.Millisecond
	_, err := sfs.readFrame()
	require.Error(t, err)
	var de *DriverError
	require.ErrorAs(t, err, &de)
	require.Equal(t, Timeout, de.Kind)
}
