package nuodb

import (
	"context"
)

// exchange is the single call site every opcode handler in statement.go,
// resultset.go, tx.go and conn.go goes through: it begins a frame, encodes
// the opcode as a tagged integer, lets writeFields append the request's
// remaining fields, flushes the frame, reads the response, and decodes the
// standard zero/non-zero status prefix — generalizing the teacher's
// handleQuery/handleExec dispatch (prot_text.go) from MySQL's
// command-byte-then-payload shape and per-command packet parsing to
// NuoDB's tagged-opcode-then-fields shape and uniform status-prefix
// parsing (spec §4.F).
//
// The connection's in-flight semaphore enforces "exactly one message in
// flight per connection" (spec §3) even if a caller's own serialization
// slips; it is acquired for the full round trip and released once the
// response has been fully read, mirroring litebase's connection_pool.go
// use of golang.org/x/sync/semaphore to bound concurrent use of a pooled
// connection.
func (c *Conn) exchange(op opcode, writeFields func(dst []byte) []byte) ([]byte, error) {
	if err := c.sem.Acquire(context.Background(), 1); err != nil {
		return nil, wrapError(InterfaceError, err, "failed to acquire connection")
	}
	defer c.sem.Release(1)

	if c.broken {
		return nil, newError(ConnectionLost, "connection is closed")
	}

	req := encodeOpcode(nil, op)
	req = writeFields(req)

	if err := c.fs.writeFrame(req); err != nil {
		c.markBroken()
		return nil, err
	}

	resp, err := c.fs.readFrame()
	if err != nil {
		c.markBroken()
		return nil, err
	}

	statusVal, rest, err := decodeValue(resp)
	if err != nil {
		c.markBroken()
		return nil, wrapError(ProtocolError, err, "malformed response status for opcode %d", op)
	}

	code, _ := statusVal.asInt64()
	if code == 0 {
		return rest, nil
	}

	msgVal, rest, err := decodeValue(rest)
	if err != nil {
		c.markBroken()
		return nil, wrapError(ProtocolError, err, "malformed error message for opcode %d", op)
	}
	sqlStateVal, _, err := decodeValue(rest)
	if err != nil {
		c.markBroken()
		return nil, wrapError(ProtocolError, err, "malformed SQLSTATE for opcode %d", op)
	}

	return nil, newDatabaseError(int32(code), msgVal.str, sqlStateVal.str)
}

// markBroken transitions the connection to a permanently unusable state.
// exchange calls it for write/read failures and for a malformed status,
// message or SQLSTATE field; a DatabaseError leaves the connection usable.
// Errors that opcode handlers raise after exchange returns (for example a
// malformed response body) and argument checks made before exchange do not
// mark the connection broken.
func (c *Conn) markBroken() {
	c.broken = true
}
