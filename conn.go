package nuodb

import (
	"database/sql/driver"

	"slices"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Transaction isolation levels, numbered the way java.sql.Connection and
// the NuoDB JDBC driver number them -- the server expects these values on
// the wire, not database/sql's own IsolationLevel ordinals.
const (
	isolationReadCommitted  = 2
	isolationRepeatableRead = 4
	isolationSerializable   = 8
	isolationWriteCommitted = 1025
	isolationConsistentRead = 1024
)

var knownIsolationLevels = []int{
	isolationReadCommitted,
	isolationRepeatableRead,
	isolationSerializable,
	isolationWriteCommitted,
	isolationConsistentRead,
}

// Conn is a single NuoDB connection: one TCP socket, its negotiated cipher
// pair, and the session state the protocol hangs off it (spec §4.H) --
// auto-commit flag, isolation level, read-only flag, and the last
// transaction's (tx_id, node_id, commit_seq) tuple. It does not track the
// statement handles opened on it; each Statement is closed on its own.
// It generalizes the teacher's prot_conn.go Conn, replacing MySQL's
// sequence-numbered packet framing and statusFlags byte with frameStream's
// ciphered length-prefixed frames and the tagged zero/non-zero status
// prefix every opcode response carries.
type Conn struct {
	fs     *frameStream
	cfg    *connConfig
	logger Logger
	sem    *semaphore.Weighted

	broken bool

	serverProtocolVersion int
	databaseUUID          uuid.UUID
	connectionID          int64

	autoCommit       bool
	readOnly         bool
	isolation        int
	hasPendingCommit bool
	txID             int64
	nodeID           int64
	commitSeq        int64
}

// openConn dials, wraps the socket in a frameStream, and runs the SRP
// handshake, the way the teacher's prot_conn.go open() dialed and then
// negotiated the MySQL handshake packet before returning a ready *Conn.
func openConn(cfg *connConfig, logger Logger) (*Conn, error) {
	netConn, err := dial(cfg.address, cfg.connectTimeout)
	if err != nil {
		return nil, wrapError(ConnectionLost, err, "failed to connect to %s", cfg.address)
	}

	fs := newFrameStream(netConn)
	fs.readTimeout = cfg.readTimeout
	fs.writeTimeout = cfg.writeTimeout

	result, err := performHandshake(fs, cfg, logger)
	if err != nil {
		fs.close()
		return nil, err
	}

	c := &Conn{
		fs:                    fs,
		cfg:                   cfg,
		logger:                logger,
		sem:                   semaphore.NewWeighted(1),
		serverProtocolVersion: result.serverProtocolVersion,
		databaseUUID:          result.databaseUUID,
		connectionID:          result.connectionID,
		autoCommit:            true,
		isolation:             isolationReadCommitted,
	}
	return c, nil
}

// SetAutoCommit toggles whether a successful Execute implicitly commits
// (spec §4.H). Turning it on while a transaction is open commits that
// transaction as a side effect, mirroring the server's own behavior.
func (c *Conn) SetAutoCommit(autoCommit bool) error {
	_, err := c.exchange(opSetAutoCommit, func(dst []byte) []byte {
		dst, _ = encodeValue(dst, BoolValue(autoCommit))
		return dst
	})
	if err != nil {
		return err
	}
	c.autoCommit = autoCommit
	return nil
}

// SetReadOnly marks the connection read-only, rejecting further writes at
// the server until cleared.
func (c *Conn) SetReadOnly(readOnly bool) error {
	_, err := c.exchange(opSetReadOnly, func(dst []byte) []byte {
		dst, _ = encodeValue(dst, BoolValue(readOnly))
		return dst
	})
	if err != nil {
		return err
	}
	c.readOnly = readOnly
	return nil
}

// SetTransactionIsolation negotiates the isolation level for subsequent
// transactions, using the java.sql.Connection-style level constants above.
func (c *Conn) SetTransactionIsolation(level int) error {
	if !slices.Contains(knownIsolationLevels, level) {
		return newError(InterfaceError, "unknown transaction isolation level %d", level)
	}
	_, err := c.exchange(opSetTransactionIsolation, func(dst []byte) []byte {
		dst, _ = encodeValue(dst, IntValue(int64(level)))
		return dst
	})
	if err != nil {
		return err
	}
	c.isolation = level
	return nil
}

// SupportTransactionIsolation asks the server whether it implements level
// at all, a capability probe distinct from actually setting it.
func (c *Conn) SupportTransactionIsolation(level int) (bool, error) {
	resp, err := c.exchange(opSupportsTransactionIsolation, func(dst []byte) []byte {
		dst, _ = encodeValue(dst, IntValue(int64(level)))
		return dst
	})
	if err != nil {
		return false, err
	}
	v, _, err := decodeValue(resp)
	if err != nil {
		return false, wrapError(ProtocolError, err, "malformed SupportsTransactionIsolation response")
	}
	return v.b, nil
}

// SetSavePoint asks the server to mark a new savepoint within the current
// transaction and returns its server-assigned id (spec §4.H, restoring the
// pynuodb/cursor.py savepoint lifecycle the distilled spec had dropped).
func (c *Conn) SetSavePoint() (int64, error) {
	resp, err := c.exchange(opSetSavepoint, func(dst []byte) []byte { return dst })
	if err != nil {
		return 0, err
	}
	v, _, err := decodeValue(resp)
	if err != nil {
		return 0, wrapError(ProtocolError, err, "malformed SetSavepoint response")
	}
	id, _ := v.asInt64()
	return id, nil
}

// ReleaseSavePoint discards a savepoint without rolling back to it.
func (c *Conn) ReleaseSavePoint(id int64) error {
	_, err := c.exchange(opReleaseSavepoint, func(dst []byte) []byte {
		dst, _ = encodeValue(dst, IntValue(id))
		return dst
	})
	return err
}

// RollbackToSavePoint undoes every statement executed after id was
// established, leaving the transaction open.
func (c *Conn) RollbackToSavePoint(id int64) error {
	_, err := c.exchange(opRollbackToSavepoint, func(dst []byte) []byte {
		dst, _ = encodeValue(dst, IntValue(id))
		return dst
	})
	return err
}

// CommitTransaction commits the current transaction. On success the server
// returns the (tx_id, node_id, commit_seq) tuple identifying the commit,
// which Execute's "has pending commit" bookkeeping (statement.go) depends
// on for the next read's consistency point (spec §4.G).
func (c *Conn) CommitTransaction() error {
	resp, err := c.exchange(opCommitTransaction, func(dst []byte) []byte { return dst })
	if err != nil {
		return err
	}
	if txIDVal, rest, err := decodeValue(resp); err == nil {
		if nodeIDVal, rest2, err2 := decodeValue(rest); err2 == nil {
			if commitSeqVal, _, err3 := decodeValue(rest2); err3 == nil {
				c.txID, _ = txIDVal.asInt64()
				c.nodeID, _ = nodeIDVal.asInt64()
				c.commitSeq, _ = commitSeqVal.asInt64()
			}
		}
	}
	c.hasPendingCommit = false
	return nil
}

// RollbackTransaction aborts the current transaction and discards the
// cached (tx_id, node_id, commit_seq) tuple, per spec §4.H.
func (c *Conn) RollbackTransaction() error {
	_, err := c.exchange(opRollbackTransaction, func(dst []byte) []byte { return dst })
	if err != nil {
		return err
	}
	c.hasPendingCommit = false
	c.txID, c.nodeID, c.commitSeq = 0, 0, 0
	return nil
}

// Close sends a best-effort Close opcode and then tears down the socket
// unconditionally, per spec §5 -- a failure to notify the server never
// prevents the local resources from being released.
func (c *Conn) Close() error {
	if !c.broken {
		c.exchange(opClose, func(dst []byte) []byte { return dst })
	}
	c.markBroken()
	return c.fs.close()
}

func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return c.prepareStatement(query)
}

// Begin implements database/sql/driver.Conn by turning auto-commit off for
// the duration of the transaction; Tx.Commit/Tx.Rollback (tx.go) restore it.
func (c *Conn) Begin() (driver.Tx, error) {
	if c.autoCommit {
		if err := c.SetAutoCommit(false); err != nil {
			return nil, err
		}
	}
	return &Tx{c: c}, nil
}
