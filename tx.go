package nuodb

// Tx adapts Conn's transaction facade (spec §4.H) to
// database/sql/driver.Tx. Conn.Begin turns auto-commit off for the
// duration; Commit/Rollback restore it once the transaction resolves, the
// way the teacher's tx.go ran plain COMMIT/ROLLBACK statements through
// handleExec instead of dedicated opcodes.
type Tx struct {
	c *Conn
}

func (t *Tx) Commit() error {
	if err := t.c.CommitTransaction(); err != nil {
		return err
	}
	return t.c.SetAutoCommit(true)
}

func (t *Tx) Rollback() error {
	if err := t.c.RollbackTransaction(); err != nil {
		return err
	}
	return t.c.SetAutoCommit(true)
}
