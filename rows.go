package nuodb

import (
	"database/sql/driver"
	"io"
)

// Rows adapts a resultSet to database/sql/driver.Rows, generalizing the
// teacher's rows.go from a MySQL binary-protocol row buffer decoded once
// up front to NuoDB's windowed, server-driven row stream (spec §4.G): Next
// pulls from the current window and transparently reopens it with the
// Next opcode once a window is spent.
type Rows struct {
	rs     *resultSet
	closed bool
}

func (r *Rows) Columns() []string {
	if r.rs == nil {
		return nil
	}
	columns, err := r.rs.metadata()
	if err != nil {
		return nil
	}
	names := make([]string, len(columns))
	for i, c := range columns {
		if c.label != "" {
			names[i] = c.label
		} else {
			names[i] = c.name
		}
	}
	return names
}

func (r *Rows) Close() error {
	if r.closed || r.rs == nil {
		r.closed = true
		return nil
	}
	r.closed = true
	return r.rs.c.closeResultSet(r.rs.handle)
}

func (r *Rows) Next(dest []driver.Value) error {
	if r.closed {
		return newError(InterfaceError, "rows are closed")
	}
	if r.rs == nil {
		return io.EOF
	}
	row, err := r.rs.next()
	if err != nil {
		return err
	}
	if row == nil {
		return io.EOF
	}
	for i, v := range row {
		dv, err := v.toDriverValue()
		if err != nil {
			return err
		}
		dest[i] = dv
	}
	return nil
}
