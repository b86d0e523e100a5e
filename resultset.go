package nuodb

// columnMeta is one column's description, returned by GetMetaData and
// cached on the resultSet the way cursor.py caches self.description after
// the first call (spec §4.G).
type columnMeta struct {
	catalog     string
	schema      string
	table       string
	name        string
	label       string
	collation   Value
	typeName    string
	typeCode    int64
	displaySize int64
	precision   int64
	scale       int64
	flags       int64
}

// resultSet is a server-side cursor: a handle plus the most recently
// fetched window of rows. Rows arrive back-to-back, each preceded by a
// "has next" flag tag (1 = row follows, 0 = the window, or the whole
// result set, ended) -- generalizing the teacher's binary-protocol row
// buffer (prot_binary.go) from MySQL's fixed-row COM_STMT_EXECUTE result
// format to NuoDB's windowed, re-openable stream (spec §4.G).
type resultSet struct {
	c           *Conn
	handle      int64
	columnCount int

	rows      [][]Value
	pos       int
	exhausted bool

	columns []columnMeta
}

// fetchResultSet implements spec §4.G's GetResultSet: the statement handle
// names the statement whose most recent execute produced a result set.
// Grounded on original_source/pynuodb/encodedsession.py's
// fetch_result_set, which reads a handle, a column count, that many
// (discarded) header labels, and then the first window of rows.
func (c *Conn) fetchResultSet(stmtID uint32) (*resultSet, error) {
	resp, err := c.exchange(opGetResultSet, func(dst []byte) []byte {
		dst, _ = encodeValue(dst, IntValue(int64(stmtID)))
		return dst
	})
	if err != nil {
		return nil, err
	}
	rs, err := parseResultSetBootstrap(resp)
	if err != nil {
		return nil, err
	}
	rs.c = c
	return rs, nil
}

// parseResultSetBootstrap decodes the {handle, colCount, colCount labels,
// row window} shape shared by GetResultSet and GetGeneratedKeys.
func parseResultSetBootstrap(resp []byte) (*resultSet, error) {
	handleVal, rest, err := decodeValue(resp)
	if err != nil {
		return nil, wrapError(ProtocolError, err, "malformed result set handle")
	}
	colCountVal, rest, err := decodeValue(rest)
	if err != nil {
		return nil, wrapError(ProtocolError, err, "malformed result set column count")
	}
	handle, _ := handleVal.asInt64()
	colCount, _ := colCountVal.asInt64()

	for i := int64(0); i < colCount; i++ {
		_, rest, err = decodeValue(rest)
		if err != nil {
			return nil, wrapError(ProtocolError, err, "malformed result set column label %d", i)
		}
	}

	rs := &resultSet{handle: handle, columnCount: int(colCount)}
	rows, rest, exhausted, err := decodeRowWindow(rest, int(colCount))
	if err != nil {
		return nil, err
	}
	rs.rows = rows
	rs.exhausted = exhausted
	_ = rest
	return rs, nil
}

// decodeRowWindow reads has-next-flag-prefixed rows until either a zero
// flag (exhausted=true) or the buffer runs out (exhausted=false, meaning a
// further Next call may reopen the window), per spec §4.G.
func decodeRowWindow(b []byte, columnCount int) (rows [][]Value, rest []byte, exhausted bool, err error) {
	rest = b
	for len(rest) > 0 {
		var hasNext Value
		hasNext, rest, err = decodeValue(rest)
		if err != nil {
			return nil, nil, false, wrapError(ProtocolError, err, "malformed result set row flag")
		}
		n, _ := hasNext.asInt64()
		if n == 0 {
			return rows, rest, true, nil
		}
		row := make([]Value, columnCount)
		for i := 0; i < columnCount; i++ {
			row[i], rest, err = decodeValue(rest)
			if err != nil {
				return nil, nil, false, wrapError(ProtocolError, err, "malformed result set row %d column %d", len(rows), i)
			}
		}
		rows = append(rows, row)
	}
	return rows, rest, false, nil
}

// next returns the row at the cursor, fetching a fresh window with the
// Next opcode when the current one is spent and the result set has not
// signaled final end.
func (rs *resultSet) next() ([]Value, error) {
	if rs.pos < len(rs.rows) {
		row := rs.rows[rs.pos]
		rs.pos++
		return row, nil
	}
	if rs.exhausted {
		return nil, nil
	}
	if err := rs.fetchNextWindow(); err != nil {
		return nil, err
	}
	return rs.next()
}

// fetchNextWindow implements spec §4.G's Next(R), grounded on
// original_source/pynuodb/encodedsession.py's fetch_result_set_next.
func (rs *resultSet) fetchNextWindow() error {
	resp, err := rs.c.exchange(opNext, func(dst []byte) []byte {
		dst, _ = encodeValue(dst, IntValue(rs.handle))
		return dst
	})
	if err != nil {
		return err
	}
	rows, _, exhausted, err := decodeRowWindow(resp, rs.columnCount)
	if err != nil {
		return err
	}
	rs.rows = rows
	rs.pos = 0
	rs.exhausted = exhausted
	return nil
}

// metadata implements spec §4.G's GetMetaData, caching the result on rs
// after the first call the way cursor.py caches self.description.
func (rs *resultSet) metadata() ([]columnMeta, error) {
	if rs.columns != nil {
		return rs.columns, nil
	}
	resp, err := rs.c.exchange(opGetMetaData, func(dst []byte) []byte {
		dst, _ = encodeValue(dst, IntValue(rs.handle))
		return dst
	})
	if err != nil {
		return nil, err
	}
	countVal, rest, err := decodeValue(resp)
	if err != nil {
		return nil, wrapError(ProtocolError, err, "malformed GetMetaData response")
	}
	count, _ := countVal.asInt64()
	columns := make([]columnMeta, count)
	for i := range columns {
		var col columnMeta
		var v Value
		v, rest, err = decodeValue(rest)
		if err != nil {
			return nil, wrapError(ProtocolError, err, "malformed column %d catalog", i)
		}
		col.catalog = v.str
		v, rest, err = decodeValue(rest)
		if err != nil {
			return nil, wrapError(ProtocolError, err, "malformed column %d schema", i)
		}
		col.schema = v.str
		v, rest, err = decodeValue(rest)
		if err != nil {
			return nil, wrapError(ProtocolError, err, "malformed column %d table", i)
		}
		col.table = v.str
		v, rest, err = decodeValue(rest)
		if err != nil {
			return nil, wrapError(ProtocolError, err, "malformed column %d name", i)
		}
		col.name = v.str
		v, rest, err = decodeValue(rest)
		if err != nil {
			return nil, wrapError(ProtocolError, err, "malformed column %d label", i)
		}
		col.label = v.str
		col.collation, rest, err = decodeValue(rest)
		if err != nil {
			return nil, wrapError(ProtocolError, err, "malformed column %d collation", i)
		}
		v, rest, err = decodeValue(rest)
		if err != nil {
			return nil, wrapError(ProtocolError, err, "malformed column %d type name", i)
		}
		col.typeName = v.str
		v, rest, err = decodeValue(rest)
		if err != nil {
			return nil, wrapError(ProtocolError, err, "malformed column %d type code", i)
		}
		col.typeCode, _ = v.asInt64()
		v, rest, err = decodeValue(rest)
		if err != nil {
			return nil, wrapError(ProtocolError, err, "malformed column %d display size", i)
		}
		col.displaySize, _ = v.asInt64()
		v, rest, err = decodeValue(rest)
		if err != nil {
			return nil, wrapError(ProtocolError, err, "malformed column %d precision", i)
		}
		col.precision, _ = v.asInt64()
		v, rest, err = decodeValue(rest)
		if err != nil {
			return nil, wrapError(ProtocolError, err, "malformed column %d scale", i)
		}
		col.scale, _ = v.asInt64()
		v, rest, err = decodeValue(rest)
		if err != nil {
			return nil, wrapError(ProtocolError, err, "malformed column %d flags", i)
		}
		col.flags, _ = v.asInt64()
		columns[i] = col
	}
	rs.columns = columns
	return columns, nil
}

// closeResultSet implements spec §4.G's CloseResultSet, which a caller
// must invoke explicitly even after the server signals final end (spec
// §5's explicit-close requirement).
func (c *Conn) closeResultSet(handle int64) error {
	_, err := c.exchange(opCloseResultSet, func(dst []byte) []byte {
		dst, _ = encodeValue(dst, IntValue(handle))
		return dst
	})
	return err
}
