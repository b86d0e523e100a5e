package nuodb

import "database/sql/driver"

// generatedKeysMode tracks which PrepareStatementKeys* request, if any,
// preceded the statement's creation -- spec §4.G's "the following execute
// also materialises a generated-keys result set".
type generatedKeysMode int

const (
	keysNone generatedKeysMode = iota
	keysByFlag
	keysByIDs
	keysByNames
)

// Statement is a handle-backed SQL statement, either ad hoc (CreateStatement
// plus an Execute call that carries the query text each time) or prepared
// (PrepareStatement binds a handle to one parameterized query up front). It
// generalizes the teacher's stmt.go Stmt, trading MySQL's COM_STMT_PREPARE
// binary-protocol id for the tagged-opcode handle CreateStatement /
// PrepareStatement hand back (spec §4.G).
type Statement struct {
	c          *Conn
	id         uint32
	query      string
	prepared   bool
	paramCount int
	keysMode   generatedKeysMode
}

// executionResult mirrors original_source/pynuodb/statement.py's
// ExecutionResult: the server's raw result discriminator from
// cursor.py's execute (greater than zero means a result set follows and
// must be fetched with a separate GetResultSet call on the statement
// handle) plus the row/update count.
type executionResult struct {
	hasResultSet bool
	rowCount     int64
}

// createStatement implements spec §4.G's CreateStatement, backing an
// ad hoc (non-prepared) Statement whose query text travels with every
// Execute call.
func (c *Conn) createStatement() (*Statement, error) {
	resp, err := c.exchange(opCreateStatement, func(dst []byte) []byte { return dst })
	if err != nil {
		return nil, err
	}
	v, _, err := decodeValue(resp)
	if err != nil {
		return nil, wrapError(ProtocolError, err, "malformed CreateStatement response")
	}
	id, _ := v.asInt64()
	return &Statement{c: c, id: uint32(id)}, nil
}

// prepareStatement implements spec §4.G's PrepareStatement: the response
// carries a handle and a parameter count, which NumInput reports back to
// database/sql so callers can validate argument tuples before Exec/Query.
func (c *Conn) prepareStatement(query string) (*Statement, error) {
	resp, err := c.exchange(opPrepareStatement, func(dst []byte) []byte {
		dst, _ = encodeValue(dst, StringValue(query))
		return dst
	})
	if err != nil {
		return nil, err
	}
	idVal, rest, err := decodeValue(resp)
	if err != nil {
		return nil, wrapError(ProtocolError, err, "malformed PrepareStatement response")
	}
	countVal, _, err := decodeValue(rest)
	if err != nil {
		return nil, wrapError(ProtocolError, err, "malformed PrepareStatement parameter count")
	}
	id, _ := idVal.asInt64()
	count, _ := countVal.asInt64()
	return &Statement{c: c, id: uint32(id), query: query, prepared: true, paramCount: int(count)}, nil
}

// prepareStatementKeys implements the PrepareStatementKeys* family (spec
// §4.G): the following execute also materializes a generated-keys result
// set, retrieved afterward with GetGeneratedKeys.
func (c *Conn) prepareStatementKeys(query string, mode generatedKeysMode, columns []string, ids []int) (*Statement, error) {
	var op opcode
	switch mode {
	case keysByFlag:
		op = opPrepareKeys
	case keysByNames:
		op = opPrepareKeyNames
	case keysByIDs:
		op = opPrepareKeyIds
	default:
		return c.prepareStatement(query)
	}

	resp, err := c.exchange(op, func(dst []byte) []byte {
		dst, _ = encodeValue(dst, StringValue(query))
		switch mode {
		case keysByNames:
			dst, _ = encodeValue(dst, IntValue(int64(len(columns))))
			for _, name := range columns {
				dst, _ = encodeValue(dst, StringValue(name))
			}
		case keysByIDs:
			dst, _ = encodeValue(dst, IntValue(int64(len(ids))))
			for _, id := range ids {
				dst, _ = encodeValue(dst, IntValue(int64(id)))
			}
		}
		return dst
	})
	if err != nil {
		return nil, err
	}
	idVal, rest, err := decodeValue(resp)
	if err != nil {
		return nil, wrapError(ProtocolError, err, "malformed PrepareStatementKeys response")
	}
	countVal, _, err := decodeValue(rest)
	if err != nil {
		return nil, wrapError(ProtocolError, err, "malformed PrepareStatementKeys parameter count")
	}
	id, _ := idVal.asInt64()
	count, _ := countVal.asInt64()
	return &Statement{c: c, id: uint32(id), query: query, prepared: true, paramCount: int(count), keysMode: mode}, nil
}

func (s *Statement) Close() error {
	_, err := s.c.exchange(opCloseStatement, func(dst []byte) []byte {
		dst, _ = encodeValue(dst, IntValue(int64(s.id)))
		return dst
	})
	return err
}

func (s *Statement) NumInput() int {
	if !s.prepared {
		return -1
	}
	return s.paramCount
}

// execute runs s (prepared or ad hoc) with args, following cursor.py's
// execute: the server's result discriminator is only a "does a result set
// follow" flag, not a handle -- when it is nonzero, GetResultSet(s.id)
// fetches the actual result-set handle and first window of rows.
func (s *Statement) execute(args []driver.Value) (*executionResult, error) {
	for _, a := range args {
		if _, err := valueFromDriverValue(a); err != nil {
			return nil, err
		}
	}
	op, writeFields := s.executeRequest(args)

	resp, err := s.c.exchange(op, writeFields)
	if err != nil {
		return nil, err
	}
	resultVal, rest, err := decodeValue(resp)
	if err != nil {
		return nil, wrapError(ProtocolError, err, "malformed execute response")
	}
	rowCountVal, _, err := decodeValue(rest)
	if err != nil {
		return nil, wrapError(ProtocolError, err, "malformed execute row count")
	}
	result, _ := resultVal.asInt64()
	rowCount, _ := rowCountVal.asInt64()

	if !s.c.autoCommit {
		s.c.hasPendingCommit = true
	}

	return &executionResult{hasResultSet: result > 0, rowCount: rowCount}, nil
}

func (s *Statement) executeRequest(args []driver.Value) (opcode, func(dst []byte) []byte) {
	if !s.prepared {
		return opExecute, func(dst []byte) []byte {
			dst, _ = encodeValue(dst, IntValue(int64(s.id)))
			dst, _ = encodeValue(dst, StringValue(s.query))
			return dst
		}
	}
	return opExecutePreparedStatement, func(dst []byte) []byte {
		dst, _ = encodeValue(dst, IntValue(int64(s.id)))
		dst, _ = encodeValue(dst, IntValue(int64(len(args))))
		for _, a := range args {
			v, err := valueFromDriverValue(a)
			if err != nil {
				v = NullValue()
			}
			dst, _ = encodeValue(dst, v)
		}
		return dst
	}
}

// Exec implements database/sql/driver.Stmt for statements with no result
// set; a query that does produce one still succeeds, its rows simply going
// unread and the result set closed to free the server-side handle.
func (s *Statement) Exec(args []driver.Value) (driver.Result, error) {
	res, err := s.execute(args)
	if err != nil {
		return nil, err
	}
	if res.hasResultSet {
		rs, err := s.c.fetchResultSet(s.id)
		if err == nil {
			s.c.closeResultSet(rs.handle)
		}
	}

	result := &Result{rowsAffected: res.rowCount}
	if s.keysMode != keysNone {
		if keys, err := s.GetGeneratedKeys(); err == nil && len(keys.rows) == 1 && len(keys.rows[0]) == 1 {
			if id, ok := keys.rows[0][0].asInt64(); ok {
				result.lastInsertID, result.hasInsertID = id, true
			}
			s.c.closeResultSet(keys.handle)
		}
	}
	return result, nil
}

// Query implements database/sql/driver.Stmt, fetching the result set the
// execute produced.
func (s *Statement) Query(args []driver.Value) (driver.Rows, error) {
	res, err := s.execute(args)
	if err != nil {
		return nil, err
	}
	if !res.hasResultSet {
		return &Rows{}, nil
	}
	rs, err := s.c.fetchResultSet(s.id)
	if err != nil {
		return nil, err
	}
	return &Rows{rs: rs}, nil
}

// ColumnConverter defers all parameter normalization to
// defaultParameterConverter, the way the teacher's stmt.go does.
func (s *Statement) ColumnConverter(idx int) driver.ValueConverter {
	return defaultParameterConverter
}

// BatchResult is the outcome of ExecuteBatchPreparedStatement. RowErrors
// preserves the per-row `-3` failure sentinel as data instead of aborting
// the batch (spec §4.G, Open Question (iii)): a row present in RowErrors
// has no meaningful entry in RowsAffected at the same index.
type BatchResult struct {
	RowsAffected []int64
	RowErrors    map[int]*DriverError
}

// ExecuteBatch runs s once per parameter tuple in paramSets, following
// original_source/pynuodb/encodedsession.py's
// execute_batch_prepared_statement: each row's parameter count and values
// are appended, a -1 sentinel and the batch count terminate the request,
// and the response carries one int per row -- `-3` is immediately followed
// by an error code and message identifying that row's failure.
func (s *Statement) ExecuteBatch(paramSets [][]driver.Value) (*BatchResult, error) {
	for _, params := range paramSets {
		for _, p := range params {
			if _, err := valueFromDriverValue(p); err != nil {
				return nil, err
			}
		}
	}
	resp, err := s.c.exchange(opExecuteBatchPreparedStatement, func(dst []byte) []byte {
		dst, _ = encodeValue(dst, IntValue(int64(s.id)))
		for _, params := range paramSets {
			dst, _ = encodeValue(dst, IntValue(int64(len(params))))
			for _, p := range params {
				v, err := valueFromDriverValue(p)
				if err != nil {
					v = NullValue()
				}
				dst, _ = encodeValue(dst, v)
			}
		}
		dst, _ = encodeValue(dst, IntValue(-1))
		dst, _ = encodeValue(dst, IntValue(int64(len(paramSets))))
		return dst
	})
	if err != nil {
		return nil, err
	}

	result := &BatchResult{RowsAffected: make([]int64, len(paramSets))}
	rest := resp
	for i := range paramSets {
		var v Value
		v, rest, err = decodeValue(rest)
		if err != nil {
			return nil, wrapError(ProtocolError, err, "malformed batch result at row %d", i)
		}
		n, _ := v.asInt64()
		if n == -3 {
			var codeVal, msgVal Value
			codeVal, rest, err = decodeValue(rest)
			if err != nil {
				return nil, wrapError(ProtocolError, err, "malformed batch error code at row %d", i)
			}
			msgVal, rest, err = decodeValue(rest)
			if err != nil {
				return nil, wrapError(ProtocolError, err, "malformed batch error message at row %d", i)
			}
			code, _ := codeVal.asInt64()
			if result.RowErrors == nil {
				result.RowErrors = make(map[int]*DriverError)
			}
			result.RowErrors[i] = newDatabaseError(int32(code), msgVal.str, "")
			continue
		}
		result.RowsAffected[i] = n
	}

	if !s.c.autoCommit {
		s.c.hasPendingCommit = true
	}

	return result, nil
}

// GetGeneratedKeys fetches the generated-keys result set materialized by a
// preceding execute on a statement prepared with PrepareStatementKeys* of
// any mode (spec §4.G).
func (s *Statement) GetGeneratedKeys() (*resultSet, error) {
	resp, err := s.c.exchange(opGetGeneratedKeys, func(dst []byte) []byte {
		dst, _ = encodeValue(dst, IntValue(int64(s.id)))
		return dst
	})
	if err != nil {
		return nil, err
	}
	rs, err := parseResultSetBootstrap(resp)
	if err != nil {
		return nil, err
	}
	rs.c = s.c
	return rs, nil
}
