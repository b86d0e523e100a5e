package nuodb

// opcode identifies a request type. It is always emitted as the first field
// (a tagged integer) of a request frame. Values follow protocol version 11,
// the reference version this driver targets — see original_source's
// protocol.py for the authoritative table this was transcribed from.
type opcode int

const (
	opOpenDatabase                     opcode = 3
	opClose                            opcode = 5
	opPrepareTransaction               opcode = 6
	opCommitTransaction                opcode = 7
	opRollbackTransaction              opcode = 8
	opPrepareStatement                 opcode = 9
	opCreateStatement                  opcode = 11
	opGetResultSet                     opcode = 13
	opCloseStatement                   opcode = 15
	opExecute                          opcode = 18
	opExecuteQuery                     opcode = 19
	opExecuteUpdate                    opcode = 20
	opSetCursorName                    opcode = 21
	opExecutePreparedStatement         opcode = 22
	opExecutePreparedQuery             opcode = 23
	opExecutePreparedUpdate            opcode = 24
	opGetMetaData                      opcode = 26
	opNext                             opcode = 27
	opCloseResultSet                   opcode = 28
	opGet                              opcode = 33
	opGetCatalogs                      opcode = 34
	opGetSchemas                       opcode = 35
	opGetTables                        opcode = 36
	opGetColumns                       opcode = 38
	opGetPrimaryKeys                   opcode = 40
	opGetImportedKeys                  opcode = 41
	opGetExportedKeys                  opcode = 42
	opGetIndexInfo                     opcode = 43
	opGetTableTypes                    opcode = 44
	opGetTypeInfo                      opcode = 45
	opGetMoreResults                   opcode = 46
	opGetUpdateCount                   opcode = 47
	opPing                             opcode = 48
	opGetTriggers                      opcode = 57
	opGetAutoCommit                    opcode = 59
	opSetAutoCommit                    opcode = 60
	opIsReadOnly                       opcode = 61
	opSetReadOnly                      opcode = 62
	opGetTransactionIsolation          opcode = 63
	opSetTransactionIsolation          opcode = 64
	opGetSequenceValue                 opcode = 65
	opAnalyze                          opcode = 70
	opStatementAnalyze                 opcode = 71
	opSetTraceFlags                    opcode = 72
	opExecuteBatch                     opcode = 83
	opExecuteBatchPreparedStatement    opcode = 84
	opGetParameterMetaData             opcode = 85
	opAuthentication                   opcode = 86
	opGetGeneratedKeys                 opcode = 87
	opPrepareKeys                      opcode = 88
	opPrepareKeyNames                  opcode = 89
	opPrepareKeyIds                    opcode = 90
	opExecuteKeys                      opcode = 91
	opExecuteKeyNames                  opcode = 92
	opExecuteKeyIds                    opcode = 93
	opExecuteUpdateKeys                opcode = 94
	opExecuteUpdateKeyNames            opcode = 95
	opExecuteUpdateKeyIds              opcode = 96
	opSetSavepoint                     opcode = 97
	opReleaseSavepoint                 opcode = 98
	opRollbackToSavepoint              opcode = 99
	opSupportsTransactionIsolation     opcode = 100
	opGetCatalog                       opcode = 101
	opGetCurrentSchema                 opcode = 102
	opPrepareCall                      opcode = 103
	opExecuteCallableStatement         opcode = 104
	opSetQueryTimeout                  opcode = 105
	opGetLobChunk                      opcode = 120
	opGetLastStatementTimeMicros       opcode = 121
	opSetResultSetFetchSize            opcode = 123
	opSetStatementFetchSize            opcode = 124
	opRecoverTransaction               opcode = 125
)

// tagTable holds per-protocol-version settings: the version number and the
// catalog/schema opcodes. It does not hold tag-byte ranges; the codec
// switches on the fixed constants in codec.go for every protocol version.
type tagTable struct {
	version int

	// getCatalogOp / getCurrentSchemaOp resolve the 101/102 overlap some
	// protocol documentation revisions describe inconsistently (Open
	// Question (ii)). Version 11, the reference this driver targets, maps
	// 101=GetCatalog, 102=GetCurrentSchema; a hypothetical table for an
	// older revision would swap them here instead of touching dispatch.go.
	getCatalogOp       opcode
	getCurrentSchemaOp opcode
}

var tagTableV11 = tagTable{
	version:            11,
	getCatalogOp:       opGetCatalog,
	getCurrentSchemaOp: opGetCurrentSchema,
}

// tagTableForVersion returns the tag table for a negotiated protocol
// version. Only version 11 is known to this driver; every version, earlier
// or later, gets the same table. Nothing in the package calls it.
func tagTableForVersion(v int) tagTable {
	return tagTableV11
}

const clientProtocolVersion = 11
