package nuodb

import (
	"database/sql"
	"database/sql/driver"
)

// Driver registers this package under the "nuodb" name (spec §1), the
// same shape as the teacher's driver.go.
type Driver struct{}

func init() {
	sql.Register("nuodb", &Driver{})
}

// Open parses dsn and dials a single connection, bypassing driver.Connector
// for callers that use the legacy sql.Open(driverName, dsn) entry point.
func (d Driver) Open(dsn string) (driver.Conn, error) {
	cfg, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}
	return openConn(cfg, NewNopLogger())
}
