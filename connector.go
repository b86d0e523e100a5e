package nuodb

import (
	"context"
	"database/sql/driver"
)

// Resolver resolves a database name against an admin/broker endpoint to
// the address of an engine process willing to accept connections -- the
// injectable equivalent of spec.md's resolve(broker, db) external
// collaborator (SPEC_FULL §1). A nil Resolver skips discovery and the
// DSN's own host:port is dialed directly.
type Resolver func(ctx context.Context, broker, database string) (address string, err error)

// Connector implements database/sql/driver.Connector, letting callers
// configure a Logger and Resolver once and obtain connections without
// re-parsing a DSN or re-resolving options on every dial.
type Connector struct {
	cfg      *connConfig
	logger   Logger
	resolver Resolver
	drv      *Driver
}

// ConnectorOption configures a Connector built by NewConnector.
type ConnectorOption func(*Connector)

// WithLogger installs a structured logger for every connection this
// Connector dials.
func WithLogger(l Logger) ConnectorOption {
	return func(c *Connector) { c.logger = l }
}

// WithResolver installs the broker discovery hook; see Resolver.
func WithResolver(r Resolver) ConnectorOption {
	return func(c *Connector) { c.resolver = r }
}

// NewConnector parses dsn once and returns a reusable Connector.
func NewConnector(dsn string, opts ...ConnectorOption) (*Connector, error) {
	cfg, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}
	c := &Connector{cfg: cfg, logger: NewNopLogger(), drv: &Driver{}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Connect implements database/sql/driver.Connector. When a Resolver is
// configured, it runs before dialing and its result replaces the DSN's
// host:port for this one connection attempt.
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	cfg := *c.cfg
	if c.resolver != nil {
		address, err := c.resolver(ctx, c.cfg.address, c.cfg.database)
		if err != nil {
			return nil, wrapError(ConnectionLost, err, "failed to resolve database %q", c.cfg.database)
		}
		cfg.address = address
	}
	return openConn(&cfg, c.logger)
}

func (c *Connector) Driver() driver.Driver {
	return c.drv
}
