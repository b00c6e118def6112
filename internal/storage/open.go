package storage

import (
	"database/sql"
	"fmt"

	"rooms-client/internal/domain"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// OpenOptions selects and configures a store
type OpenOptions struct {
	Driver    string
	Path      string
	Secret    string
	DB        *sql.DB
	Namespace string
}

// Open returns the store for opts.Driver and a func that releases it
func Open(opts OpenOptions) (domain.KeyValueStore, func() error, error) {
	noop := func() error { return nil }

	switch opts.Driver {
	case DriverMemory, "":
		return NewMemoryStore(), noop, nil
	case DriverFile:
		s, err := NewFileStore(opts.Path, opts.Secret)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case DriverPostgres:
		if opts.DB == nil {
			return nil, nil, fmt.Errorf("postgres store needs a database connection")
		}
		if err := Migrate(opts.DB); err != nil {
			return nil, nil, err
		}
		s, err := NewPostgresStore(opts.DB, opts.Namespace)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
