package badger

import (
	"fmt"
	"log/slog"

	badgerdb "github.com/dgraph-io/badger/v4"
)

// Config holds configuration for a BadgerDB-backed store.
type Config struct {
	// Path is the directory for database files. Required unless InMemory.
	Path string

	// InMemory disables disk persistence. Useful for tests.
	InMemory bool

	// SyncWrites makes every write durable before the setter returns.
	SyncWrites bool

	// Logger receives BadgerDB's internal logging. Nil disables it.
	Logger *slog.Logger
}

// DefaultConfig returns a durable configuration rooted at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		SyncWrites: true,
	}
}

// InMemoryConfig returns a configuration suited to tests: no disk I/O, no
// sync overhead.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

func (cfg Config) badgerOptions() badgerdb.Options {
	opts := badgerdb.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites)
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("")
	}
	if cfg.Logger != nil {
		opts = opts.WithLogger(&slogAdapter{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}
	return opts
}

// slogAdapter bridges slog.Logger to BadgerDB's Logger interface.
type slogAdapter struct {
	logger *slog.Logger
}

func (l *slogAdapter) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *slogAdapter) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *slogAdapter) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *slogAdapter) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
