/*
Package factory picks and opens the storage backend at startup.

SELECTION (config.Storage.Backend):
  sqlite  open the database at DBPath (":memory:" when empty)
  local   key-value fallback: a directory of JSON lists when DataDir is
          set, process memory otherwise
  auto    sqlite when DBPath is set, local otherwise

  The choice is made once. Nothing else in the app knows which backend is
  active; everything goes through care.Repository.

FAILURE:
  Open returns a repository in every case. When the backend cannot be
  opened the repository is not ready, reports the error through Err, and
  every operation returns an empty result.

USAGE:
  repo, closer := factory.Open(cfg.Storage(), logger)
  defer closer()

SEE ALSO:
  - care/repository.go: The facade returned
  - store/sqlite, care/store: The two backends
*/
package factory

import (
	"fmt"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/bantra/gardeparents/care"
	"github.com/bantra/gardeparents/care/store"
	"github.com/bantra/gardeparents/config"
	"github.com/bantra/gardeparents/store/sqlite"
)

const (
	ModeAuto   = "auto"
	ModeSQLite = "sqlite"
	ModeLocal  = "local"
)

// Select resolves "auto" to a concrete backend.
func Select(cfg config.Storage) (care.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case ModeSQLite:
		return care.BackendSQLite, nil
	case ModeLocal:
		return care.BackendLocal, nil
	case ModeAuto, "":
		if cfg.DBPath != "" {
			return care.BackendSQLite, nil
		}
		return care.BackendLocal, nil
	}
	return "", fmt.Errorf("unknown storage backend %q (sqlite, local or auto)", cfg.Backend)
}

// OpenStore opens the backend cfg selects. The returned func releases it.
func OpenStore(cfg config.Storage) (care.TxStore, func() error, error) {
	backend, err := Select(cfg)
	if err != nil {
		return nil, nil, err
	}

	switch backend {
	case care.BackendSQLite:
		path := cfg.DBPath
		if path == "" {
			path = ":memory:"
		}
		s, err := sqlite.New(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		if cfg.DataDir == "" {
			return store.NewMemory(), noop, nil
		}
		kv, err := store.NewFileKV(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return store.NewLocal(kv), noop, nil
	}
}

// Open returns the repository over the selected backend, or an unavailable
// repository carrying the open error.
func Open(cfg config.Storage, logger log.Logger) (*care.Repository, func() error) {
	repoLogger := log.With(logger, "component", "repository")

	s, closer, err := OpenStore(cfg)
	if err != nil {
		level.Error(logger).Log("msg", "storage initialization failed", "backend", cfg.Backend, "err", err)
		return care.Unavailable(err, repoLogger), noop
	}

	level.Info(logger).Log("msg", "storage ready", "backend", s.Backend())
	return care.NewRepository(s, repoLogger), closer
}

func noop() error { return nil }
