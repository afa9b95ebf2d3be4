package commands

import (
	"fmt"

	"github.com/rhxd/rhxd/pkg/accounts"
	"github.com/rhxd/rhxd/pkg/accounts/memory"
	"github.com/rhxd/rhxd/pkg/accounts/sqlite"
	"github.com/rhxd/rhxd/pkg/config"
)

// openStore loads the rhxd config and opens the account store it names.
// A memory-driver config opens an empty store every invocation — rhxdctl
// against "memory" is only useful to exercise the admin flow, since
// nothing written persists past the process.
func openStore() (accounts.Store, error) {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return nil, err
	}

	switch cfg.Accounts.Driver {
	case "sqlite":
		store, err := sqlite.Open(cfg.Accounts.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open account store at %s: %w", cfg.Accounts.SQLitePath, err)
		}
		return store, nil
	default:
		return memory.New(), nil
	}
}
