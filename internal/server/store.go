package server

import (
	"github.com/Veysel440/go-auth-smoke/internal/config"
	"github.com/Veysel440/go-auth-smoke/internal/db"
	"github.com/Veysel440/go-auth-smoke/internal/repos"
)

// OpenStore picks MySQL when a DSN is configured and the JSON users file
// otherwise.
func OpenStore(cfg config.Config) (repos.Store, func(), error) {
	if cfg.DBDsn == "" {
		return repos.NewFileUsers(cfg.UsersDBFile), func() {}, nil
	}
	sqlDB, closeMigr, err := db.OpenAndMigrate(cfg)
	if err != nil {
		return nil, nil, err
	}
	return repos.SQLUsers{DB: sqlDB}, func() { closeMigr(); _ = sqlDB.Close() }, nil
}
