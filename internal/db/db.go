package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/Veysel440/go-auth-smoke/internal/config"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	mysqlDrv "github.com/golang-migrate/migrate/v4/database/mysql"
	file "github.com/golang-migrate/migrate/v4/source/file"
)

const MigrationsURL = "file://migrations"

func OpenAndMigrate(cfg config.Config) (*sql.DB, func(), error) {
	sqlDB, err := sql.Open("mysql", cfg.DBDsn)
	if err != nil {
		return nil, nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, nil, err
	}

	src, err := (&file.File{}).Open(MigrationsURL)
	if err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	drv, err := mysqlDrv.WithInstance(sqlDB, &mysqlDrv.Config{})
	if err != nil {
		src.Close()
		sqlDB.Close()
		return nil, nil, err
	}
	m, err := migrate.NewWithInstance("file", src, "mysql", drv)
	if err != nil {
		src.Close()
		sqlDB.Close()
		return nil, nil, err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		src.Close()
		sqlDB.Close()
		return nil, nil, err
	}
	return sqlDB, func() { _ = src.Close() }, nil
}
