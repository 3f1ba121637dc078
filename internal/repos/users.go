package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
)

const mysqlDupEntry = 1062

type SQLUsers struct{ DB *sql.DB }

func (r SQLUsers) Create(ctx context.Context, u User) (int64, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users(username,email,password_hash,created_at) VALUES(?,?,?,?)`,
		u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDupEntry {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, _ := res.LastInsertId()
	return id, nil
}

func (r SQLUsers) FindByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id,username,email,password_hash,created_at FROM users WHERE username=?`, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r SQLUsers) Delete(ctx context.Context, username string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE username=?`, username)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r SQLUsers) Ping(ctx context.Context) error { return r.DB.PingContext(ctx) }
