package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileUsers keeps users in a single JSON document keyed by username, the same
// users_db.json layout the smoke client's USERS_DB_FILE points at.
type FileUsers struct {
	Path string
	mu   sync.Mutex
}

func NewFileUsers(path string) *FileUsers { return &FileUsers{Path: path} }

func (f *FileUsers) load() (map[string]User, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]User{}, nil
	}
	if err != nil {
		return nil, err
	}
	m := map[string]User{}
	if len(b) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	return m, nil
}

func (f *FileUsers) save(m map[string]User) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".users-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.Path)
}

func (f *FileUsers) Create(ctx context.Context, u User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.load()
	if err != nil {
		return 0, err
	}
	if _, ok := m[u.Username]; ok {
		return 0, ErrDuplicate
	}
	var max int64
	for _, x := range m {
		if x.ID > max {
			max = x.ID
		}
	}
	u.ID = max + 1
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	m[u.Username] = u
	if err := f.save(m); err != nil {
		return 0, err
	}
	return u.ID, nil
}

func (f *FileUsers) FindByUsername(ctx context.Context, username string) (User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.load()
	if err != nil {
		return User{}, err
	}
	u, ok := m[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (f *FileUsers) Delete(ctx context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := m[username]; !ok {
		return ErrNotFound
	}
	delete(m, username)
	return f.save(m)
}

func (f *FileUsers) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := f.load()
	return err
}
