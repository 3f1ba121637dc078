package repos_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Veysel440/go-auth-smoke/internal/repos"
)

func TestFileUsers_CreateFindDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "users_db.json")
	s := repos.NewFileUsers(path)
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("missing file should be an empty store: %v", err)
	}

	id, err := s.Create(ctx, repos.User{Username: "a", Email: "a@x.io", PasswordHash: "h"})
	if err != nil || id != 1 {
		t.Fatalf("id=%d err=%v", id, err)
	}
	if _, err := s.Create(ctx, repos.User{Username: "a"}); !errors.Is(err, repos.ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}

	// a second handle sees what the first one wrote
	u, err := repos.NewFileUsers(path).FindByUsername(ctx, "a")
	if err != nil || u.Email != "a@x.io" || u.CreatedAt.IsZero() {
		t.Fatalf("u=%+v err=%v", u, err)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "a"); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestFileUsers_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	s := repos.NewFileUsers(filepath.Join(t.TempDir(), "users_db.json"))
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]int64, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := s.Create(ctx, repos.User{Username: string(rune('a' + i))})
			if err != nil {
				t.Error(err)
			}
			ids[i] = id
		}(i)
	}
	wg.Wait()

	seen := map[int64]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d in %v", id, ids)
		}
		seen[id] = true
	}
}

func TestFileUsers_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users_db.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := repos.NewFileUsers(path).Ping(context.Background()); err == nil {
		t.Fatal("corrupt store should fail ping")
	}
}
