package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Veysel440/go-auth-smoke/internal/config"
	"github.com/Veysel440/go-auth-smoke/internal/repos"
	"github.com/Veysel440/go-auth-smoke/internal/server"
	"github.com/Veysel440/go-auth-smoke/internal/smoke"
)

// purge-user removes a user from the authstub store so authsmoke can register
// it again. Defaults to the smoke test user.
func main() {
	username := smoke.DefaultUser().Username
	if len(os.Args) > 1 {
		username = os.Args[1]
	}

	cfg := config.Load()
	store, closeFn, err := server.OpenStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = store.Delete(ctx, username)
	switch {
	case errors.Is(err, repos.ErrNotFound):
		fmt.Println("nothing to do: no user", username)
	case err != nil:
		log.Fatalf("delete %s: %v", username, err)
	default:
		fmt.Println("ok: removed", username)
	}
}
