package jwtauth

import (
	"strings"

	"github.com/Veysel440/go-auth-smoke/internal/config"
)

const devSecret = "dev-secret"

type KeyProvider interface {
	CurrentKID() string
	SecretFor(kid string) ([]byte, bool)
}

// EnvProvider is a fixed kid -> secret set; retired kids stay in Set so
// sessions signed with them still verify until they expire.
type EnvProvider struct {
	Current string
	Set     map[string][]byte
}

func (e EnvProvider) CurrentKID() string { return e.Current }

func (e EnvProvider) SecretFor(kid string) ([]byte, bool) {
	v, ok := e.Set[kid]
	return v, ok && len(v) > 0
}

// FromConfig builds the key set from JWT_KEYS ("kid:secret,kid2:secret2") and
// JWT_CURRENT_KID, falling back to a single JWT_SECRET key. It reads cfg rather
// than the process environment so values from .env are honoured.
func FromConfig(cfg config.Config) KeyProvider {
	current := strings.TrimSpace(cfg.JWTCurrentKID)
	secret := cfg.JWTSecret

	set := parseKeys(strings.TrimSpace(cfg.JWTKeys))
	if len(set) == 0 {
		if secret == "" {
			secret = devSecret
		}
		if current == "" {
			current = "key1"
		}
		set[current] = []byte(secret)
	}
	if _, ok := set[current]; !ok {
		for k := range set {
			current = k
			break
		}
	}
	return EnvProvider{Current: current, Set: set}
}

func parseKeys(raw string) map[string][]byte {
	set := map[string][]byte{}
	if raw == "" {
		return set
	}
	for _, p := range strings.Split(raw, ",") {
		kv := strings.SplitN(strings.TrimSpace(p), ":", 2)
		if len(kv) == 2 && kv[0] != "" && kv[1] != "" {
			set[kv[0]] = []byte(kv[1])
		}
	}
	return set
}
