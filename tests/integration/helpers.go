//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

func baseURL() string {
	if v := os.Getenv("BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8000"
}

func waitReady(url string, timeout time.Duration) error {
	dead := time.Now().Add(timeout)
	for time.Now().Before(dead) {
		r, err := http.Get(url + "/healthz")
		if err == nil {
			r.Body.Close()
			if r.StatusCode < 500 {
				return nil
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("ready timeout")
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}
