package smoke

import (
	"encoding/json"
	"fmt"
)

// Result is one HTTP exchange as shown to the operator.
type Result struct {
	Status int
	OK     bool
	Body   any
	Text   string
}

func isSuccess(code int) bool { return code >= 200 && code <= 299 }

func (r *Result) decode() error {
	if err := json.Unmarshal([]byte(r.Text), &r.Body); err != nil {
		return fmt.Errorf("decode %d response: %w", r.Status, err)
	}
	return nil
}
