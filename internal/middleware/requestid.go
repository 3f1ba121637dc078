package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

const ReqIDHeader = "X-Request-ID"

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(ReqIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(ReqIDHeader, id)
		r.Header.Set(ReqIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
