package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID attaches a request id (incoming header or freshly generated) to
// the request context and echoes it in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = newRequestID()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := logger.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newRequestID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b[:])
}
