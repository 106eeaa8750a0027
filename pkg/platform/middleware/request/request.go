// Package request assigns every inbound request a correlation ID. Downstream
// services read it via requestcontext.RequestID for audit trails and logs.
package request

import (
	"net/http"

	"github.com/google/uuid"

	"flowguard/pkg/requestcontext"
)

// HeaderRequestID is the inbound/outbound correlation header.
const HeaderRequestID = "X-Request-Id"

// RequestID reuses an inbound X-Request-Id when present (trusted proxies set
// it) or generates a fresh UUID, stores it in the context, and echoes it on
// the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(HeaderRequestID, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
