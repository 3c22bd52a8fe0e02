package middleware

import (
	"net/http"
)

// BodySizeLimit rejects requests whose body exceeds maxBytes. A declared
// Content-Length over the limit is refused up front; otherwise the body is
// capped with http.MaxBytesReader.
func BodySizeLimit(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
