package middlewares

import (
	"net/http"
)

// RequestSizeLimitMiddleware caps request bodies at maxRequestSize
// bytes. A declared Content-Length over the cap is rejected before the
// handler runs; bodies without a declared length are cut off by
// MaxBytesReader as the handler reads. Thumbnail uploads are the
// largest bodies the API accepts.
func RequestSizeLimitMiddleware(maxRequestSize int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxRequestSize {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				w.Write([]byte(`{"error":"request body too large"}`))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
			next.ServeHTTP(w, r)
		})
	}
}
