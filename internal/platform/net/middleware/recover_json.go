package middleware

import (
	"net/http"
	"runtime/debug"

	perr "murmur/internal/platform/errors"
	"murmur/internal/platform/logger"
	phttp "murmur/internal/platform/net/http"
)

// RecoverJSON converts handler panics into a JSON 500 envelope instead of
// tearing down the connection
func RecoverJSON() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Named("http").Error().
						Interface("panic", rec).
						Bytes("stack", debug.Stack()).
						Str("path", r.URL.Path).
						Msg("handler panic recovered")
					phttp.RespondError(w, perr.PanicErrf("internal error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
