package httphandler

import "net/http"

// Chain wraps the storefront mux with the middleware every route shares.
func Chain(mux *http.ServeMux, allowedOrigins []string) http.Handler {
	return LogRequests(AllowOrigins(allowedOrigins, AllowJSON(mux)))
}
