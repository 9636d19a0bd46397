package server

import "net/http"

// NewHandler creates the full HTTP handler with routes and middleware.
// Exported for use in tests (e.g., httptest.NewServer).
func NewHandler(resolver Resolver) http.Handler {
	return newMux(resolver)
}

func newMux(resolver Resolver) http.Handler {
	h := &handler{resolver: resolver}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /api/v1/quotes/{symbol}", h.getQuote)

	// Middleware stack: recovery -> requestID -> logging
	var handler http.Handler = mux
	handler = logging(handler)
	handler = requestID(handler)
	handler = recovery(handler)

	return handler
}
