package http

import (
	"net/http"
)

// Every object route is a wildcard, so a miss is almost always a wrong
// method. Both fallbacks answer in the same JSON shape as handler errors.

func routeNotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "route_not_found", "No route for this path")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, PUT, DELETE")
	WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not supported")
}
