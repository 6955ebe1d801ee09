package server

import (
	"net/http"
	"sort"
	"strings"
)

// HandlerFunc serves one route.
type HandlerFunc func(http.ResponseWriter, *http.Request)

// Router dispatches on exact path, then method. An unknown path is 404
// and a known path with an unregistered method is 405.
type Router struct {
	routes map[string]map[string]HandlerFunc
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{routes: make(map[string]map[string]HandlerFunc)}
}

// Handle registers handler for method on path.
func (r *Router) Handle(method, path string, handler HandlerFunc) {
	methods, ok := r.routes[path]
	if !ok {
		methods = make(map[string]HandlerFunc)
		r.routes[path] = methods
	}
	methods[method] = handler
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	methods, ok := r.routes[path]
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	handler, ok := methods[req.Method]
	if !ok && req.Method == http.MethodHead {
		handler, ok = methods[http.MethodGet]
	}
	if !ok {
		w.Header().Set("Allow", allowed(methods))
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	handler(w, req)
}

func allowed(methods map[string]HandlerFunc) string {
	names := make([]string, 0, len(methods))
	for m := range methods {
		names = append(names, m)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
