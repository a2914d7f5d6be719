// Package routes declares HTTP route tables and registers them on a ServeMux.
package routes

import "net/http"

// Group organizes routes and nested groups under a common prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		g.register(mux, "")
	}
}

func (g Group) register(mux *http.ServeMux, parent string) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		mux.HandleFunc(r.pattern(prefix), r.Handler)
	}
	for _, child := range g.Children {
		child.register(mux, prefix)
	}
}
