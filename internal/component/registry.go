// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name>.  cmd/web builds
// it with its dependencies, calls component.Register(), and then mounts
// every registered component under its own Prefix() with Mount().  Schema
// for the MySQL store is gathered from Migrations() in name order.

package component

import (
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Component contract.
//
// Migrations() may return nil if the component has no schema.  Routes()
// is mounted at Prefix(), so its own paths are relative, e.g.:
//
//	r := chi.NewRouter()
//	r.Get("/", list)
//	r.Post("/", create)
//	return r
type Component interface {
	Name() string
	Prefix() string
	Routes() chi.Router
	Migrations() []string
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register adds c, replacing any component with the same name.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component sorted by name.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// AllNames returns the registered names, sorted.
func AllNames() []string {
	all := All()
	names := make([]string, len(all))
	for i, c := range all {
		names[i] = c.Name()
	}
	return names
}

// Migrations concatenates every component's DDL in name order.
func Migrations() []string {
	var stmts []string
	for _, c := range All() {
		stmts = append(stmts, c.Migrations()...)
	}
	return stmts
}

// Mount attaches every component's router at its prefix.
func Mount(r chi.Router) {
	for _, c := range All() {
		r.Mount(c.Prefix(), c.Routes())
	}
}
