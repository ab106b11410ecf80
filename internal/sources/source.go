package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout bounds every outbound fetch.
const DefaultTimeout = 10 * time.Second

// Source fetches data for one datasource kind.
//
// Fetch never returns a Go error: missing config fields, transport failures and non-JSON
// bodies are all reported through Result.Err. Each call performs at most one request.
type Source interface {
	Kind() Kind
	Fetch(ctx context.Context, config json.RawMessage, subproduct string) Result
	// Records extracts the records an excerpt is built from. It reports false when the
	// response does not have the shape this source renders.
	Records(data json.RawMessage) ([]Record, bool)
}

// Registry holds exactly one Source per catalog kind.
type Registry struct {
	sources map[Kind]Source
}

// NewRegistry checks that every kind in catalog has a source and that none is registered twice.
func NewRegistry(catalog *Catalog, sources ...Source) (*Registry, error) {
	r := &Registry{sources: make(map[Kind]Source, len(sources))}
	for _, s := range sources {
		if _, exists := r.sources[s.Kind()]; exists {
			return nil, fmt.Errorf("source for %q registered twice", s.Kind())
		}
		if _, ok := catalog.Entry(s.Kind()); !ok {
			return nil, fmt.Errorf("source for %q has no catalog entry", s.Kind())
		}
		r.sources[s.Kind()] = s
	}
	for _, k := range catalog.Kinds() {
		if _, ok := r.sources[k]; !ok {
			return nil, fmt.Errorf("no source registered for %q", k)
		}
	}
	return r, nil
}

// NewDefaultRegistry wires the five production sources to a shared client with the given timeout.
func NewDefaultRegistry(timeout time.Duration) (*Registry, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := &http.Client{Timeout: timeout}
	return NewRegistry(DefaultCatalog,
		NewZoho(client),
		NewHubSpot(client),
		NewFreshdesk(client),
		NewGoogleSheets(client),
		NewOdoo(client),
	)
}

// Get returns the source for kind.
func (r *Registry) Get(kind Kind) (Source, bool) {
	s, ok := r.sources[kind]
	return s, ok
}
