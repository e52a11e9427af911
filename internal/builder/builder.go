// Package builder defines the builder capability interface, the builder
// registry, and the App that drives a build: read phase, write phase, and
// finalization. Output formats plug in as Builder implementations; lifecycle
// hooks let extensions adjust configuration and link resolution.
package builder

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"git.home.luguber.info/inful/docindex/internal/docmodel"
)

// Builder transforms the parsed document set into one output format.
type Builder interface {
	// Name is the identifier used for builder selection (e.g. "html").
	Name() string

	// Format is the coarse output format family (e.g. "html", "inventory").
	Format() string

	// OutSuffix is the filename suffix of emitted pages.
	OutSuffix() string

	// Init is called once, after the builder is constructed and attached
	// to the app, before any document processing.
	Init(app *App) error

	// OutdatedDocs returns the docnames that need (re)processing.
	OutdatedDocs(ctx context.Context) ([]string, error)

	// PrepareWriting is called once with the outdated set before WriteDoc.
	PrepareWriting(docnames []string) error

	// WriteDoc emits the rendered output for one document.
	WriteDoc(ctx context.Context, doc *docmodel.Document) error

	// CopyStaticFiles copies theme/media assets into the output directory.
	CopyStaticFiles(ctx context.Context) error

	// Finish runs after all documents are processed.
	Finish(ctx context.Context) error

	// TargetURI computes the address a link to docname should resolve to.
	// typ is an optional reference-type hint.
	TargetURI(docname, typ string) string
}

// Factory constructs a builder bound to an app.
type Factory func(app *App) (Builder, error)

// Registry maps builder names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty builder registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a builder factory under a name.
// Returns an error if the name is already taken.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("cannot register builder with empty name")
	}
	if factory == nil {
		return fmt.Errorf("cannot register nil factory for builder %s", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("builder %s already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Create instantiates the named builder for an app.
func (r *Registry) Create(name string, app *App) (Builder, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown builder: %s (available: %v)", name, r.Names())
	}
	return factory(app)
}

// Names returns all registered builder names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has checks whether a builder name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// globalRegistry is the default builder registry used throughout the application.
var globalRegistry = NewRegistry()

// DefaultRegistry returns the global builder registry.
func DefaultRegistry() *Registry {
	return globalRegistry
}

// Register adds a builder factory to the global registry.
func Register(name string, factory Factory) error {
	return globalRegistry.Register(name, factory)
}
