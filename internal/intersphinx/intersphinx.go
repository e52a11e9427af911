// Package intersphinx resolves references against other projects' object
// inventories. Each configured project maps to an inventory location (file
// path or URL); inventories are fetched lazily on first use.
package intersphinx

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/docindex/internal/builder"
	"git.home.luguber.info/inful/docindex/internal/docmodel"
	"git.home.luguber.info/inful/docindex/internal/inventory"
	"git.home.luguber.info/inful/docindex/internal/logfields"
	"git.home.luguber.info/inful/docindex/internal/retry"
)

// Resolver resolves inventory references for one build.
type Resolver struct {
	mapping  map[string]string
	disabled []string
	client   *http.Client
	policy   retry.Policy

	mu     sync.Mutex
	loaded map[string]*inventory.Inventory // nil entry means load failed
}

// NewResolver creates a resolver over the given project mapping.
func NewResolver(mapping map[string]string, disabled []string) *Resolver {
	return &Resolver{
		mapping:  mapping,
		disabled: disabled,
		client:   &http.Client{Timeout: 30 * time.Second},
		policy:   retry.DefaultPolicy(),
		loaded:   make(map[string]*inventory.Inventory),
	}
}

// Setup subscribes the cross-project resolver to the app's missing-reference
// event. The resolver reads the finalized configuration, so an extension that
// clears the mapping during config finalization disables it entirely.
func Setup(app *builder.App) {
	var (
		once     sync.Once
		resolver *Resolver
	)
	app.OnMissingReference(func(app *builder.App, ref *docmodel.Ref) bool {
		// Built on first use: config finalization has run by then, so a
		// cleared mapping stays cleared.
		once.Do(func() {
			resolver = NewResolver(app.Config.Intersphinx.Mapping, app.Config.Intersphinx.DisabledReftypes)
		})
		return resolver.Resolve(ref)
	})
	app.DeclareParallelReadSafe(true)
}

// Resolve attempts to resolve an inventory reference. It returns true when
// the reference was found in another project's inventory. Inventory-style
// references are marked external whether or not resolution succeeds.
func (r *Resolver) Resolve(ref *docmodel.Ref) bool {
	if ref.Kind != docmodel.RefInventory {
		return false
	}
	ref.External = true

	if len(r.mapping) == 0 || r.reftypeDisabled(ref.Reftype) {
		return false
	}

	project, name := splitProject(ref.Target, r.mapping)
	if project != "" {
		return r.lookup(project, name, ref.Reftype)
	}
	for candidate := range r.mapping {
		if r.lookup(candidate, name, ref.Reftype) {
			return true
		}
	}
	return false
}

func (r *Resolver) reftypeDisabled(reftype string) bool {
	for _, d := range r.disabled {
		if d == "*" {
			return true
		}
		if reftype != "" && d == reftype {
			return true
		}
	}
	return false
}

// splitProject interprets "project:name" targets; a prefix that is not a
// configured project is kept as part of the object name.
func splitProject(target string, mapping map[string]string) (project, name string) {
	if prefix, rest, ok := strings.Cut(target, ":"); ok {
		if _, configured := mapping[prefix]; configured {
			return prefix, rest
		}
	}
	return "", target
}

func (r *Resolver) lookup(project, name, reftype string) bool {
	inv := r.load(project)
	if inv == nil {
		return false
	}
	entry, ok := inv.Entries[name]
	if !ok {
		return false
	}
	if reftype != "" && entry.RoleKey() != reftype {
		return false
	}
	return true
}

func (r *Resolver) load(project string) *inventory.Inventory {
	r.mu.Lock()
	defer r.mu.Unlock()

	if inv, ok := r.loaded[project]; ok {
		return inv
	}

	location := r.mapping[project]
	inv, err := r.fetch(location)
	if err != nil {
		slog.Warn("Failed to load intersphinx inventory",
			logfields.Project(project),
			logfields.URL(location),
			logfields.Error(err))
		inv = nil
	}
	r.loaded[project] = inv
	return inv
}

// fetch loads an inventory from a file path or URL. URL fetches retry
// transient failures with backoff.
func (r *Resolver) fetch(location string) (*inventory.Inventory, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		return inventory.LoadFile(location)
	}

	var lastErr error
	for attempt := 0; attempt <= r.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(r.policy.Delay(attempt))
		}
		inv, err := r.fetchURL(location)
		if err == nil {
			return inv, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (r *Resolver) fetchURL(location string) (*inventory.Inventory, error) {
	resp, err := r.client.Get(location)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch inventory: status %s", resp.Status)
	}
	return inventory.Load(resp.Body)
}
