// Package invbuilder provides inventory-only builder variants: the normal
// document-processing phase runs unchanged, but no pages or static assets are
// written; the only artifact is the object inventory file. Projects use these
// builders to publish a cross-reference index without building a full site.
package invbuilder

import (
	"context"
	"path/filepath"

	"git.home.luguber.info/inful/docindex/internal/builder"
	"git.home.luguber.info/inful/docindex/internal/builder/html"
	"git.home.luguber.info/inful/docindex/internal/builder/singlehtml"
	"git.home.luguber.info/inful/docindex/internal/docmodel"
	"git.home.luguber.info/inful/docindex/internal/inventory"
)

// Builder selection identifiers for the two addressing schemes.
const (
	NameHTML       = "inventory-html"
	NameSingleHTML = "inventory-singlehtml"
)

func init() {
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(builder.Register(NameHTML, func(app *builder.App) (builder.Builder, error) {
		return NewAdapter(app, html.New(app), NameHTML), nil
	}))
	must(builder.Register(NameSingleHTML, func(app *builder.App) (builder.Builder, error) {
		return NewAdapter(app, singlehtml.New(app), NameSingleHTML), nil
	}))
}

// IsInventoryBuilder reports whether a builder name is one of the
// inventory-only variants.
func IsInventoryBuilder(name string) bool {
	return name == NameHTML || name == NameSingleHTML
}

// Adapter wraps a full builder, keeping its addressing scheme while
// suppressing all page output. The delegate decides what a link to a
// document resolves to; everything else the delegate would emit is skipped.
type Adapter struct {
	app      *builder.App
	delegate builder.Builder
	name     string
}

// NewAdapter creates an inventory-only adapter around a delegate builder.
func NewAdapter(app *builder.App, delegate builder.Builder, name string) *Adapter {
	return &Adapter{app: app, delegate: delegate, name: name}
}

func (a *Adapter) Name() string      { return a.name }
func (a *Adapter) Format() string    { return "inventory" }
func (a *Adapter) OutSuffix() string { return a.delegate.OutSuffix() }

func (a *Adapter) Init(app *builder.App) error {
	return a.delegate.Init(app)
}

// OutdatedDocs returns every known document: the inventory is always rebuilt
// in full, so each document contributes its objects on every invocation.
func (a *Adapter) OutdatedDocs(context.Context) ([]string, error) {
	return a.app.Env.FoundDocs(), nil
}

func (a *Adapter) PrepareWriting([]string) error { return nil }

// WriteDoc suppresses page output.
func (a *Adapter) WriteDoc(context.Context, *docmodel.Document) error { return nil }

// CopyStaticFiles suppresses asset copying.
func (a *Adapter) CopyStaticFiles(context.Context) error { return nil }

// Finish writes the single inventory artifact. Addresses go through the
// app's target URI chain so wrappers installed at builder-inited time apply.
func (a *Adapter) Finish(context.Context) error {
	path := filepath.Join(a.app.Outdir(), a.app.Config.InventoryFilename)
	return inventory.Dump(path, a.app.Env, appResolver{a.app})
}

// TargetURI delegates to the wrapped builder's addressing scheme.
func (a *Adapter) TargetURI(docname, typ string) string {
	return a.delegate.TargetURI(docname, typ)
}

// appResolver routes inventory URIs through the app's wrapped chain.
type appResolver struct {
	app *builder.App
}

func (r appResolver) TargetURI(docname, typ string) string {
	return r.app.TargetURI(docname, typ)
}
