// Package singlehtml implements the single-page builder: all documents are
// assembled into one page, addressed by in-page anchors.
package singlehtml

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docindex/internal/builder"
	"git.home.luguber.info/inful/docindex/internal/builder/html"
	"git.home.luguber.info/inful/docindex/internal/builder/render"
	"git.home.luguber.info/inful/docindex/internal/docmodel"
	derrors "git.home.luguber.info/inful/docindex/internal/errors"
)

// Name is the builder selection identifier.
const Name = "singlehtml"

// DocMarkerPrefix tags a pending cross-document address: until the combined
// page is assembled, a link to document D can only be expressed as an anchor
// that does not exist yet. Consumers that need final addresses must rewrite
// these (see the inventory builders).
const DocMarkerPrefix = "#document-"

func init() {
	if err := builder.Register(Name, func(app *builder.App) (builder.Builder, error) {
		return New(app), nil
	}); err != nil {
		panic(err)
	}
}

// Builder assembles every document into a single output page.
type Builder struct {
	app      *builder.App
	renderer *render.Renderer

	// rendered bodies collected during the write phase, keyed by docname
	bodies map[string][]byte
	order  []string
}

// New creates the single-page builder.
func New(app *builder.App) *Builder {
	return &Builder{app: app}
}

func (b *Builder) Name() string      { return Name }
func (b *Builder) Format() string    { return "html" }
func (b *Builder) OutSuffix() string { return ".html" }

func (b *Builder) Init(app *builder.App) error {
	b.renderer = render.New(app.TargetURI)
	return nil
}

// OutdatedDocs returns all documents: a single combined page cannot be
// rebuilt partially.
func (b *Builder) OutdatedDocs(context.Context) ([]string, error) {
	return b.app.Env.FoundDocs(), nil
}

func (b *Builder) PrepareWriting(docnames []string) error {
	b.bodies = make(map[string][]byte, len(docnames))
	b.order = b.order[:0]
	return nil
}

// WriteDoc renders a document body and holds it for final assembly.
func (b *Builder) WriteDoc(ctx context.Context, doc *docmodel.Document) error {
	src, err := os.ReadFile(doc.SourcePath)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "read source for rendering")
	}
	body, err := b.renderer.RenderBody(src)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryBuild, "render document")
	}
	b.bodies[doc.Docname] = body
	b.order = append(b.order, doc.Docname)
	return nil
}

func (b *Builder) CopyStaticFiles(context.Context) error {
	return html.CopyStaticTree(b.app)
}

// Finish assembles the combined page, root document first.
func (b *Builder) Finish(context.Context) error {
	rootDoc := b.app.Config.Site.RootDoc

	var page bytes.Buffer
	for _, docname := range b.assemblyOrder(rootDoc) {
		body, ok := b.bodies[docname]
		if !ok {
			continue
		}
		fmt.Fprintf(&page, "<section id=\"document-%s\">\n", docname)
		page.Write(body)
		page.WriteString("</section>\n")
	}

	title := b.app.Config.Site.Title
	if doc := b.app.Env.Document(rootDoc); doc != nil {
		title = doc.Title
	}

	outPath := filepath.Join(b.app.Outdir(), rootDoc+b.OutSuffix())
	if err := os.WriteFile(outPath, render.Page(title, page.Bytes()), 0o644); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "write combined page")
	}
	return nil
}

func (b *Builder) assemblyOrder(rootDoc string) []string {
	order := make([]string, 0, len(b.order))
	if _, ok := b.bodies[rootDoc]; ok {
		order = append(order, rootDoc)
	}
	for _, docname := range b.order {
		if docname != rootDoc {
			order = append(order, docname)
		}
	}
	return order
}

// TargetURI returns the pending marker address for every document other than
// the root: the combined page is not assembled at URI-computation time.
func (b *Builder) TargetURI(docname, _ string) string {
	if docname == b.app.Config.Site.RootDoc {
		return docname + b.OutSuffix()
	}
	return DocMarkerPrefix + docname
}
