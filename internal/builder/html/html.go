// Package html implements the standard multi-page HTML builder: every
// document becomes its own page under the output directory.
package html

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docindex/internal/builder"
	"git.home.luguber.info/inful/docindex/internal/builder/render"
	"git.home.luguber.info/inful/docindex/internal/docmodel"
	derrors "git.home.luguber.info/inful/docindex/internal/errors"
)

// Name is the builder selection identifier.
const Name = "html"

func init() {
	if err := builder.Register(Name, func(app *builder.App) (builder.Builder, error) {
		return New(app), nil
	}); err != nil {
		panic(err)
	}
}

// Builder writes one HTML page per document.
type Builder struct {
	app      *builder.App
	renderer *render.Renderer
}

// New creates the multi-page HTML builder.
func New(app *builder.App) *Builder {
	return &Builder{app: app}
}

func (b *Builder) Name() string      { return Name }
func (b *Builder) Format() string    { return "html" }
func (b *Builder) OutSuffix() string { return ".html" }

// Init wires the renderer to the app's target URI chain; the chain may gain
// wrappers after Init, so resolution goes through the app, not the builder.
func (b *Builder) Init(app *builder.App) error {
	b.renderer = render.New(app.TargetURI)
	return nil
}

// OutdatedDocs skips documents whose fingerprint is unchanged since the last
// build.
func (b *Builder) OutdatedDocs(ctx context.Context) ([]string, error) {
	return b.app.OutdatedByFingerprint(ctx)
}

func (b *Builder) PrepareWriting([]string) error { return nil }

// WriteDoc renders a document to <outdir>/<docname>.html.
func (b *Builder) WriteDoc(ctx context.Context, doc *docmodel.Document) error {
	src, err := os.ReadFile(doc.SourcePath)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "read source for rendering")
	}
	body, err := b.renderer.RenderBody(src)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryBuild, "render document")
	}

	outPath := filepath.Join(b.app.Outdir(), filepath.FromSlash(doc.Docname)+b.OutSuffix())
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "create output subdirectory")
	}
	if err := os.WriteFile(outPath, render.Page(doc.Title, body), 0o644); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "write rendered page")
	}
	return nil
}

// CopyStaticFiles copies the static asset tree into the output directory.
func (b *Builder) CopyStaticFiles(ctx context.Context) error {
	return CopyStaticTree(b.app)
}

func (b *Builder) Finish(context.Context) error { return nil }

// TargetURI maps each document to its own page path.
func (b *Builder) TargetURI(docname, _ string) string {
	return docname + b.OutSuffix()
}

// CopyStaticTree copies <srcdir>/<static_dir> into <outdir>/<static_dir>.
// Shared by the single-page builder.
func CopyStaticTree(app *builder.App) error {
	src := app.StaticSourceDir()
	if src == "" {
		return nil
	}
	dst := filepath.Join(app.Outdir(), app.Config.Source.StaticDir)

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
