package builder

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docindex/internal/config"
	"git.home.luguber.info/inful/docindex/internal/docmodel"
)

// recordingBuilder captures which lifecycle operations ran.
type recordingBuilder struct {
	app *App

	mu       sync.Mutex
	inited   bool
	written  []string
	copied   bool
	finished bool
}

func (r *recordingBuilder) Name() string      { return "recording" }
func (r *recordingBuilder) Format() string    { return "test" }
func (r *recordingBuilder) OutSuffix() string { return ".out" }

func (r *recordingBuilder) Init(app *App) error {
	r.inited = true
	return nil
}

func (r *recordingBuilder) OutdatedDocs(ctx context.Context) ([]string, error) {
	return r.app.OutdatedByFingerprint(ctx)
}

func (r *recordingBuilder) PrepareWriting([]string) error { return nil }

func (r *recordingBuilder) WriteDoc(_ context.Context, doc *docmodel.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.written = append(r.written, doc.Docname)
	return nil
}

func (r *recordingBuilder) CopyStaticFiles(context.Context) error { r.copied = true; return nil }
func (r *recordingBuilder) Finish(context.Context) error          { r.finished = true; return nil }
func (r *recordingBuilder) TargetURI(docname, _ string) string    { return docname + ".out" }

func writeSourceTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func newTestApp(t *testing.T, srcdir string, rec **recordingBuilder) *App {
	t.Helper()
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Source.Directory = srcdir
	cfg.Output.Directory = filepath.Join(t.TempDir(), "out")
	cfg.Builder = "recording"

	reg := NewRegistry()
	require.NoError(t, reg.Register("recording", func(app *App) (Builder, error) {
		b := &recordingBuilder{app: app}
		if rec != nil {
			*rec = b
		}
		return b, nil
	}))

	return New(cfg, WithRegistry(reg))
}

func TestRunFullBuild(t *testing.T) {
	src := writeSourceTree(t, map[string]string{
		"index.md":        "# Home\n\nSee [guide](guide/setup.md).\n",
		"guide/setup.md":  "# Setup\n## Requirements\n",
		"_static/app.css": "body {}\n",
	})

	var rec *recordingBuilder
	app := newTestApp(t, src, &rec)

	require.NoError(t, app.Run(context.Background()))
	require.True(t, rec.inited)
	require.True(t, rec.copied)
	require.True(t, rec.finished)
	require.Equal(t, []string{"guide/setup", "index"}, rec.written)

	// _static must not surface as a document
	require.Equal(t, []string{"guide/setup", "index"}, app.Env.FoundDocs())
}

func TestSecondBuildSkipsUnchangedDocs(t *testing.T) {
	src := writeSourceTree(t, map[string]string{
		"index.md": "# Home\n",
		"other.md": "# Other\n",
	})

	var first *recordingBuilder
	app := newTestApp(t, src, &first)
	require.NoError(t, app.Run(context.Background()))
	require.Len(t, first.written, 2)

	// same output dir, fresh app: fingerprints persist in the state store
	var second *recordingBuilder
	app2 := newTestApp(t, src, &second)
	app2.Config.Output.Directory = app.Config.Output.Directory
	require.NoError(t, app2.Run(context.Background()))
	require.Empty(t, second.written)

	// touching one source makes only that doc outdated
	require.NoError(t, os.WriteFile(filepath.Join(src, "other.md"), []byte("# Other v2\n"), 0o644))
	var third *recordingBuilder
	app3 := newTestApp(t, src, &third)
	app3.Config.Output.Directory = app.Config.Output.Directory
	require.NoError(t, app3.Run(context.Background()))
	require.Equal(t, []string{"other"}, third.written)
}

func TestConfigFinalizedHookMutatesConfig(t *testing.T) {
	src := writeSourceTree(t, map[string]string{
		"index.md": "# Home\n\n[broken](missing.md)\n",
	})

	app := newTestApp(t, src, nil)
	app.OnConfigFinalized(func(_ *App, cfg *config.Config) {
		cfg.SuppressWarnings = append(cfg.SuppressWarnings, "ref.*")
	})

	require.NoError(t, app.Run(context.Background()))
	require.EqualValues(t, 0, app.Warnings.Emitted())
}

func TestUnresolvedInternalReferenceWarns(t *testing.T) {
	src := writeSourceTree(t, map[string]string{
		"index.md": "# Home\n\n[broken](missing.md) and [gone](guide.md#nope)\n",
		"guide.md": "# Guide\n",
	})

	app := newTestApp(t, src, nil)
	require.NoError(t, app.Run(context.Background()))
	require.EqualValues(t, 2, app.Warnings.Emitted())
}

func TestMissingReferenceHookClaimsReference(t *testing.T) {
	src := writeSourceTree(t, map[string]string{
		"index.md": "# Home\n\n[broken](missing.md)\n",
	})

	app := newTestApp(t, src, nil)
	app.OnMissingReference(func(_ *App, ref *docmodel.Ref) bool {
		return ref.Target == "missing"
	})

	require.NoError(t, app.Run(context.Background()))
	require.EqualValues(t, 0, app.Warnings.Emitted())
}

func TestBuilderInitedHookWrapsTargetURI(t *testing.T) {
	src := writeSourceTree(t, map[string]string{"index.md": "# Home\n"})

	app := newTestApp(t, src, nil)
	app.OnBuilderInited(func(a *App) {
		a.WrapTargetURI(func(next TargetURIFunc) TargetURIFunc {
			return func(docname, typ string) string {
				return "wrapped/" + next(docname, typ)
			}
		})
	})

	require.NoError(t, app.Run(context.Background()))
	require.Equal(t, "wrapped/index.out", app.TargetURI("index", ""))
}

func TestSerialReadWhenParallelUnsafe(t *testing.T) {
	src := writeSourceTree(t, map[string]string{
		"a.md": "# A\n",
		"b.md": "# B\n",
	})

	app := newTestApp(t, src, nil)
	app.DeclareParallelReadSafe(false)

	require.NoError(t, app.Run(context.Background()))
	require.Equal(t, []string{"a", "b"}, app.Env.FoundDocs())
}

func TestUnknownBuilderFails(t *testing.T) {
	src := writeSourceTree(t, map[string]string{"index.md": "# Home\n"})

	app := newTestApp(t, src, nil)
	app.Config.Builder = "nope"

	err := app.Run(context.Background())
	require.Error(t, err)
}
