package builder

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docindex/internal/config"
	"git.home.luguber.info/inful/docindex/internal/docmodel"
	"git.home.luguber.info/inful/docindex/internal/environment"
	derrors "git.home.luguber.info/inful/docindex/internal/errors"
	"git.home.luguber.info/inful/docindex/internal/logfields"
	"git.home.luguber.info/inful/docindex/internal/metrics"
	"git.home.luguber.info/inful/docindex/internal/state"
)

// App owns one build: configuration, environment, the active builder, and the
// lifecycle hooks extensions subscribe to.
type App struct {
	Config   *config.Config
	Env      *environment.Environment
	Warnings *WarningSink
	Recorder metrics.Recorder
	State    *state.Store

	// BuildID tags all log lines of this build.
	BuildID string

	// Argv is the process invocation, kept for extensions that inspect the
	// requested builder name before the builder exists.
	Argv []string

	registry     *Registry
	builder      Builder
	targetURI    TargetURIFunc
	hooks        hooks
	parallelRead bool
}

// Option configures an App.
type Option func(*App)

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(a *App) { a.Recorder = r }
}

// WithRegistry overrides the builder registry (tests).
func WithRegistry(r *Registry) Option {
	return func(a *App) { a.registry = r }
}

// WithArgv supplies the process invocation arguments.
func WithArgv(argv []string) Option {
	return func(a *App) { a.Argv = argv }
}

// New creates an App for one build of the given configuration.
func New(cfg *config.Config, opts ...Option) *App {
	a := &App{
		Config:       cfg,
		Env:          environment.New(cfg.Site.Title, cfg.Site.Version),
		Recorder:     metrics.NoopRecorder{},
		BuildID:      uuid.NewString(),
		registry:     DefaultRegistry(),
		parallelRead: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Builder returns the active builder, nil before initialization.
func (a *App) Builder() Builder { return a.builder }

// Outdir returns the output directory.
func (a *App) Outdir() string { return a.Config.Output.Directory }

// Srcdir returns the documentation source directory.
func (a *App) Srcdir() string { return a.Config.Source.Directory }

// DeclareParallelReadSafe lets an extension veto the parallel read phase.
// Safety declarations combine with AND.
func (a *App) DeclareParallelReadSafe(safe bool) {
	a.parallelRead = a.parallelRead && safe
}

// Run executes the full build.
func (a *App) Run(ctx context.Context) error {
	start := time.Now()
	err := a.run(ctx)
	a.Recorder.ObserveBuildDuration(time.Since(start))
	outcome := "success"
	if err != nil {
		outcome = "failed"
	}
	a.Recorder.IncBuildOutcome(outcome)
	return err
}

func (a *App) run(ctx context.Context) error {
	if a.Config.Output.Clean {
		if err := os.RemoveAll(a.Outdir()); err != nil {
			return derrors.WrapError(err, derrors.CategoryFileSystem, "clean output directory")
		}
	}
	if err := os.MkdirAll(a.Outdir(), 0o755); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "create output directory")
	}

	store, err := state.Open(filepath.Join(a.Outdir(), a.Config.Output.StateFile))
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryBuild, "open build state")
	}
	a.State = store
	defer func() { _ = store.Close() }()

	// Configuration finalization: hooks may still mutate the config; the
	// warning sink is built afterwards so mutated suppressions apply.
	a.fireConfigFinalized()
	a.Warnings = NewWarningSink(a.Config.SuppressWarnings, a.Recorder)

	if err := a.initBuilder(); err != nil {
		return err
	}

	slog.Info("Starting build",
		logfields.BuildID(a.BuildID),
		logfields.Builder(a.builder.Name()),
		logfields.Path(a.Srcdir()))

	if err := a.readPhase(ctx); err != nil {
		return err
	}
	a.checkReferences()

	if err := a.writePhase(ctx); err != nil {
		return err
	}

	if err := a.recordFingerprints(ctx); err != nil {
		return err
	}

	slog.Info("Build finished",
		logfields.BuildID(a.BuildID),
		logfields.Builder(a.builder.Name()))
	return nil
}

func (a *App) initBuilder() error {
	b, err := a.registry.Create(a.Config.Builder, a)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryConfig, "select builder")
	}
	a.builder = b
	a.targetURI = b.TargetURI
	if err := b.Init(a); err != nil {
		return derrors.WrapError(err, derrors.CategoryBuild, "initialize builder")
	}
	a.fireBuilderInited()
	return nil
}

type sourceFile struct {
	docname string
	path    string
}

// readPhase parses every source document into the environment.
func (a *App) readPhase(ctx context.Context) error {
	phaseStart := time.Now()
	defer func() { a.Recorder.ObservePhaseDuration("read", time.Since(phaseStart)) }()

	sources, err := a.discoverSources()
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	limit := runtime.NumCPU()
	if !a.parallelRead {
		limit = 1
	}
	g.SetLimit(limit)

	for _, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(src.path)
			if err != nil {
				return derrors.WrapError(err, derrors.CategoryFileSystem, "read source document").
					WithContext("path", src.path)
			}
			doc, err := docmodel.Parse(src.docname, content)
			if err != nil {
				return derrors.WrapError(err, derrors.CategoryBuild, "parse document").
					WithContext("docname", src.docname)
			}
			doc.SourcePath = src.path
			a.Env.AddDocument(doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	a.Recorder.IncDocsRead(len(sources))
	a.Recorder.IncObjectsCollected(len(a.Env.Objects()))
	return nil
}

// discoverSources walks the source tree for markdown documents. Directories
// starting with "_" (static assets, templates) are skipped.
func (a *App) discoverSources() ([]sourceFile, error) {
	root := a.Srcdir()
	var sources []sourceFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		docname := filepath.ToSlash(strings.TrimSuffix(rel, ".md"))
		sources = append(sources, sourceFile{docname: docname, path: path})
		return nil
	})
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "discover source documents").
			WithContext("source_dir", root)
	}
	return sources, nil
}

// checkReferences resolves every cross-document reference, handing unresolved
// ones to the missing-reference hooks before warning.
func (a *App) checkReferences() {
	for _, ref := range a.Env.Refs() {
		switch ref.Kind {
		case docmodel.RefInternal:
			if a.Env.ResolveInternal(ref.Target) {
				continue
			}
		case docmodel.RefInventory:
			// never resolvable locally, hooks get first refusal
		}
		if a.fireMissingReference(&ref) {
			continue
		}
		category := "ref.internal"
		if ref.Kind == docmodel.RefInventory || ref.External {
			category = "ref.external"
		}
		a.Warnings.Warn(category, "unresolved reference",
			logfields.Docname(ref.Docname),
			logfields.Reference(ref.Target))
	}
}

// writePhase emits output for outdated documents and finalizes the build.
func (a *App) writePhase(ctx context.Context) error {
	phaseStart := time.Now()
	defer func() { a.Recorder.ObservePhaseDuration("write", time.Since(phaseStart)) }()

	outdated, err := a.builder.OutdatedDocs(ctx)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryBuild, "determine outdated documents")
	}
	if err := a.builder.PrepareWriting(outdated); err != nil {
		return derrors.WrapError(err, derrors.CategoryBuild, "prepare writing")
	}
	for _, docname := range outdated {
		doc := a.Env.Document(docname)
		if doc == nil {
			continue
		}
		if err := a.builder.WriteDoc(ctx, doc); err != nil {
			return derrors.WrapError(err, derrors.CategoryBuild, "write document").
				WithContext("docname", docname)
		}
	}
	if err := a.builder.CopyStaticFiles(ctx); err != nil {
		return derrors.WrapError(err, derrors.CategoryBuild, "copy static files")
	}
	if err := a.builder.Finish(ctx); err != nil {
		return derrors.WrapError(err, derrors.CategoryBuild, "finish build")
	}
	return nil
}

// recordFingerprints persists the fingerprint of every known document so the
// next incremental build can skip unchanged ones.
func (a *App) recordFingerprints(ctx context.Context) error {
	known := make(map[string]struct{})
	for _, docname := range a.Env.FoundDocs() {
		known[docname] = struct{}{}
		doc := a.Env.Document(docname)
		if err := a.State.Record(ctx, docname, doc.Fingerprint); err != nil {
			return derrors.WrapError(err, derrors.CategoryBuild, "record fingerprint")
		}
	}
	return a.State.Prune(ctx, known)
}

// OutdatedByFingerprint compares environment fingerprints against the state
// store; builders with incremental output use this as their OutdatedDocs.
func (a *App) OutdatedByFingerprint(ctx context.Context) ([]string, error) {
	var outdated []string
	for _, docname := range a.Env.FoundDocs() {
		doc := a.Env.Document(docname)
		stored, err := a.State.Fingerprint(ctx, docname)
		if err != nil {
			return nil, err
		}
		if stored != doc.Fingerprint {
			outdated = append(outdated, docname)
		}
	}
	return outdated, nil
}

// StaticSourceDir returns the static asset directory, or "" when absent.
func (a *App) StaticSourceDir() string {
	dir := filepath.Join(a.Srcdir(), a.Config.Source.StaticDir)
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return ""
	}
	return dir
}
