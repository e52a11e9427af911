package builder

import (
	"git.home.luguber.info/inful/docindex/internal/config"
	"git.home.luguber.info/inful/docindex/internal/docmodel"
)

// ConfigFinalizedHook runs after defaults are applied and before the builder
// is created. Hooks may still mutate the configuration here.
type ConfigFinalizedHook func(app *App, cfg *config.Config)

// BuilderInitedHook runs once the active builder is constructed and
// initialized. The usual use is wrapping the app's target URI chain.
type BuilderInitedHook func(app *App)

// MissingReferenceHook is consulted for references the environment could not
// resolve. Returning true claims the reference: it is treated as resolved-to-
// nothing and no warning is emitted.
type MissingReferenceHook func(app *App, ref *docmodel.Ref) bool

// TargetURIFunc computes the address a link to docname resolves to.
type TargetURIFunc func(docname, typ string) string

type hooks struct {
	configFinalized  []ConfigFinalizedHook
	builderInited    []BuilderInitedHook
	missingReference []MissingReferenceHook
}

// OnConfigFinalized subscribes a hook to configuration finalization.
func (a *App) OnConfigFinalized(h ConfigFinalizedHook) {
	a.hooks.configFinalized = append(a.hooks.configFinalized, h)
}

// OnBuilderInited subscribes a hook to builder initialization.
func (a *App) OnBuilderInited(h BuilderInitedHook) {
	a.hooks.builderInited = append(a.hooks.builderInited, h)
}

// OnMissingReference subscribes a hook to unresolved-reference events.
// Hooks run in subscription order; the first to claim a reference wins.
func (a *App) OnMissingReference(h MissingReferenceHook) {
	a.hooks.missingReference = append(a.hooks.missingReference, h)
}

func (a *App) fireConfigFinalized() {
	for _, h := range a.hooks.configFinalized {
		h(a, a.Config)
	}
}

func (a *App) fireBuilderInited() {
	for _, h := range a.hooks.builderInited {
		h(a)
	}
}

func (a *App) fireMissingReference(ref *docmodel.Ref) bool {
	for _, h := range a.hooks.missingReference {
		if h(a, ref) {
			return true
		}
	}
	return false
}

// WrapTargetURI installs a wrapper around the current target URI chain. The
// wrapper receives the previous chain and must return the replacement.
func (a *App) WrapTargetURI(wrap func(next TargetURIFunc) TargetURIFunc) {
	a.targetURI = wrap(a.targetURI)
}

// TargetURI resolves a link address through the active builder plus any
// installed wrappers.
func (a *App) TargetURI(docname, typ string) string {
	if a.targetURI == nil {
		return docname
	}
	return a.targetURI(docname, typ)
}
