package invbuilder

import (
	"log/slog"

	"git.home.luguber.info/inful/docindex/internal/builder"
	"git.home.luguber.info/inful/docindex/internal/config"
	"git.home.luguber.info/inful/docindex/internal/docmodel"
	"git.home.luguber.info/inful/docindex/internal/logfields"
)

// Setup subscribes the inventory-builder hooks to an app's lifecycle:
// cross-reference noise suppression at configuration finalization, the link
// target rewriter at builder initialization, and external-reference
// suppression for unresolved references. The builder variants themselves are
// registered at package load.
//
// Subscribe after the cross-project resolver so external references carry
// their mark before the suppression hook sees them.
func Setup(app *builder.App) {
	app.OnConfigFinalized(disableIntersphinx)
	app.OnBuilderInited(installLinkRewriter)
	app.OnMissingReference(ignoreExternalRefs)
	app.DeclareParallelReadSafe(true)
}

// disableIntersphinx turns off cross-project lookups and silences reference
// noise when the invocation requests an inventory-only build: such a build
// produces the index other projects consume, it does not resolve against
// theirs, and partially linked content would otherwise flood the log.
func disableIntersphinx(app *builder.App, cfg *config.Config) {
	if cfg.InventoryFilename == "" {
		cfg.InventoryFilename = config.DefaultInventoryFilename
	}

	name := DetectBuilder(app.Argv)
	if !IsInventoryBuilder(name) {
		return
	}

	slog.Debug("Inventory build detected, disabling cross-project resolution",
		logfields.Builder(name))

	cfg.Intersphinx.Mapping = map[string]string{}
	cfg.Intersphinx.DisabledReftypes = []string{"*"}
	cfg.SuppressWarnings = append(cfg.SuppressWarnings, "ref.*", "parser")
}

// ignoreExternalRefs silences references the cross-project mechanism tagged
// as external: treated as resolved-to-nothing, no warning. Internal
// references fall through to the standard warning behavior.
func ignoreExternalRefs(_ *builder.App, ref *docmodel.Ref) bool {
	return ref.External
}
