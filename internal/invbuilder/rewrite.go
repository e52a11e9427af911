package invbuilder

import (
	"strings"

	"git.home.luguber.info/inful/docindex/internal/builder"
	"git.home.luguber.info/inful/docindex/internal/builder/singlehtml"
)

// RewritePendingAddress corrects a single-page pending address. An address of
// the form "#document-<docname>[#anchor]" is redirected to the combined
// output page, keeping only the anchor. Any other address is returned
// unchanged.
func RewritePendingAddress(uri, rootDoc, outSuffix string) string {
	if !strings.HasPrefix(uri, singlehtml.DocMarkerPrefix) {
		return uri
	}
	rest := uri[len(singlehtml.DocMarkerPrefix):]
	if i := strings.Index(rest, "#"); i >= 0 {
		return rootDoc + outSuffix + rest[i:]
	}
	return rootDoc + outSuffix
}

// installLinkRewriter wraps the app's target URI chain for single-page
// builds, where the delegate hands out pending "#document-" addresses that
// are only meaningful inside the unassembled multi-page representation.
func installLinkRewriter(app *builder.App) {
	active := app.Builder()
	if active == nil {
		return
	}
	name := active.Name()
	if name != NameSingleHTML && name != singlehtml.Name {
		return
	}

	rootDoc := app.Config.Site.RootDoc
	outSuffix := active.OutSuffix()
	app.WrapTargetURI(func(next builder.TargetURIFunc) builder.TargetURIFunc {
		return func(docname, typ string) string {
			return RewritePendingAddress(next(docname, typ), rootDoc, outSuffix)
		}
	})
}
