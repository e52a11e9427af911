// Package render converts markdown sources to HTML pages for the full
// builders. Heading IDs use the same slug scheme as the inventory anchors so
// in-page fragments and inventory entries agree.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/docindex/internal/docmodel"
)

// Resolver computes the address a cross-document link resolves to, usually
// the app's target URI chain.
type Resolver func(docname, typ string) string

// Renderer converts one document body at a time.
type Renderer struct {
	resolve Resolver
	md      goldmark.Markdown
}

// New creates a renderer resolving cross-document links through resolve.
func New(resolve Resolver) *Renderer {
	r := &Renderer{resolve: resolve}
	r.md = goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(&linkTransformer{resolve: resolve}, 500)),
		),
	)
	return r
}

// RenderBody converts a markdown body to an HTML fragment.
func (r *Renderer) RenderBody(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	ctx := parser.NewContext(parser.WithIDs(newSlugIDs()))
	if err := r.md.Convert(src, &buf, parser.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// Page wraps a rendered body in a minimal page shell.
func Page(title string, body []byte) []byte {
	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	b.WriteString("<link rel=\"stylesheet\" href=\"_static/docindex.css\">\n")
	b.WriteString("</head>\n<body>\n")
	b.Write(body)
	b.WriteString("</body>\n</html>\n")
	return b.Bytes()
}

// slugIDs generates heading IDs with the inventory slug scheme.
type slugIDs struct {
	alloc *docmodel.AnchorAllocator
}

func newSlugIDs() parser.IDs {
	return &slugIDs{alloc: docmodel.NewAnchorAllocator()}
}

func (s *slugIDs) Generate(value []byte, _ gmast.NodeKind) []byte {
	return []byte(s.alloc.Allocate(string(value)))
}

func (s *slugIDs) Put(_ []byte) {}

// linkTransformer rewrites internal markdown link destinations through the
// resolver so emitted pages point at built output, not at .md sources.
type linkTransformer struct {
	resolve Resolver
}

func (t *linkTransformer) Transform(node *gmast.Document, _ text.Reader, _ parser.Context) {
	if t.resolve == nil {
		return
	}
	_ = gmast.Walk(node, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		link, ok := n.(*gmast.Link)
		if !ok {
			return gmast.WalkContinue, nil
		}
		dest := string(link.Destination)
		if rewritten, ok := t.rewrite(dest); ok {
			link.Destination = []byte(rewritten)
		}
		return gmast.WalkContinue, nil
	})
}

func (t *linkTransformer) rewrite(dest string) (string, bool) {
	switch {
	case dest == "" || strings.HasPrefix(dest, "#"):
		return "", false
	case strings.HasPrefix(dest, "inv:"):
		return "", false
	case strings.Contains(dest, "://") || strings.HasPrefix(dest, "mailto:"):
		return "", false
	}
	target := docmodel.NormalizeInternalTarget(dest)
	docname, anchor, hasAnchor := strings.Cut(target, "#")
	uri := t.resolve(docname, "")
	if hasAnchor {
		uri += "#" + anchor
	}
	return uri, true
}
