package docmodel

import (
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Parse parses a Markdown source into a Document: headings become sections
// (each with a unique anchor) and link destinations are classified into
// cross-document references.
//
// Every document declares itself as a std:doc object and every heading as a
// std:label object named "<docname>:<anchor>".
func Parse(docname string, src []byte) (*Document, error) {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	doc := &Document{
		Docname:     docname,
		Fingerprint: Fingerprint(src),
	}
	anchors := NewAnchorAllocator()

	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gmast.Heading:
			title := nodeText(node, src)
			anchor := anchors.Allocate(title)
			doc.Sections = append(doc.Sections, Section{Title: title, Anchor: anchor, Level: node.Level})
			if doc.Title == "" && node.Level == 1 {
				doc.Title = title
			}
		case *gmast.Link:
			doc.addRef(string(node.Destination))
		case *gmast.AutoLink:
			doc.addRef(string(node.URL(src)))
		}
		return gmast.WalkContinue, nil
	})

	if doc.Title == "" {
		doc.Title = docname
	}

	doc.collectObjects()
	return doc, nil
}

// addRef classifies a link destination and records cross-document references.
// Web links and same-page fragments are not references the build has to
// resolve, so they are dropped here.
func (d *Document) addRef(dest string) {
	dest = strings.TrimSpace(dest)
	switch {
	case dest == "" || strings.HasPrefix(dest, "#"):
		return
	case strings.HasPrefix(dest, "inv:"):
		target := strings.TrimPrefix(dest, "inv:")
		reftype := ""
		// "inv:domain:role:name" carries an explicit reference type.
		if parts := strings.SplitN(target, ":", 3); len(parts) == 3 {
			reftype = parts[0] + ":" + parts[1]
			target = parts[2]
		}
		d.Refs = append(d.Refs, Ref{Kind: RefInventory, Docname: d.Docname, Target: target, Reftype: reftype})
	case strings.Contains(dest, "://") || strings.HasPrefix(dest, "mailto:"):
		return
	default:
		d.Refs = append(d.Refs, Ref{Kind: RefInternal, Docname: d.Docname, Target: NormalizeInternalTarget(dest)})
	}
}

// NormalizeInternalTarget maps a relative markdown link to "docname[#anchor]".
func NormalizeInternalTarget(dest string) string {
	target, anchor, hasAnchor := strings.Cut(dest, "#")
	target = strings.TrimPrefix(target, "./")
	target = strings.TrimSuffix(target, ".md")
	if hasAnchor {
		return target + "#" + anchor
	}
	return target
}

// collectObjects derives the document's inventory entries from its sections.
func (d *Document) collectObjects() {
	d.Objects = append(d.Objects, Object{
		Name:     d.Docname,
		Domain:   "std",
		Role:     "doc",
		Priority: -1,
		Docname:  d.Docname,
		DispName: d.Title,
	})
	for _, s := range d.Sections {
		d.Objects = append(d.Objects, Object{
			Name:     d.Docname + ":" + s.Anchor,
			Domain:   "std",
			Role:     "label",
			Priority: 1,
			Docname:  d.Docname,
			Anchor:   s.Anchor,
			DispName: s.Title,
		})
	}
}

// nodeText concatenates the raw text segments below a node.
func nodeText(n gmast.Node, src []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(child gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if t, ok := child.(*gmast.Text); ok {
			b.Write(t.Segment.Value(src))
		}
		return gmast.WalkContinue, nil
	})
	return b.String()
}
