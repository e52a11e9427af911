// Package environment holds the build environment: every parsed document and
// the objects they declare. It is populated during the (possibly parallel)
// read phase and treated as read-only afterwards.
package environment

import (
	"sort"
	"strings"
	"sync"

	"git.home.luguber.info/inful/docindex/internal/docmodel"
)

// Environment is the object graph for one build.
type Environment struct {
	Project string
	Version string

	mu   sync.RWMutex
	docs map[string]*docmodel.Document
}

// New creates an empty environment for the given project.
func New(project, version string) *Environment {
	return &Environment{
		Project: project,
		Version: version,
		docs:    make(map[string]*docmodel.Document),
	}
}

// AddDocument records a parsed document. Safe for concurrent use during the
// read phase; a document read twice keeps the last parse.
func (e *Environment) AddDocument(doc *docmodel.Document) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs[doc.Docname] = doc
}

// FoundDocs returns the sorted set of all known docnames.
func (e *Environment) FoundDocs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.docs))
	for name := range e.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Document returns the parsed document for a docname, or nil.
func (e *Environment) Document(docname string) *docmodel.Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.docs[docname]
}

// HasDoc reports whether a docname is part of this build.
func (e *Environment) HasDoc(docname string) bool {
	return e.Document(docname) != nil
}

// Objects returns every declared object across all documents, sorted by name.
func (e *Environment) Objects() []docmodel.Object {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var objects []docmodel.Object
	for _, doc := range e.docs {
		objects = append(objects, doc.Objects...)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	return objects
}

// LookupObject finds an object by qualified name.
func (e *Environment) LookupObject(name string) (docmodel.Object, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, doc := range e.docs {
		for _, obj := range doc.Objects {
			if obj.Name == name {
				return obj, true
			}
		}
	}
	return docmodel.Object{}, false
}

// Refs returns every outbound cross-document reference, in docname order.
func (e *Environment) Refs() []docmodel.Ref {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.docs))
	for name := range e.docs {
		names = append(names, name)
	}
	sort.Strings(names)

	var refs []docmodel.Ref
	for _, name := range names {
		refs = append(refs, e.docs[name].Refs...)
	}
	return refs
}

// ResolveInternal reports whether an internal reference target
// ("docname" or "docname#anchor") exists in this build.
func (e *Environment) ResolveInternal(target string) bool {
	docname, anchor := splitTarget(target)

	e.mu.RLock()
	doc := e.docs[docname]
	e.mu.RUnlock()

	if doc == nil {
		return false
	}
	if anchor == "" {
		return true
	}
	for _, s := range doc.Sections {
		if s.Anchor == anchor {
			return true
		}
	}
	return false
}

func splitTarget(target string) (docname, anchor string) {
	docname, anchor, _ = strings.Cut(target, "#")
	return docname, anchor
}
