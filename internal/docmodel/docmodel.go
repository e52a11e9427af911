// Package docmodel defines the in-memory representation of a parsed
// documentation source file: its sections, declared objects, and outbound
// cross-document references.
package docmodel

import (
	"crypto/sha256"
	"encoding/hex"
)

// Document represents a single parsed source document.
type Document struct {
	Docname    string // path-derived name without extension, e.g. "guide/install"
	Title      string // first level-1 heading, falls back to the docname
	SourcePath string // absolute path of the markdown source
	Fingerprint string // sha256 of the raw source content

	Sections []Section
	Objects  []Object
	Refs     []Ref
}

// Section is a heading with its in-page anchor.
type Section struct {
	Title  string
	Anchor string
	Level  int
}

// Object is an entry destined for the inventory: a documented symbol
// addressable by name.
type Object struct {
	Name     string // qualified name, e.g. "guide/install" or "guide/install:setup"
	Domain   string // "std"
	Role     string // "doc" or "label"
	Priority int
	Docname  string // defining document
	Anchor   string // in-page anchor, empty for whole-document objects
	DispName string // display name, "-" when identical to Name
}

// RoleKey returns the "domain:role" reference type of the object.
func (o Object) RoleKey() string { return o.Domain + ":" + o.Role }

// RefKind classifies an outbound reference.
type RefKind string

const (
	// RefInternal targets another document (or anchor) of this build.
	RefInternal RefKind = "internal"
	// RefInventory targets an object in another project's inventory.
	RefInventory RefKind = "inventory"
)

// Ref is an outbound cross-document reference found in a document.
type Ref struct {
	Kind    RefKind
	Docname string // source document
	Target  string // docname[#anchor] for internal, [project:]name for inventory refs
	Reftype string // "domain:role" hint, empty when unknown

	// External is set by the cross-project resolver when it claims the
	// reference, whether or not resolution succeeded.
	External bool
}

// Fingerprint computes the content fingerprint used for change detection.
func Fingerprint(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
