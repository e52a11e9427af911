// Package inventory reads and writes object inventory files in the
// intersphinx v2 format: four plain-text header lines followed by a
// zlib-compressed stream of "name domain:role priority uri dispname" lines.
// Other documentation builds consume these files for cross-project linking.
package inventory

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zlib"

	"git.home.luguber.info/inful/docindex/internal/docmodel"
	"git.home.luguber.info/inful/docindex/internal/environment"
	derrors "git.home.luguber.info/inful/docindex/internal/errors"
)

const headerLine = "# Sphinx inventory version 2"

// TargetURIResolver supplies the address a documented object's defining
// document resolves to. Builders implement this.
type TargetURIResolver interface {
	TargetURI(docname, typ string) string
}

// Entry is one inventory record.
type Entry struct {
	Name     string
	Domain   string
	Role     string
	Priority int
	URI      string
	DispName string
}

// RoleKey returns the "domain:role" reference type of the entry.
func (e Entry) RoleKey() string { return e.Domain + ":" + e.Role }

// Inventory is a parsed inventory file.
type Inventory struct {
	Project string
	Version string
	Entries map[string]Entry // keyed by object name
}

// Dump serializes the environment's objects to path. The write is staged to a
// temporary file and renamed so a failed dump never leaves a truncated
// artifact. Output is deterministic for an unchanged environment.
func Dump(path string, env *environment.Environment, resolver TargetURIResolver) error {
	if env == nil {
		return derrors.New(derrors.CategoryBuild, derrors.SeverityFatal, "inventory dump requires an initialized environment")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".inv-*")
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "stage inventory file")
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name()) // no-op after successful rename
	}()

	if err := write(tmp, env, resolver); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "flush inventory file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "publish inventory file")
	}
	return nil
}

func write(w io.Writer, env *environment.Environment, resolver TargetURIResolver) error {
	header := fmt.Sprintf("%s\n# Project: %s\n# Version: %s\n# The remainder of this file is compressed using zlib.\n",
		headerLine, env.Project, env.Version)
	if _, err := io.WriteString(w, header); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "write inventory header")
	}

	zw := zlib.NewWriter(w)
	for _, obj := range env.Objects() {
		if _, err := io.WriteString(zw, formatEntry(obj, resolver)); err != nil {
			_ = zw.Close()
			return derrors.WrapError(err, derrors.CategoryFileSystem, "write inventory entry")
		}
	}
	if err := zw.Close(); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "finish inventory stream")
	}
	return nil
}

func formatEntry(obj docmodel.Object, resolver TargetURIResolver) string {
	uri := resolver.TargetURI(obj.Docname, "")
	if obj.Anchor != "" {
		uri += "#" + obj.Anchor
	}
	disp := obj.DispName
	if disp == "" || disp == obj.Name {
		disp = "-"
	}
	return fmt.Sprintf("%s %s:%s %d %s %s\n", obj.Name, obj.Domain, obj.Role, obj.Priority, uri, disp)
}

// Load parses an inventory file.
func Load(r io.Reader) (*Inventory, error) {
	br := bufio.NewReader(r)

	readLine := func() (string, error) {
		line, err := br.ReadString('\n')
		return strings.TrimRight(line, "\n"), err
	}

	first, err := readLine()
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryReference, "read inventory header")
	}
	if first != headerLine {
		return nil, derrors.New(derrors.CategoryReference, derrors.SeverityError,
			fmt.Sprintf("unsupported inventory header: %q", first))
	}

	inv := &Inventory{Entries: make(map[string]Entry)}
	for _, assign := range []struct {
		prefix string
		dst    *string
	}{
		{"# Project: ", &inv.Project},
		{"# Version: ", &inv.Version},
	} {
		line, err := readLine()
		if err != nil {
			return nil, derrors.WrapError(err, derrors.CategoryReference, "read inventory header")
		}
		*assign.dst = strings.TrimPrefix(line, assign.prefix)
	}
	if _, err := readLine(); err != nil { // compression note line
		return nil, derrors.WrapError(err, derrors.CategoryReference, "read inventory header")
	}

	zr, err := zlib.NewReader(br)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryReference, "open inventory stream")
	}
	defer func() { _ = zr.Close() }()

	scanner := bufio.NewScanner(zr)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		entry, err := parseEntry(line)
		if err != nil {
			return nil, err
		}
		inv.Entries[entry.Name] = entry
	}
	if err := scanner.Err(); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryReference, "read inventory stream")
	}
	return inv, nil
}

// LoadFile parses an inventory from disk.
func LoadFile(path string) (*Inventory, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "open inventory file")
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

func parseEntry(line string) (Entry, error) {
	// name domain:role priority uri dispname — dispname may contain spaces.
	fields := strings.SplitN(line, " ", 5)
	if len(fields) < 5 {
		return Entry{}, derrors.New(derrors.CategoryReference, derrors.SeverityError,
			fmt.Sprintf("malformed inventory line: %q", line))
	}
	domain, role, ok := strings.Cut(fields[1], ":")
	if !ok {
		return Entry{}, derrors.New(derrors.CategoryReference, derrors.SeverityError,
			fmt.Sprintf("malformed inventory role: %q", fields[1]))
	}
	prio, err := strconv.Atoi(fields[2])
	if err != nil {
		return Entry{}, derrors.WrapError(err, derrors.CategoryReference, "malformed inventory priority")
	}
	return Entry{
		Name:     fields[0],
		Domain:   domain,
		Role:     role,
		Priority: prio,
		URI:      fields[3],
		DispName: fields[4],
	}, nil
}
