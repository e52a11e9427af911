package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docindex/internal/docmodel"
	"git.home.luguber.info/inful/docindex/internal/environment"
)

// pageResolver mimics a multi-page builder's addressing scheme.
type pageResolver struct{}

func (pageResolver) TargetURI(docname, _ string) string { return docname + ".html" }

func testEnv(t *testing.T) *environment.Environment {
	t.Helper()
	env := environment.New("demo", "2.1")

	index, err := docmodel.Parse("index", []byte("# Demo\n## Overview\n"))
	require.NoError(t, err)
	guide, err := docmodel.Parse("guide", []byte("# Guide\n## Setup\n## Usage\n"))
	require.NoError(t, err)

	env.AddDocument(index)
	env.AddDocument(guide)
	return env
}

func TestDumpAndLoadRoundTrip(t *testing.T) {
	env := testEnv(t)
	path := filepath.Join(t.TempDir(), "objects.inv")

	require.NoError(t, Dump(path, env, pageResolver{}))

	inv, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "demo", inv.Project)
	require.Equal(t, "2.1", inv.Version)

	// One std:doc per document plus one std:label per heading.
	require.Len(t, inv.Entries, 7)

	doc, ok := inv.Entries["guide"]
	require.True(t, ok)
	require.Equal(t, "std:doc", doc.RoleKey())
	require.Equal(t, "guide.html", doc.URI)
	require.Equal(t, "Guide", doc.DispName)

	label, ok := inv.Entries["guide:setup"]
	require.True(t, ok)
	require.Equal(t, "std:label", label.RoleKey())
	require.Equal(t, "guide.html#setup", label.URI)
}

func TestDumpIsDeterministic(t *testing.T) {
	env := testEnv(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "first.inv")
	second := filepath.Join(dir, "second.inv")

	require.NoError(t, Dump(first, env, pageResolver{}))
	require.NoError(t, Dump(second, env, pageResolver{}))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestDumpLeavesNoStagingFile(t *testing.T) {
	env := testEnv(t)
	dir := t.TempDir()

	require.NoError(t, Dump(filepath.Join(dir, "objects.inv"), env, pageResolver{}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "objects.inv", entries[0].Name())
}

func TestDumpFailsOnMissingDirectory(t *testing.T) {
	env := testEnv(t)
	err := Dump(filepath.Join(t.TempDir(), "missing", "objects.inv"), env, pageResolver{})
	require.Error(t, err)
}

func TestDumpRequiresEnvironment(t *testing.T) {
	err := Dump(filepath.Join(t.TempDir(), "objects.inv"), nil, pageResolver{})
	require.Error(t, err)
}

func TestLoadRejectsUnknownHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.inv")
	require.NoError(t, os.WriteFile(path, []byte("# Sphinx inventory version 1\n"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
}
