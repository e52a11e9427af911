package html_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	xhtml "golang.org/x/net/html"

	"git.home.luguber.info/inful/docindex/internal/builder"
	_ "git.home.luguber.info/inful/docindex/internal/builder/html"
	"git.home.luguber.info/inful/docindex/internal/config"
)

func buildSite(t *testing.T, sources map[string]string, static map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	srcdir := filepath.Join(dir, "docs")
	for name, body := range sources {
		path := filepath.Join(srcdir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	for name, body := range static {
		path := filepath.Join(srcdir, "_static", name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}

	cfg := &config.Config{Builder: "html"}
	cfg.Site.Title = "Test Site"
	cfg.Site.RootDoc = "index"
	cfg.Source.Directory = srcdir
	cfg.Output.Directory = filepath.Join(dir, "build")
	cfg.ApplyDefaults()

	app := builder.New(cfg)
	require.NoError(t, app.Run(context.Background()))
	return cfg.Output.Directory
}

func parsePage(t *testing.T, path string) *xhtml.Node {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	doc, err := xhtml.Parse(f)
	require.NoError(t, err)
	return doc
}

func attr(n *xhtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// collect walks the parsed page and gathers attribute values of matching
// elements.
func collect(n *xhtml.Node, tag, key string, out *[]string) {
	if n.Type == xhtml.ElementNode && n.Data == tag {
		if v := attr(n, key); v != "" {
			*out = append(*out, v)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, tag, key, out)
	}
}

func TestBuildWritesOnePagePerDocument(t *testing.T) {
	outdir := buildSite(t, map[string]string{
		"index.md":       "# Home\n\n[guide](guide/setup.md)\n",
		"guide/setup.md": "# Setup\n\n## Install\n",
	}, nil)

	require.FileExists(t, filepath.Join(outdir, "index.html"))
	require.FileExists(t, filepath.Join(outdir, "guide", "setup.html"))
}

func TestBuildPageAnchorsMatchHeadings(t *testing.T) {
	outdir := buildSite(t, map[string]string{
		"index.md": "# Home\n\n## Install\n\n## Install\n",
	}, nil)

	page := parsePage(t, filepath.Join(outdir, "index.html"))
	var ids []string
	for _, tag := range []string{"h1", "h2"} {
		collect(page, tag, "id", &ids)
	}
	require.ElementsMatch(t, []string{"home", "install", "install-1"}, ids)
}

func TestBuildRewritesInternalLinks(t *testing.T) {
	outdir := buildSite(t, map[string]string{
		"index.md": "# Home\n\n[setup](guide.md) [install](guide.md#install)\n",
		"guide.md": "# Guide\n\n## Install\n",
	}, nil)

	page := parsePage(t, filepath.Join(outdir, "index.html"))
	var hrefs []string
	collect(page, "a", "href", &hrefs)
	require.ElementsMatch(t, []string{"guide.html", "guide.html#install"}, hrefs)
}

func TestBuildCopiesStaticFiles(t *testing.T) {
	outdir := buildSite(t, map[string]string{
		"index.md": "# Home\n",
	}, map[string]string{
		"docindex.css": "body{}",
	})

	data, err := os.ReadFile(filepath.Join(outdir, "_static", "docindex.css"))
	require.NoError(t, err)
	require.Equal(t, "body{}", string(data))
}

func TestBuildPageTitleEscaped(t *testing.T) {
	outdir := buildSite(t, map[string]string{
		"index.md": "# Ops & Care\n",
	}, nil)

	data, err := os.ReadFile(filepath.Join(outdir, "index.html"))
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "<title>Ops &amp; Care</title>"))
}
