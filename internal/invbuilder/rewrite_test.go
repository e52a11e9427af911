package invbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewritePendingAddress(t *testing.T) {
	cases := []struct {
		name string
		uri  string
		want string
	}{
		{"doc with anchor", "#document-chapter#sec-1", "index.html#sec-1"},
		{"doc without anchor", "#document-chapter", "index.html"},
		{"nested docname", "#document-guide/setup#prereqs", "index.html#prereqs"},
		{"already page-qualified", "chapter.html#sec-1", "chapter.html#sec-1"},
		{"external address", "https://example.com/page#frag", "https://example.com/page#frag"},
		{"plain anchor", "#sec-1", "#sec-1"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RewritePendingAddress(tc.uri, "index", ".html"))
		})
	}
}
