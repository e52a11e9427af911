package invbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectBuilder(t *testing.T) {
	cases := []struct {
		name string
		argv []string
		want string
	}{
		{"short flag pair", []string{"docindex", "build", "-b", "inventory-html"}, "inventory-html"},
		{"long flag", []string{"docindex", "build", "--builder=singlehtml"}, "singlehtml"},
		{"short wins over long", []string{"docindex", "-b", "html", "--builder=singlehtml"}, "html"},
		{"dangling short flag", []string{"docindex", "build", "-b"}, ""},
		{"no builder flag", []string{"docindex", "build", "-o", "out"}, ""},
		{"empty argv", nil, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectBuilder(tc.argv))
		})
	}
}

func TestIsInventoryBuilder(t *testing.T) {
	assert.True(t, IsInventoryBuilder("inventory-html"))
	assert.True(t, IsInventoryBuilder("inventory-singlehtml"))
	assert.False(t, IsInventoryBuilder("html"))
	assert.False(t, IsInventoryBuilder(""))
}
