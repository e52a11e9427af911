package builder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docindex/internal/docmodel"
)

type stubBuilder struct {
	name string
}

func (s *stubBuilder) Name() string                                          { return s.name }
func (s *stubBuilder) Format() string                                        { return "stub" }
func (s *stubBuilder) OutSuffix() string                                     { return ".txt" }
func (s *stubBuilder) Init(*App) error                                       { return nil }
func (s *stubBuilder) OutdatedDocs(context.Context) ([]string, error)        { return nil, nil }
func (s *stubBuilder) PrepareWriting([]string) error                         { return nil }
func (s *stubBuilder) WriteDoc(context.Context, *docmodel.Document) error    { return nil }
func (s *stubBuilder) CopyStaticFiles(context.Context) error                 { return nil }
func (s *stubBuilder) Finish(context.Context) error                          { return nil }
func (s *stubBuilder) TargetURI(docname, _ string) string                    { return docname + ".txt" }

func TestRegistryRegisterAndCreate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("stub", func(app *App) (Builder, error) {
		return &stubBuilder{name: "stub"}, nil
	}))

	require.True(t, reg.Has("stub"))
	require.Equal(t, []string{"stub"}, reg.Names())

	b, err := reg.Create("stub", nil)
	require.NoError(t, err)
	require.Equal(t, "stub", b.Name())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	factory := func(app *App) (Builder, error) { return &stubBuilder{name: "dup"}, nil }

	require.NoError(t, reg.Register("dup", factory))
	require.Error(t, reg.Register("dup", factory))
}

func TestRegistryRejectsInvalidRegistrations(t *testing.T) {
	reg := NewRegistry()
	require.Error(t, reg.Register("", func(app *App) (Builder, error) { return nil, nil }))
	require.Error(t, reg.Register("nil-factory", nil))
}

func TestRegistryUnknownBuilder(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Create("missing", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown builder")
}
