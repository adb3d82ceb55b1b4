package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JeffStuy/cs-layerfilterutil/internal/filtertree"
	"github.com/JeffStuy/cs-layerfilterutil/pkg/db/migrations"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()

	s, err := NewSQLiteStore(SQLiteConfig{
		Path:         filepath.Join(t.TempDir(), "drawing.db"),
		DocumentName: "Test",
	})
	require.NoError(t, err)
	require.NoError(t, s.Connect(ctx))
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewSQLiteStore_RequiresPath(t *testing.T) {
	_, err := NewSQLiteStore(SQLiteConfig{})
	assert.Error(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Health(ctx))

	statuses, err := migrations.NewMigrator(s.DB()).Status(ctx)
	require.NoError(t, err)
	for _, st := range statuses {
		assert.True(t, st.Applied, st.Description)
	}

	doc, err := s.GetDocument(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Test", doc.Name)
	assert.Equal(t, int64(0), doc.Revision)
	assert.False(t, doc.Initialized())

	require.NoError(t, s.MarkInitialized(ctx))
	doc, err = s.GetDocument(ctx)
	require.NoError(t, err)
	assert.True(t, doc.Initialized())
}

func TestLayers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, name := range []string{"Layer0", "Walls", "Layer1"} {
		_, err := s.CreateLayer(ctx, name)
		require.NoError(t, err)
	}

	_, err := s.CreateLayer(ctx, "WALLS")
	require.ErrorIs(t, err, ErrLayerExists)
	_, err = s.CreateLayer(ctx, " ")
	require.Error(t, err)

	layers, err := s.ListLayers(ctx)
	require.NoError(t, err)
	require.Len(t, layers, 3)
	assert.Equal(t, "Layer0", layers[0].Name)
	assert.Equal(t, 2, layers[2].Position)

	refs, err := s.ResolveLayers(ctx, []string{"layer1", "LAYER0", "missing"})
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "Layer0", refs[0].Name, "table order, not argument order")
	assert.Equal(t, "Layer1", refs[1].Name)
	assert.Equal(t, uint64(layers[0].ID), refs[0].ID)
}

func TestFilterTree_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	l0, err := s.CreateLayer(ctx, "0")
	require.NoError(t, err)
	walls, err := s.CreateLayer(ctx, "Walls")
	require.NoError(t, err)

	tree := filtertree.NewTree()
	used, err := tree.Attach(filtertree.NewPropertyNode("All Used Layers", `USED=="True"`,
		filtertree.WithAllowDelete(false), filtertree.WithAllowNested(false)), filtertree.RootID)
	require.NoError(t, err)
	group, err := tree.Attach(filtertree.NewGroupNode("Arch", []filtertree.LayerRef{
		{ID: uint64(walls.ID), Name: walls.Name},
		{ID: uint64(l0.ID), Name: l0.Name},
	}), filtertree.RootID)
	require.NoError(t, err)
	_, err = tree.Attach(filtertree.NewGroupNode("Sub", []filtertree.LayerRef{{ID: uint64(l0.ID), Name: "0"}}), group)
	require.NoError(t, err)
	_, err = tree.Attach(filtertree.NewPropertyNode("Prop", "NAME==\"W*\""), group)
	require.NoError(t, err)

	require.NoError(t, s.SaveFilterTree(ctx, tree))
	require.NoError(t, s.SaveFilterTree(ctx, tree))

	doc, err := s.GetDocument(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc.Revision)
	rev, err := s.Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rev)

	loaded, err := s.LoadFilterTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, tree.Len(), loaded.Len())

	var want, got []filtertree.View
	tree.Walk(func(v filtertree.View, _ int) bool { want = append(want, v); return true })
	loaded.Walk(func(v filtertree.View, _ int) bool { got = append(got, v); return true })
	require.Len(t, got, len(want))

	for i := range want {
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].Kind, got[i].Kind)
		assert.Equal(t, want[i].Expression, got[i].Expression)
		assert.Equal(t, want[i].Layers, got[i].Layers)
		assert.Equal(t, want[i].AllowDelete, got[i].AllowDelete)
		assert.Equal(t, want[i].AllowNested, got[i].AllowNested)
		assert.Equal(t, want[i].ParentName, got[i].ParentName)
		assert.Equal(t, want[i].ChildCount, got[i].ChildCount)
	}

	v, ok := tree.Node(used)
	require.True(t, ok)
	assert.False(t, v.AllowDelete)
}

func TestFilterTree_SaveEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tree := filtertree.NewTree()
	_, err := tree.Attach(filtertree.NewPropertyNode("A", "e"), filtertree.RootID)
	require.NoError(t, err)
	require.NoError(t, s.SaveFilterTree(ctx, tree))

	require.NoError(t, s.SaveFilterTree(ctx, filtertree.NewTree()))

	loaded, err := s.LoadFilterTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}
