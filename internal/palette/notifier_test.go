package palette

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JeffStuy/cs-layerfilterutil/internal/config"
)

type fixedRevision struct {
	rev int64
	err error
}

func (f fixedRevision) Revision(context.Context) (int64, error) {
	return f.rev, f.err
}

func TestNotifier(t *testing.T) {
	ctx := context.Background()

	off := NewNotifier(config.PaletteConfig{Refresh: false}, nil, nil)
	assert.NoError(t, off.Refresh(ctx))
	assert.Equal(t, int64(0), off.Requests())

	on := NewNotifier(config.PaletteConfig{Refresh: true}, fixedRevision{rev: 3}, nil)
	assert.NoError(t, on.Refresh(ctx))
	assert.NoError(t, on.Refresh(ctx))
	assert.Equal(t, int64(2), on.Requests())

	failing := NewNotifier(config.PaletteConfig{Refresh: true}, fixedRevision{err: errors.New("closed")}, nil)
	assert.Error(t, failing.Refresh(ctx))
}
