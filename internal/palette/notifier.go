// Package palette asks the layer palette to re-read the filter tree after it
// changed.
package palette

import (
	"context"
	"sync/atomic"

	"github.com/JeffStuy/cs-layerfilterutil/internal/config"
	"github.com/JeffStuy/cs-layerfilterutil/pkg/log"
)

// RevisionSource reports the document revision a refresh is for.
type RevisionSource interface {
	Revision(ctx context.Context) (int64, error)
}

type Notifier struct {
	enabled  bool
	source   RevisionSource
	log      log.LoggerService
	requests atomic.Int64
}

func NewNotifier(cfg config.PaletteConfig, source RevisionSource, logger log.LoggerService) *Notifier {
	if logger == nil {
		logger = log.NewDiscardLogger()
	}
	return &Notifier{
		enabled: cfg.Refresh,
		source:  source,
		log:     logger,
	}
}

// Refresh requests a palette refresh. It is a no-op while refreshing is
// disabled, the same as when the palette is closed.
func (n *Notifier) Refresh(ctx context.Context) error {
	if !n.enabled {
		n.log.Debug("Palette refresh disabled, skipping")
		return nil
	}

	n.requests.Add(1)
	if n.source == nil {
		n.log.Info("Layer palette refresh requested")
		return nil
	}

	rev, err := n.source.Revision(ctx)
	if err != nil {
		return err
	}
	n.log.Info("Layer palette refresh requested for revision %d", rev)
	return nil
}

// Requests returns how many refreshes have been requested.
func (n *Notifier) Requests() int64 {
	return n.requests.Load()
}
