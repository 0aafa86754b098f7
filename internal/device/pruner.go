package device

import (
	"context"
	"sync"
	"time"

	"github.com/padworks/padlink/internal/infrastructure/logging"
)

// pruneInterval is how often the retention sweep runs. The first sweep
// happens immediately on Start so a long-stopped service catches up.
const pruneInterval = 24 * time.Hour

// Pruner enforces the archive retention window with periodic deletes.
type Pruner struct {
	archive Archive
	retain  time.Duration
	log     *logging.Logger

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewPruner creates a pruner that deletes archive entries older than
// retain. Call Start to begin sweeping.
func NewPruner(archive Archive, retain time.Duration, log *logging.Logger) *Pruner {
	return &Pruner{
		archive: archive,
		retain:  retain,
		log:     log.Component("pruner"),
		done:    make(chan struct{}),
	}
}

// Start begins the sweep loop. Stop or the context ends it.
func (p *Pruner) Start(ctx context.Context) {
	p.wg.Add(1)
	go p.loop(ctx)
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish.
// Safe to call multiple times.
func (p *Pruner) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
		p.wg.Wait()
	})
}

func (p *Pruner) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	p.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *Pruner) sweep(ctx context.Context) {
	pruned, err := p.archive.Prune(ctx, p.retain)
	if err != nil {
		p.log.Error("archive prune failed", "error", err)
		return
	}
	if pruned > 0 {
		p.log.Info("archive pruned", "deleted", pruned, "retention", p.retain.String())
	}
}
