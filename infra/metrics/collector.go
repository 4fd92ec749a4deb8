package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/evrace/core/metrics"
	"github.com/kilianp07/evrace/core/sweep"
	"github.com/kilianp07/evrace/infra/logger"
	"github.com/kilianp07/evrace/internal/eventbus"
)

// StartProgressCollector subscribes to the sweep progress bus and forwards
// each event to rec. It stops when the context is canceled or the bus is
// closed. The returned channel is closed once the collector has stopped.
func StartProgressCollector(ctx context.Context, bus *eventbus.TypedBus[sweep.Progress], rec coremetrics.ProgressRecorder) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || rec == nil {
		close(done)
		return done
	}
	log := logger.New("progress-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case p, ok := <-sub:
				if !ok {
					return
				}
				if err := rec.RecordProgress(p.RunID, p.Done, p.Total); err != nil {
					log.Errorf("record progress %d/%d: %v", p.Done, p.Total, err)
				}
			}
		}
	}()
	return done
}
