package history

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/lambda-display/internal/display"
)

// PruneEvery is how often old readings are deleted while running.
const PruneEvery = 24 * time.Hour

// Recorder writes readings on its own goroutine so the event loop never
// waits on the database.
type Recorder struct {
	store     Store
	retention time.Duration
	queue     chan []Reading
	now       func() time.Time
}

// NewRecorder creates a Recorder holding up to buffer pending updates.
// A retention of 0 keeps readings forever.
func NewRecorder(store Store, retention time.Duration, buffer int) *Recorder {
	if buffer < 1 {
		buffer = 1
	}
	return &Recorder{
		store:     store,
		retention: retention,
		queue:     make(chan []Reading, buffer),
		now:       time.Now,
	}
}

// Record queues the readings of one update. It never blocks; when the
// queue is full the update is dropped.
func (r *Recorder) Record(at time.Time, s display.Snapshot, recording bool) {
	readings := FromSnapshot(at, s, recording)
	if len(readings) == 0 {
		return
	}
	select {
	case r.queue <- readings:
	default:
		log.Printf("history: queue full, dropping %d readings", len(readings))
	}
}

// Run stores queued readings until ctx is done, pruning at start and every
// PruneEvery. Updates still queued when ctx ends are written before Run
// returns.
func (r *Recorder) Run(ctx context.Context) {
	r.prune()
	ticker := time.NewTicker(PruneEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case readings := <-r.queue:
					r.insert(readings)
				default:
					return
				}
			}
		case readings := <-r.queue:
			r.insert(readings)
		case <-ticker.C:
			r.prune()
		}
	}
}

func (r *Recorder) insert(readings []Reading) {
	if err := r.store.Insert(readings); err != nil {
		log.Printf("history: %v", err)
	}
}

// prune deletes readings older than the retention period.
func (r *Recorder) prune() {
	if r.retention <= 0 {
		return
	}
	n, err := r.store.DeleteBefore(r.now().Add(-r.retention))
	if err != nil {
		log.Printf("history: prune: %v", err)
		return
	}
	if n > 0 {
		log.Printf("history: pruned %d readings older than %v", n, r.retention)
	}
}
