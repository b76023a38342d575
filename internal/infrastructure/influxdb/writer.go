package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/gray-logic-timedata/internal/timedata"
)

const (
	defaultPoolSize      = 4
	defaultQueueCapacity = 10000
	errorsBuffer         = 64
	writeTimeout         = 10 * time.Second
)

// Reasons reported to WriteObserver.PointRejected.
const (
	RejectQueueFull = "queue_full"
	RejectClosed    = "closed"
)

// PointWriter is the blocking write call a worker performs.
// api.WriteAPIBlocking satisfies it.
type PointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// WriteObserver receives writer events. The metrics package implements it.
type WriteObserver interface {
	PointWritten(tier string)
	PointRejected(reason string)
	WriteFailed(tier string)
}

type noopWriteObserver struct{}

func (noopWriteObserver) PointWritten(string)  {}
func (noopWriteObserver) PointRejected(string) {}
func (noopWriteObserver) WriteFailed(string)   {}

// WriterConfig configures an AsyncWriter.
type WriterConfig struct {
	PoolSize      int
	QueueCapacity int

	// ReadOnly turns every write into a silent no-op.
	ReadOnly bool

	// AvailableSinceMeasurement holds the per-channel availability markers.
	AvailableSinceMeasurement string
}

type job struct {
	tier  timedata.Tier
	point *write.Point
}

// AsyncWriter queues points and writes them from a fixed worker pool.
//
// WritePoint never blocks: when the queue is full the point is dropped,
// ErrQueueFull is returned and the same error is published on Errors.
// Worker write failures are only published on Errors. There is no retry.
//
// Thread Safety:
//   - WritePoint and PersistAvailableSince are safe for concurrent use.
//   - Start and Close must each be called once.
type AsyncWriter struct {
	writers map[timedata.Tier]PointWriter
	cfg     WriterConfig

	queue  chan job
	errs   chan error
	group  *errgroup.Group
	ctx    context.Context
	closed bool
	mu     sync.RWMutex

	observer WriteObserver
}

// NewAsyncWriter creates a writer over client's per-tier blocking write APIs.
func NewAsyncWriter(client *Client, cfg WriterConfig) *AsyncWriter {
	return NewAsyncWriterWith(map[timedata.Tier]PointWriter{
		timedata.TierAverage: client.writeAPI(timedata.TierAverage),
		timedata.TierMax:     client.writeAPI(timedata.TierMax),
	}, cfg)
}

// NewAsyncWriterWith creates a writer over explicit per-tier writers.
func NewAsyncWriterWith(writers map[timedata.Tier]PointWriter, cfg WriterConfig) *AsyncWriter {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = defaultPoolSize
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = defaultQueueCapacity
	}
	return &AsyncWriter{
		writers:  writers,
		cfg:      cfg,
		queue:    make(chan job, cfg.QueueCapacity),
		errs:     make(chan error, errorsBuffer),
		observer: noopWriteObserver{},
	}
}

// SetObserver sets the event observer. Call before Start.
func (w *AsyncWriter) SetObserver(o WriteObserver) {
	w.observer = o
}

// Start launches the worker pool. Workers drain the queue until Close;
// points still queued when ctx is cancelled are written before Close
// returns.
func (w *AsyncWriter) Start(ctx context.Context) {
	w.ctx = context.WithoutCancel(ctx)
	w.group = &errgroup.Group{}
	for range w.cfg.PoolSize {
		w.group.Go(w.work)
	}
}

func (w *AsyncWriter) work() error {
	for j := range w.queue {
		ctx, cancel := context.WithTimeout(w.ctx, writeTimeout)
		err := w.writers[j.tier].WritePoint(ctx, j.point)
		cancel()

		if err != nil {
			w.observer.WriteFailed(j.tier.String())
			w.publish(fmt.Errorf("%w: %s tier: %w", ErrWriteFailed, j.tier, err))
			continue
		}
		w.observer.PointWritten(j.tier.String())
	}
	return nil
}

// WritePoint enqueues p for the tier's bucket.
//
// Returns:
//   - nil when queued, or always in read-only mode
//   - ErrQueueFull when the queue is saturated
//   - ErrWriterClosed after Close
func (w *AsyncWriter) WritePoint(tier timedata.Tier, p *timedata.Point) error {
	if w.cfg.ReadOnly || p == nil || !p.HasFields() {
		return nil
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.observer.PointRejected(RejectClosed)
		return ErrWriterClosed
	}

	select {
	case w.queue <- job{tier: tier, point: toWritePoint(p)}:
		return nil
	default:
		w.observer.PointRejected(RejectQueueFull)
		err := fmt.Errorf("%w: %s tier, measurement %s", ErrQueueFull, tier, p.Measurement)
		w.publish(err)
		return err
	}
}

// PersistAvailableSince writes an availability marker for one channel:
// measurement AvailableSinceMeasurement, tag edge, integer field named
// after the channel, stamped at since. Markers go to the average tier.
func (w *AsyncWriter) PersistAvailableSince(edgeID int, ch string, since int64) error {
	p := timedata.NewPoint(w.cfg.AvailableSinceMeasurement, edgeID, time.Unix(since, 0))
	p.AddField(ch, since)
	return w.WritePoint(timedata.TierAverage, p)
}

// Errors delivers write failures and queue saturation. The channel is
// buffered; errors are dropped when nobody drains it.
func (w *AsyncWriter) Errors() <-chan error {
	return w.errs
}

// QueueLen returns the number of queued points.
func (w *AsyncWriter) QueueLen() int {
	return len(w.queue)
}

// ReadOnly reports whether writes are disabled.
func (w *AsyncWriter) ReadOnly() bool {
	return w.cfg.ReadOnly
}

// Close stops accepting points, waits for the workers to drain the queue
// and closes Errors. Safe to call more than once.
func (w *AsyncWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	var err error
	if w.group != nil {
		err = w.group.Wait()
	}
	close(w.errs)
	return err
}

func (w *AsyncWriter) publish(err error) {
	select {
	case w.errs <- err:
	default:
	}
}

func toWritePoint(p *timedata.Point) *write.Point {
	return write.NewPoint(p.Measurement, p.Tags, p.Fields, p.Time)
}
