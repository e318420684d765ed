package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/swachhta/civic-issues/internal/api/metrics"
	"github.com/swachhta/civic-issues/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ErrDispatcherClosed is returned when submitting after Wait has been called.
var ErrDispatcherClosed = errors.New("rescore dispatcher closed")

// Dispatcher reconciles user scores in bulk on a fixed set of workers. User
// ids are routed with consistent hashing, so one user is never reconciled by
// two workers of the same dispatcher at once.
type Dispatcher struct {
	workers []chan string
	scores  ports.ScoreService
	users   ports.UserStore
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	processed atomic.Int64
	failed    atomic.Int64
}

// RescoreStats summarises the work done by a dispatcher.
type RescoreStats struct {
	Processed int64
	Failed    int64
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, scores ports.ScoreService, users ports.UserStore, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan string, numWorkers),
		scores:  scores,
		users:   users,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or once Wait has drained their channel.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a user id to its worker without blocking. It reports false
// when the worker channel is full or the dispatcher is closed.
func (d *Dispatcher) Enqueue(userID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}

	idx := d.shardIndex(userID)
	select {
	case d.workers[idx] <- userID:
		d.observeDepth(idx)
		return true
	default:
		metrics.RescoreDroppedTotal.Inc()
		d.log.Warn().Str("user_id", userID).Int("worker_id", idx).Msg("rescore queue full, dropping user")
		return false
	}
}

// Submit hands a user id to its worker, blocking until there is room.
func (d *Dispatcher) Submit(ctx context.Context, userID string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	idx := d.shardIndex(userID)
	select {
	case d.workers[idx] <- userID:
		d.observeDepth(idx)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EnqueueAll walks every user and enqueues it without blocking.
func (d *Dispatcher) EnqueueAll(ctx context.Context) (accepted, dropped int, err error) {
	err = d.users.ForEachUserID(ctx, func(userID string) error {
		if d.Enqueue(userID) {
			accepted++
		} else {
			dropped++
		}
		return nil
	})
	return accepted, dropped, err
}

// Wait stops accepting work and blocks until the workers have drained
// their channels or their context has been cancelled.
func (d *Dispatcher) Wait() RescoreStats {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	d.wg.Wait()
	return d.Stats()
}

func (d *Dispatcher) Stats() RescoreStats {
	return RescoreStats{Processed: d.processed.Load(), Failed: d.failed.Load()}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) observeDepth(idx int) {
	metrics.RescoreQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case userID, ok := <-ch:
			if !ok {
				return
			}
			d.observeDepth(id)
			if _, err := d.scores.Reconcile(ctx, userID); err != nil {
				d.failed.Add(1)
				d.log.Error().Err(err).
					Str("user_id", userID).
					Int("worker_id", id).
					Msg("rescore failed")
				continue
			}
			d.processed.Add(1)
		}
	}
}
