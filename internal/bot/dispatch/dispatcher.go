// Package dispatch fans inbound updates out to a bounded pool of workers while
// keeping each user's updates strictly in arrival order.
package dispatch

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/dmitrijs2005/sharebot/internal/bot/transport"
	"github.com/dmitrijs2005/sharebot/internal/logging"
)

var ErrStopped = errors.New("dispatcher stopped")

// HandleFunc processes one update.
type HandleFunc func(ctx context.Context, u transport.Update)

type userQueue struct {
	updates []transport.Update
	// enqueued is true while the user sits in the ready list or one of its
	// updates is being handled.
	enqueued bool
}

// Dispatcher keeps a FIFO queue per user and a round-robin list of users with
// pending work. A user is handed to at most one worker at a time.
type Dispatcher struct {
	handle  HandleFunc
	workers int
	logger  logging.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	queues  map[int64]*userQueue
	ready   *list.List
	stopped bool

	wg sync.WaitGroup
}

func New(workers int, handle HandleFunc, logger logging.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{
		handle:  handle,
		workers: workers,
		logger:  logger.With("module", "dispatcher"),
		queues:  make(map[int64]*userQueue),
		ready:   list.New(),
	}
	d.cond = sync.NewCond(&d.mu)
	return d
}

// Start launches the worker pool. Handlers receive ctx.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func(id int) {
			defer d.wg.Done()
			d.work(ctx, id)
		}(i)
	}
	d.logger.Info(ctx, "dispatcher started", "workers", d.workers)
}

// Submit queues u behind any pending updates of the same user.
func (d *Dispatcher) Submit(u transport.Update) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return ErrStopped
	}

	q := d.queues[u.UserID]
	if q == nil {
		q = &userQueue{}
		d.queues[u.UserID] = q
	}
	q.updates = append(q.updates, u)
	if q.enqueued {
		return nil
	}
	q.enqueued = true
	d.ready.PushBack(u.UserID)
	d.cond.Signal()
	return nil
}

// Stop rejects new updates, lets workers drain what is queued and waits for them.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.cond.Broadcast()
	d.mu.Unlock()
	d.wg.Wait()
}

// Pending returns the number of queued updates not yet picked up.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, q := range d.queues {
		n += len(q.updates)
	}
	return n
}

func (d *Dispatcher) work(ctx context.Context, id int) {
	for {
		d.mu.Lock()
		for d.ready.Len() == 0 && !d.stopped {
			d.cond.Wait()
		}
		if d.ready.Len() == 0 {
			d.mu.Unlock()
			return
		}

		userID := d.ready.Remove(d.ready.Front()).(int64)
		q := d.queues[userID]
		u := q.updates[0]
		q.updates = q.updates[1:]
		d.mu.Unlock()

		d.run(ctx, id, u)

		d.mu.Lock()
		if len(q.updates) > 0 {
			// back of the line so busy users do not starve others
			d.ready.PushBack(userID)
			d.cond.Signal()
		} else {
			q.enqueued = false
			delete(d.queues, userID)
		}
		d.mu.Unlock()
	}
}

func (d *Dispatcher) run(ctx context.Context, worker int, u transport.Update) {
	defer func() {
		if p := recover(); p != nil {
			d.logger.Error(ctx, "handler panic", "worker", worker, "user_id", u.UserID,
				"panic", fmt.Sprint(p), "stack", string(debug.Stack()))
		}
	}()
	d.handle(ctx, u)
}
