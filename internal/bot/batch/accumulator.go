// Package batch groups files a user sends in quick succession into one batch.
//
// Every arrival restarts a per-user debounce timer. When the timer fires the
// open batch is closed and queued until the user supplies a description.
package batch

import (
	"context"
	"time"

	"github.com/dmitrijs2005/sharebot/internal/bot/models"
	"github.com/dmitrijs2005/sharebot/internal/bot/scheduler"
	"github.com/dmitrijs2005/sharebot/internal/bot/session"
	"github.com/dmitrijs2005/sharebot/internal/logging"
)

// Purpose is the scheduler key purpose for close timers.
const Purpose = "batch_close"

// CloseFunc is invoked, outside any session lock, once per closed batch.
type CloseFunc func(userID int64, b *models.Batch)

type Accumulator struct {
	store   *session.Store
	sched   scheduler.Scheduler
	delay   time.Duration
	logger  logging.Logger
	onClose CloseFunc
}

func NewAccumulator(store *session.Store, sched scheduler.Scheduler, delay time.Duration, logger logging.Logger) *Accumulator {
	return &Accumulator{
		store:  store,
		sched:  sched,
		delay:  delay,
		logger: logger.With("module", "batch"),
	}
}

// OnClose registers the callback fired when a batch closes. It must be set
// before the first Add.
func (a *Accumulator) OnClose(fn CloseFunc) {
	a.onClose = fn
}

func timerKey(userID int64) scheduler.Key {
	return scheduler.Key{UserID: userID, Purpose: Purpose}
}

// Add appends ref to the user's open batch, opening one if needed, and
// restarts the close timer. It reports whether a new batch was opened.
func (a *Accumulator) Add(userID, chatID int64, ref models.FileRef) bool {
	var (
		opened bool
		size   int
	)

	a.store.Do(userID, func(s *session.Session) {
		if s.Open == nil {
			s.Open = &models.Batch{ChatID: chatID}
			opened = true
		}
		s.Open.Files = append(s.Open.Files, ref)
		s.Version++
		size = len(s.Open.Files)

		version := s.Version
		a.sched.ScheduleOnce(timerKey(userID), a.delay, func() {
			a.close(userID, version)
		})
	})

	a.logger.Debug(context.Background(), "file buffered", "user_id", userID, "kind", ref.Kind, "batch_size", size, "opened", opened)
	return opened
}

// close moves the open batch to the ready queue if version is still current.
// Stale or repeated fires are no-ops, so a batch closes at most once.
func (a *Accumulator) close(userID int64, version uint64) {
	var closed *models.Batch

	a.store.Do(userID, func(s *session.Session) {
		if s.Open == nil || s.Version != version {
			return
		}
		closed = s.Open
		s.Open = nil
		s.Ready = append(s.Ready, closed)
	})

	if closed == nil {
		a.logger.Debug(context.Background(), "stale close timer ignored", "user_id", userID, "version", version)
		return
	}

	a.logger.Info(context.Background(), "batch closed", "user_id", userID, "files", closed.Len())
	if a.onClose != nil {
		a.onClose(userID, closed)
	}
}

// TakeReady pops the oldest closed batch waiting for a description.
func (a *Accumulator) TakeReady(userID int64) (*models.Batch, bool) {
	var b *models.Batch
	a.store.Do(userID, func(s *session.Session) {
		if len(s.Ready) == 0 {
			return
		}
		b = s.Ready[0]
		s.Ready = s.Ready[1:]
	})
	return b, b != nil
}

// Awaiting reports how many closed batches wait for a description.
func (a *Accumulator) Awaiting(userID int64) int {
	var n int
	a.store.Do(userID, func(s *session.Session) {
		n = len(s.Ready)
	})
	return n
}

// Discard cancels the close timer and drops the open batch and every closed
// batch. It returns the number of files dropped.
func (a *Accumulator) Discard(userID int64) int {
	var dropped int
	a.store.Do(userID, func(s *session.Session) {
		a.sched.Cancel(timerKey(userID))
		dropped = s.Open.Len()
		for _, b := range s.Ready {
			dropped += b.Len()
		}
		s.Open = nil
		s.Ready = nil
		s.Version++
	})
	return dropped
}
