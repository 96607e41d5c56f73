package persist

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crimecore/server/internal/world"
)

const saveTimeout = 30 * time.Second

type saveReq struct {
	snapshot *world.State
	done     chan error
}

// Saver is the single-writer save chain: snapshots queue behind one worker so
// no two SaveAll calls ever overlap. Callers snapshot on the game loop and
// may ignore the returned channel unless they need durability first.
type Saver struct {
	store Store
	log   *zap.Logger

	mu     sync.Mutex
	queue  chan saveReq
	closed bool
	wg     sync.WaitGroup
}

func NewSaver(store Store, log *zap.Logger) *Saver {
	s := &Saver{
		store: store,
		log:   log,
		queue: make(chan saveReq, 64),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *Saver) run() {
	defer s.wg.Done()
	for req := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		err := s.store.SaveAll(ctx, req.snapshot)
		cancel()
		if err != nil {
			s.log.Error("world save failed", zap.Error(err))
		}
		if req.done != nil {
			req.done <- err
			close(req.done)
		}
	}
}

// Save enqueues a snapshot. The returned channel yields the save result once;
// it is pre-resolved with nil when the saver is already closed.
func (s *Saver) Save(snapshot *world.State) <-chan error {
	done := make(chan error, 1)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		done <- nil
		close(done)
		return done
	}
	s.queue <- saveReq{snapshot: snapshot, done: done}
	s.mu.Unlock()
	return done
}

// Close drains the chain and waits for the in-flight save to finish.
func (s *Saver) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()
	s.wg.Wait()
}
