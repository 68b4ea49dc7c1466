/*
Copyright 2026 The quartzfs Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package watch

import (
	"log"
	"sync"
	"time"

	"github.com/quartzfs/quartzfs/pkg/inode"
	"github.com/quartzfs/quartzfs/pkg/qferr"
)

// DefaultInterval is the polling interval used when Config.Interval is
// zero.
const DefaultInterval = 5 * time.Second

// Config configures a Service.
type Config struct {
	Interval time.Duration
	Logger   *log.Logger
}

// Service is a polling watch service: one background goroutine
// re-snapshots every registered directory on a fixed interval and
// dispatches the differences to each directory's Key.
type Service struct {
	interval time.Duration
	logger   *log.Logger

	mu         sync.Mutex
	cond       *sync.Cond
	keys       map[*Key]bool
	queue      []*Key
	closed     bool
	pollerOn   bool
	pollerDone chan struct{}
}

// New returns a Service. The poller goroutine is started lazily on the
// first Register call and stops itself once no active keys remain,
// restarting on the next Register.
func New(cfg Config) *Service {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Service{interval: interval, logger: logger, keys: make(map[*Key]bool)}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Register snapshots dir's current entries and returns a new Key in
// state READY, subscribed to kinds.
func (s *Service) Register(dir *inode.Directory, kinds ...Kind) (*Key, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, qferr.ErrClosedWatchService
	}
	k := &Key{
		svc:         s,
		dir:         dir,
		kinds:       kindSet(kinds),
		state:       StateReady,
		fingerprint: snapshotFingerprint(dir),
	}
	s.keys[k] = true
	needStart := !s.pollerOn
	if needStart {
		s.pollerOn = true
		s.pollerDone = make(chan struct{})
	}
	s.mu.Unlock()
	if needStart {
		go s.pollLoop()
	}
	return k, nil
}

func (s *Service) activeCountLocked() int {
	n := 0
	for k := range s.keys {
		if k.State() != StateCancelled {
			n++
		}
	}
	return n
}

func (s *Service) pollLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		<-ticker.C
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		if s.activeCountLocked() == 0 {
			s.pollerOn = false
			s.mu.Unlock()
			return
		}
		snapshot := make([]*Key, 0, len(s.keys))
		for k := range s.keys {
			snapshot = append(snapshot, k)
		}
		s.mu.Unlock()

		for _, k := range snapshot {
			func() {
				defer func() {
					if r := recover(); r != nil {
						s.logger.Printf("watch: poll scan panic: %v", r)
					}
				}()
				k.scan()
			}()
		}
	}
}

func (s *Service) enqueue(k *Key) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, k)
	s.cond.Broadcast()
	s.mu.Unlock()
}

func (s *Service) popLocked() *Key {
	k := s.queue[0]
	s.queue = s.queue[1:]
	return k
}

// Poll returns the next ready key without blocking, or nil if none is
// ready.
func (s *Service) Poll() (*Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, qferr.ErrClosedWatchService
	}
	if len(s.queue) == 0 {
		return nil, nil
	}
	return s.popLocked(), nil
}

// PollTimeout blocks up to timeout for a ready key, returning nil (no
// error, no key) on expiry.
func (s *Service) PollTimeout(timeout time.Duration) (*Key, error) {
	deadline := time.Now().Add(timeout)
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.queue) == 0 && !s.closed {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}
		timer := time.AfterFunc(remaining, func() {
			s.mu.Lock()
			s.cond.Broadcast()
			s.mu.Unlock()
		})
		s.cond.Wait()
		timer.Stop()
	}
	if s.closed {
		return nil, qferr.ErrClosedWatchService
	}
	if len(s.queue) == 0 {
		return nil, nil
	}
	return s.popLocked(), nil
}

// Take blocks indefinitely for a ready key.
func (s *Service) Take() (*Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.queue) == 0 && !s.closed {
		s.cond.Wait()
	}
	if s.closed {
		return nil, qferr.ErrClosedWatchService
	}
	return s.popLocked(), nil
}

// Close invalidates every registered key and wakes every waiter with
// closed-watch-service; a subsequent Register also fails that way.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for k := range s.keys {
		k.Cancel()
	}
	s.queue = nil
	s.cond.Broadcast()
	s.mu.Unlock()
	return nil
}
