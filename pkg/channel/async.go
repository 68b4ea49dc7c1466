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

package channel

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/quartzfs/quartzfs/pkg/inode"
	"github.com/quartzfs/quartzfs/pkg/qferr"
)

// Result is what an async operation resolves to: the transfer count and
// any error.
type Result struct {
	N   int
	Err error
}

// Future is a handle to a still-running (or already-completed) async
// operation.
type Future struct {
	done chan Result
}

// Get blocks until the operation completes and returns its result.
func (f *Future) Get() Result { return <-f.done }

// AsyncChannel wraps a Channel: each operation runs on its own
// goroutine, with at most a caller-chosen number running at once (via
// golang.org/x/sync/semaphore, the same dependency perkeep's go.mod
// already carries for other callers), and reports through a Future or a
// completion handler.
type AsyncChannel struct {
	ch  *Channel
	sem *semaphore.Weighted
}

// NewAsyncChannel wraps ch, allowing at most maxConcurrent operations to
// run at once. maxConcurrent <= 0 means unbounded.
func NewAsyncChannel(ch *Channel, maxConcurrent int64) *AsyncChannel {
	var sem *semaphore.Weighted
	if maxConcurrent > 0 {
		sem = semaphore.NewWeighted(maxConcurrent)
	}
	return &AsyncChannel{ch: ch, sem: sem}
}

// File returns the underlying file entity.
func (a *AsyncChannel) File() *inode.File { return a.ch.File() }

func (a *AsyncChannel) submit(ctx context.Context, work func() Result, handler func(Result)) *Future {
	fut := &Future{done: make(chan Result, 1)}
	openAtSubmit := a.ch.checkOpen() == nil
	go func() {
		if a.sem != nil {
			if err := a.sem.Acquire(ctx, 1); err != nil {
				res := Result{Err: qferr.ErrClosedByInterrupt}
				fut.done <- res
				if handler != nil {
					handler(res)
				}
				return
			}
			defer a.sem.Release(1)
		}
		res := work()
		if openAtSubmit && res.Err == qferr.ErrClosedChannel {
			// The channel was closed while this operation was outstanding.
			res.Err = qferr.ErrAsynchronousClose
		}
		fut.done <- res
		if handler != nil {
			handler(res)
		}
	}()
	return fut
}

// ReadAt submits an asynchronous positioned read. If handler is non-nil
// it is invoked with the result in addition to the returned Future being
// resolvable.
func (a *AsyncChannel) ReadAt(ctx context.Context, p []byte, off int64, handler func(Result)) *Future {
	return a.submit(ctx, func() Result {
		n, err := a.ch.ReadAt(ctx, p, off)
		return Result{N: n, Err: err}
	}, handler)
}

// WriteAt submits an asynchronous positioned write.
func (a *AsyncChannel) WriteAt(ctx context.Context, p []byte, off int64, handler func(Result)) *Future {
	return a.submit(ctx, func() Result {
		n, err := a.ch.WriteAt(ctx, p, off)
		return Result{N: n, Err: err}
	}, handler)
}

// Close closes the underlying channel. Futures still in flight resolve
// with asynchronous-close.
func (a *AsyncChannel) Close() error {
	return a.ch.Close()
}
