package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrWorkerClosed is returned for jobs submitted to a closed worker.
var ErrWorkerClosed = errors.New("session: worker closed")

// Progress is a coarse completion report for a background job.
type Progress struct {
	JobID   uuid.UUID
	Name    string
	Percent int
}

// TaskFunc computes a result off the owner goroutine. It must not touch
// session state; everything it reads is captured at submit time. The
// returned commit closure installs the result and runs on the owner
// goroutine. Long tasks should check ctx between phases so a superseding
// job can abort them.
type TaskFunc func(ctx context.Context, report func(percent int)) (commit func(), err error)

// TaskResult is the outcome of one job, delivered on the channel Submit
// returned. Commit is nil when Err is set.
type TaskResult struct {
	ID     uuid.UUID
	Name   string
	Commit func()
	Err    error
}

type task struct {
	id     uuid.UUID
	name   string
	gen    uint64
	run    TaskFunc
	result chan TaskResult
}

func (t *task) finish(r TaskResult) {
	r.ID = t.id
	r.Name = t.name
	t.result <- r
}

// Worker runs geometry jobs one at a time on a dedicated goroutine. At
// most one job is in flight; submitting a new one supersedes the old:
// a running job has its context cancelled, a queued job that never
// started completes with context.Canceled.
type Worker struct {
	logger   *zap.Logger
	slot     chan *task
	progress chan Progress
	quit     chan struct{}
	done     chan struct{}

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	closed bool
}

// NewWorker starts the worker goroutine.
func NewWorker(logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Worker{
		logger:   logger,
		slot:     make(chan *task, 1),
		progress: make(chan Progress, 64),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w
}

// Progress returns the progress stream. Events are dropped rather than
// blocked on when the receiver lags, so a slow consumer never stalls a
// job.
func (w *Worker) Progress() <-chan Progress {
	return w.progress
}

// Submit hands a job to the worker and returns its id and result
// channel. The channel is buffered; the result can be collected at any
// time. Any job already in flight is superseded.
func (w *Worker) Submit(name string, run TaskFunc) (uuid.UUID, <-chan TaskResult) {
	t := &task{
		id:     uuid.New(),
		name:   name,
		run:    run,
		result: make(chan TaskResult, 1),
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		t.finish(TaskResult{Err: ErrWorkerClosed})
		return t.id, t.result
	}
	w.gen++
	t.gen = w.gen
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	for {
		select {
		case w.slot <- t:
			return t.id, t.result
		default:
		}
		select {
		case old := <-w.slot:
			w.logger.Debug("job superseded before start",
				zap.String("job", old.name),
				zap.Stringer("id", old.id))
			old.finish(TaskResult{Err: context.Canceled})
		default:
		}
	}
}

// Close cancels the running job, stops the goroutine, and waits for it
// to exit. Safe to call more than once.
func (w *Worker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	close(w.quit)
	<-w.done
}

func (w *Worker) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.quit:
			// A job queued after closed was set never runs.
			select {
			case t := <-w.slot:
				t.finish(TaskResult{Err: ErrWorkerClosed})
			default:
			}
			return
		case t := <-w.slot:
			w.runTask(t)
		}
	}
}

func (w *Worker) runTask(t *task) {
	w.mu.Lock()
	if t.gen != w.gen {
		w.mu.Unlock()
		t.finish(TaskResult{Err: context.Canceled})
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		if w.cancel != nil {
			w.cancel = nil
		}
		w.mu.Unlock()
		cancel()
	}()

	report := func(percent int) {
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		select {
		case w.progress <- Progress{JobID: t.id, Name: t.name, Percent: percent}:
		default:
		}
	}

	w.logger.Debug("job started", zap.String("job", t.name), zap.Stringer("id", t.id))
	commit, err := runProtected(t, ctx, report)
	if err != nil {
		w.logger.Debug("job failed", zap.String("job", t.name), zap.Error(err))
		t.finish(TaskResult{Err: err})
		return
	}
	t.finish(TaskResult{Commit: commit})
}

// runProtected recovers a panicking job into an error so a bad geometry
// op can never take the process down.
func runProtected(t *task, ctx context.Context, report func(int)) (commit func(), err error) {
	defer func() {
		if r := recover(); r != nil {
			commit = nil
			err = fmt.Errorf("job %s panicked: %v", t.name, r)
		}
	}()
	report(0)
	commit, err = t.run(ctx, report)
	if err == nil {
		report(100)
	}
	return commit, err
}
