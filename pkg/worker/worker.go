package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/nimasrn/inquiry-gateway/pkg/logger"
)

var (
	ErrQueueFull = errors.New("worker queue is full")
	ErrStopped   = errors.New("worker manager is stopped")
)

type WorkerHandler = func(ctx context.Context, workerIndex int, job interface{})

// WorkerManager is a fixed pool of goroutines consuming a buffered job
// channel. Jobs still buffered when Stop is called are drained before the
// workers exit.
type WorkerManager struct {
	bufferSize     int
	jobChannel     chan interface{}
	numberOfWorker int
	do             WorkerHandler
	waiter         sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

func NewWorkerManager(bufferSize, numberOfWorkers int) *WorkerManager {
	if numberOfWorkers <= 0 {
		numberOfWorkers = 1
	}
	if bufferSize < 0 {
		bufferSize = 0
	}
	return &WorkerManager{
		bufferSize:     bufferSize,
		numberOfWorker: numberOfWorkers,
		jobChannel:     make(chan interface{}, bufferSize),
	}
}

func (w *WorkerManager) GetUnreadCount() int64 {
	return int64(len(w.jobChannel))
}

func (w *WorkerManager) SetWorker(worker WorkerHandler) {
	w.do = worker
}

// Enqueue publishes a job without blocking. It fails when the buffer is
// full or the manager was stopped.
func (w *WorkerManager) Enqueue(val interface{}) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return ErrStopped
	}
	select {
	case w.jobChannel <- val:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the workers. They run until Stop is called; ctx is handed
// to every job so in-flight work observes cancellation.
func (w *WorkerManager) Start(ctx context.Context) {
	if w.do == nil {
		panic("worker: handler not set")
	}
	w.waiter.Add(w.numberOfWorker)
	for i := 0; i < w.numberOfWorker; i++ {
		go func(index int) {
			defer w.waiter.Done()
			for job := range w.jobChannel {
				w.run(ctx, index, job)
			}
		}(i)
	}
	logger.Info("[worker] started", "workers", w.numberOfWorker, "buffer", w.bufferSize)
}

func (w *WorkerManager) run(ctx context.Context, index int, job interface{}) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[worker] job panicked", "worker", index, "panic", r)
		}
	}()
	w.do(ctx, index, job)
}

// Stop closes the job channel and waits for the workers to drain it.
func (w *WorkerManager) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.jobChannel)
	w.mu.Unlock()

	w.waiter.Wait()
	logger.Info("[worker] stopped")
}
