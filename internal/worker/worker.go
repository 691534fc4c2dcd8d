package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Task is a function that represents a background job
type Task func(ctx context.Context) error

type WorkerPool struct {
	taskQueue chan Task
	wg        sync.WaitGroup
	mu        sync.RWMutex // guards isClosing and sends on taskQueue
	isClosing bool
	log       zerolog.Logger
}

func NewWorkerPool(size int, log zerolog.Logger) *WorkerPool {
	if size < 1 {
		size = 1
	}
	wp := &WorkerPool{
		taskQueue: make(chan Task, 1000), // Buffer for 1000 pending tasks
		log:       log.With().Str("component", "worker").Logger(),
	}

	for i := 0; i < size; i++ {
		wp.wg.Add(1)
		go wp.startWorker()
	}

	return wp
}

func (wp *WorkerPool) startWorker() {
	defer wp.wg.Done()
	for task := range wp.taskQueue {
		if err := task(context.Background()); err != nil {
			wp.log.Warn().Err(err).Msg("worker task failed")
		}
	}
}

// Submit queues t. It reports false when the task was dropped.
func (wp *WorkerPool) Submit(t Task) bool {
	if wp == nil {
		return false
	}
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.isClosing {
		wp.log.Warn().Msg("task submitted during shutdown, dropping")
		return false
	}
	select {
	case wp.taskQueue <- t:
		return true
	default:
		wp.log.Warn().Msg("task queue full, dropping task")
		return false
	}
}

// Shutdown closes the queue and waits for workers to finish
func (wp *WorkerPool) Shutdown() {
	wp.mu.Lock()
	if wp.isClosing {
		wp.mu.Unlock()
		return
	}
	wp.isClosing = true
	close(wp.taskQueue)
	wp.mu.Unlock()

	wp.wg.Wait()
}
