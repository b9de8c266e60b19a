package http

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

var (
	ErrEmpty      = errors.New("queue is empty")
	ErrPoolClosed = errors.New("worker pool is closed")
)

// WorkerPool runs jobs on a fixed number of long-lived goroutines fed by an unbounded queue.
// Submission never blocks and there is no admission control: a burst of jobs waits in the
// queue until a worker is free.
type WorkerPool struct {
	size   int
	logger *slog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  Queue[func()]
	closed bool

	wg sync.WaitGroup
}

func NewWorkerPool(size int, logger *slog.Logger) *WorkerPool {
	if size <= 0 {
		size = DefaultWorkerPoolSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	wp := &WorkerPool{
		size:   size,
		logger: logger,
	}
	wp.cond = sync.NewCond(&wp.mu)

	wp.wg.Add(size)
	for id := range size {
		go wp.worker(id)
	}

	return wp
}

// Execute enqueues job and returns immediately.
func (wp *WorkerPool) Execute(job func()) error {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return ErrPoolClosed
	}
	wp.queue.Enqueue(job)
	wp.mu.Unlock()

	wp.cond.Signal()
	return nil
}

// Close stops accepting jobs. Workers finish what is queued and then exit.
func (wp *WorkerPool) Close() {
	wp.mu.Lock()
	wp.closed = true
	wp.mu.Unlock()

	wp.cond.Broadcast()
}

// Wait blocks until every worker has exited after Close.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) Size() int {
	return wp.size
}

// Len returns the number of jobs waiting for a worker.
func (wp *WorkerPool) Len() int {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return wp.queue.Len()
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		job, ok := wp.next()
		if !ok {
			return
		}
		wp.run(id, job)
	}
}

func (wp *WorkerPool) next() (func(), bool) {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	for wp.queue.Len() == 0 && !wp.closed {
		wp.cond.Wait()
	}

	job, err := wp.queue.Dequeue()
	if err != nil {
		return nil, false
	}
	return job, true
}

func (wp *WorkerPool) run(id int, job func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			wp.logger.Error("worker recovered from panicking job",
				"worker", id,
				"panic", fmt.Sprint(recovered),
				"stack", string(debug.Stack()))
		}
	}()

	job()
}

// Queue is a FIFO ring buffer that doubles when full. It is not safe for concurrent use.
type Queue[T any] struct {
	buffer []T
	head   int
	count  int
}

func (q *Queue[T]) Enqueue(val T) {
	if q.count == len(q.buffer) {
		q.grow()
	}

	q.buffer[(q.head+q.count)%len(q.buffer)] = val
	q.count++
}

// Dequeue removes and returns the oldest item
func (q *Queue[T]) Dequeue() (T, error) {
	var zero T
	if q.count == 0 {
		return zero, ErrEmpty
	}

	val := q.buffer[q.head]
	q.buffer[q.head] = zero
	q.head = (q.head + 1) % len(q.buffer)
	q.count--

	return val, nil
}

func (q *Queue[T]) Len() int {
	return q.count
}

func (q *Queue[T]) grow() {
	size := 2 * len(q.buffer)
	if size == 0 {
		size = 16
	}

	buffer := make([]T, size)
	for i := range q.count {
		buffer[i] = q.buffer[(q.head+i)%len(q.buffer)]
	}

	q.buffer = buffer
	q.head = 0
}
