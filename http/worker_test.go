package http

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/freekieb7/gravel-httpd/test"
)

func TestQueueFIFOAcrossGrowth(t *testing.T) {
	var q Queue[int]

	// Interleave to move head before the buffer grows.
	for i := range 10 {
		q.Enqueue(i)
	}
	for i := range 5 {
		v, err := q.Dequeue()
		test.AssertNoError(t, err)
		test.AssertEqual(t, i, v)
	}
	for i := 10; i < 100; i++ {
		q.Enqueue(i)
	}

	test.AssertEqual(t, 95, q.Len())
	for i := 5; i < 100; i++ {
		v, err := q.Dequeue()
		test.AssertNoError(t, err)
		test.AssertEqual(t, i, v)
	}

	_, err := q.Dequeue()
	test.AssertErrorIs(t, err, ErrEmpty)
}

func TestWorkerPoolRunsEveryJob(t *testing.T) {
	wp := NewWorkerPool(4, discardLogger)

	var ran atomic.Int64
	var wg sync.WaitGroup
	for range 1000 {
		wg.Add(1)
		test.AssertNoError(t, wp.Execute(func() {
			defer wg.Done()
			ran.Add(1)
		}))
	}
	wg.Wait()

	test.AssertEqual(t, int64(1000), ran.Load())

	wp.Close()
	wp.Wait()
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	const size = 3
	wp := NewWorkerPool(size, discardLogger)
	defer wp.Close()

	var running, peak atomic.Int64
	release := make(chan struct{})
	var wg sync.WaitGroup

	for range 10 {
		wg.Add(1)
		wp.Execute(func() {
			defer wg.Done()
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-release
			running.Add(-1)
		})
	}

	// Execute never blocks: all ten jobs are accepted while only three can run.
	deadline := time.Now().Add(2 * time.Second)
	for running.Load() < size && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	test.AssertEqual(t, int64(size), running.Load())
	test.AssertEqual(t, 10-size, wp.Len())

	close(release)
	wg.Wait()

	test.AssertEqual(t, int64(size), peak.Load())
}

func TestWorkerPoolSurvivesPanickingJob(t *testing.T) {
	wp := NewWorkerPool(1, discardLogger)
	defer wp.Close()

	done := make(chan struct{})
	wp.Execute(func() { panic("boom") })
	wp.Execute(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not continue after a panicking job")
	}
}

func TestWorkerPoolCloseDrainsQueue(t *testing.T) {
	wp := NewWorkerPool(1, discardLogger)

	block := make(chan struct{})
	var ran atomic.Int64
	wp.Execute(func() { <-block })
	for range 5 {
		wp.Execute(func() { ran.Add(1) })
	}

	wp.Close()
	test.AssertErrorIs(t, wp.Execute(func() {}), ErrPoolClosed)

	close(block)
	wp.Wait()

	test.AssertEqual(t, int64(5), ran.Load())
}

func TestWorkerPoolDefaultSize(t *testing.T) {
	wp := NewWorkerPool(0, nil)
	defer wp.Close()

	test.AssertEqual(t, DefaultWorkerPoolSize, wp.Size())
}
