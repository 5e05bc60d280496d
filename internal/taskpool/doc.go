// Package taskpool runs independent jobs on a fixed set of worker
// goroutines pulling from one shared FIFO queue.
//
// Submitting a job returns a [Handle] that later yields the job's value or
// its error:
//
//	pool, _ := taskpool.New(4)
//	defer pool.Shutdown()
//
//	h, err := taskpool.Submit(pool, func() (int, error) {
//		return render(), nil
//	})
//	if err != nil {
//		return err // taskpool.ErrPoolStopped
//	}
//	n, err := h.Wait()
//
// # Ordering
//
// Jobs are dequeued in submission order. With one worker they also complete
// in that order; with several workers the completion order is unspecified.
//
// # Shutdown
//
// [Pool.Shutdown] refuses new jobs, lets the workers drain everything already
// queued and waits for them to exit. No queued job is dropped. Once a worker
// has dequeued a job it runs to completion: there is no cancellation.
//
// # Errors
//
// A job's error, or a panic converted to [*PanicError], is stored on its
// handle and the worker keeps going. Nothing else reports it. A caller that
// never looks at a handle never sees the error: fire-and-forget submission
// is a supported mode, not a leak.
package taskpool
