package taskpool

// Handle is the future of one submitted job.
type Handle[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newHandle[T any]() *Handle[T] {
	return &Handle[T]{done: make(chan struct{})}
}

// complete is called exactly once, by the worker that ran the job.
func (h *Handle[T]) complete(v T, err error) {
	h.value = v
	h.err = err
	close(h.done)
}

// Done is closed when the job has finished.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

// Ready reports whether the job has finished without blocking.
func (h *Handle[T]) Ready() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the job finishes and returns its result.
func (h *Handle[T]) Wait() (T, error) {
	<-h.done
	return h.value, h.err
}

// Result returns the job's result if it has finished. ok is false while the
// job is still queued or running.
func (h *Handle[T]) Result() (v T, err error, ok bool) {
	if !h.Ready() {
		return v, nil, false
	}
	return h.value, h.err, true
}
