package taskpool_test

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fieldviz/internal/taskpool"
)

var _ = Describe("Pool", func() {
	It("rejects a worker count below one", func() {
		_, err := taskpool.New(0)
		Expect(err).To(MatchError(taskpool.ErrInvalidWorkers))
	})

	It("returns the job value through the handle", func() {
		pool, err := taskpool.New(2)
		Expect(err).NotTo(HaveOccurred())
		defer pool.Shutdown()

		h, err := taskpool.Submit(pool, func() (string, error) { return "ok", nil })
		Expect(err).NotTo(HaveOccurred())

		v, err := h.Wait()
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal("ok"))
		Expect(h.Ready()).To(BeTrue())
	})

	It("captures job errors on the handle and keeps the worker alive", func() {
		pool, _ := taskpool.New(1)
		defer pool.Shutdown()

		boom := errors.New("boom")
		bad, err := pool.Go(func() error { return boom })
		Expect(err).NotTo(HaveOccurred())
		good, err := taskpool.Submit(pool, func() (int, error) { return 7, nil })
		Expect(err).NotTo(HaveOccurred())

		_, err = bad.Wait()
		Expect(err).To(MatchError(boom))

		v, err := good.Wait()
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(7))
	})

	It("converts a panic into a PanicError", func() {
		pool, _ := taskpool.New(1)
		defer pool.Shutdown()

		h, _ := taskpool.Submit(pool, func() (int, error) { panic("bad row") })
		_, err := h.Wait()

		var pe *taskpool.PanicError
		Expect(errors.As(err, &pe)).To(BeTrue())
		Expect(pe.Value).To(Equal("bad row"))

		after, _ := taskpool.Submit(pool, func() (int, error) { return 1, nil })
		Expect(after.Wait()).To(Equal(1))
	})

	It("leaves an uninspected error unreported", func() {
		pool, _ := taskpool.New(1)

		_, err := pool.Go(func() error { return errors.New("nobody looks") })
		Expect(err).NotTo(HaveOccurred())

		pool.Shutdown()
		Expect(pool.Stats().Completed).To(Equal(1))
	})

	It("completes jobs in submission order with a single worker", func() {
		pool, _ := taskpool.New(1)
		defer pool.Shutdown()

		var (
			mu    sync.Mutex
			order []int
		)
		handles := make([]*taskpool.Handle[int], 0, 20)
		for i := 0; i < 20; i++ {
			id := i
			h, err := taskpool.Submit(pool, func() (int, error) {
				mu.Lock()
				order = append(order, id)
				mu.Unlock()
				return id, nil
			})
			Expect(err).NotTo(HaveOccurred())
			handles = append(handles, h)
		}

		for i, h := range handles {
			Expect(h.Wait()).To(Equal(i))
		}
		mu.Lock()
		defer mu.Unlock()
		for i := range order {
			Expect(order[i]).To(Equal(i))
		}
	})

	Describe("Shutdown", func() {
		It("refuses new jobs and drains the queued ones", func() {
			pool, _ := taskpool.New(1)

			gate := make(chan struct{})
			var ran atomic.Int32

			first, _ := pool.Go(func() error {
				<-gate
				ran.Add(1)
				return nil
			})
			queued := make([]*taskpool.Handle[struct{}], 0, 5)
			for i := 0; i < 5; i++ {
				h, err := pool.Go(func() error {
					ran.Add(1)
					return nil
				})
				Expect(err).NotTo(HaveOccurred())
				queued = append(queued, h)
			}

			finished := make(chan struct{})
			go func() {
				pool.Shutdown()
				close(finished)
			}()

			Eventually(pool.Stopped).Should(BeTrue())

			h, err := pool.Go(func() error { return nil })
			Expect(err).To(MatchError(taskpool.ErrPoolStopped))
			Expect(h).To(BeNil())
			Consistently(finished, 50*time.Millisecond).ShouldNot(BeClosed())

			close(gate)
			Eventually(finished).Should(BeClosed())

			Expect(first.Ready()).To(BeTrue())
			for _, h := range queued {
				Expect(h.Ready()).To(BeTrue())
			}
			Expect(ran.Load()).To(Equal(int32(6)))
			Expect(pool.Stats().Queued).To(BeZero())
		})

		It("is safe to call twice", func() {
			pool, _ := taskpool.New(3)
			pool.Shutdown()
			Expect(pool.Shutdown).NotTo(Panic())
		})
	})

	Describe("Handle", func() {
		It("reports not-ready until the job finishes", func() {
			pool, _ := taskpool.New(1)
			defer pool.Shutdown()

			gate := make(chan struct{})
			h, _ := taskpool.Submit(pool, func() (int, error) {
				<-gate
				return 3, nil
			})

			_, _, ok := h.Result()
			Expect(ok).To(BeFalse())

			close(gate)
			Eventually(h.Done()).Should(BeClosed())

			v, err, ok := h.Result()
			Expect(ok).To(BeTrue())
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(3))
		})
	})

	Describe("under load", func() {
		const (
			workers = 4
			perWork = 64
		)

		It("runs every job exactly once", func() {
			pool, _ := taskpool.New(workers)
			defer pool.Shutdown()

			handles := make([]*taskpool.Handle[[]string], 0, workers*perWork)
			for i := 0; i < workers*perWork; i++ {
				id := i
				h, err := taskpool.Submit(pool, func() ([]string, error) {
					out := make([]string, 0, 1)
					return append(out, fmt.Sprintf("job-%d", id)), nil
				})
				Expect(err).NotTo(HaveOccurred())
				handles = append(handles, h)
			}

			seen := make(map[string]int, workers*perWork)
			for _, h := range handles {
				ids, err := h.Wait()
				Expect(err).NotTo(HaveOccurred())
				Expect(ids).To(HaveLen(1))
				seen[ids[0]]++
			}

			Expect(seen).To(HaveLen(workers * perWork))
			for id, n := range seen {
				Expect(n).To(Equal(1), id)
			}
		})

		It("never runs more jobs at once than it has workers", func() {
			pool, _ := taskpool.New(workers)
			defer pool.Shutdown()

			var active, peak atomic.Int32
			handles := make([]*taskpool.Handle[struct{}], 0, 40)
			for i := 0; i < 40; i++ {
				h, _ := pool.Go(func() error {
					n := active.Add(1)
					for {
						p := peak.Load()
						if n <= p || peak.CompareAndSwap(p, n) {
							break
						}
					}
					time.Sleep(time.Millisecond)
					active.Add(-1)
					return nil
				})
				handles = append(handles, h)
			}
			for _, h := range handles {
				_, err := h.Wait()
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(peak.Load()).To(BeNumerically("<=", workers))
		})
	})
})
