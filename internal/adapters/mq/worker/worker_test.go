package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	worker "github.com/okian/tally/internal/adapters/mq/worker"
	model "github.com/okian/tally/internal/domain/model"
	logging "github.com/okian/tally/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	ch        chan model.Notice
	closeOnce sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{ch: make(chan model.Notice, 10)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan model.Notice { return mq.ch }

func (mq *mockQueue) Close() error {
	mq.closeOnce.Do(func() { close(mq.ch) })
	return nil
}

type mockPublisher struct {
	mu        sync.Mutex
	published []model.Notice
	fail      map[model.NoticeKind]error
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{fail: make(map[model.NoticeKind]error)}
}

func (mp *mockPublisher) Publish(_ context.Context, n model.Notice) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if err, ok := mp.fail[n.Kind]; ok {
		return err
	}
	mp.published = append(mp.published, n)
	return nil
}

func (mp *mockPublisher) count() int {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return len(mp.published)
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		_ = logging.Init()

		queue := newMockQueue()
		publisher := newMockPublisher()

		convey.Convey("When creating a worker with options", func() {
			w := worker.NewInMemoryWorker(queue, publisher,
				worker.WithName("test-worker"),
				worker.WithLogger(logging.Named("test")),
			)
			convey.So(w, convey.ShouldNotBeNil)
		})

		convey.Convey("When running a worker", func() {
			w := worker.NewInMemoryWorker(queue, publisher)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)

			convey.Convey("And a notice is queued", func() {
				entry := model.Entry{ID: "entry-1", Name: "Gea", Placements: 1}
				queue.ch <- model.Notice{Kind: model.NoticeEntry, Entry: &entry, Celebrate: true}

				convey.Convey("Then it is published", func() {
					convey.So(eventually(func() bool { return publisher.count() == 1 }), convey.ShouldBeTrue)
					publisher.mu.Lock()
					convey.So(publisher.published[0].Celebrate, convey.ShouldBeTrue)
					publisher.mu.Unlock()
				})
			})

			convey.Convey("And publishing fails", func() {
				publisher.fail[model.NoticeStatus] = errors.New("subscriber gone")
				queue.ch <- model.Notice{Kind: model.NoticeStatus, Status: "degraded"}
				queue.ch <- model.Notice{Kind: model.NoticeRefresh}

				convey.Convey("Then the worker keeps going", func() {
					convey.So(eventually(func() bool { return publisher.count() == 1 }), convey.ShouldBeTrue)
				})
			})

			convey.Convey("And it is shut down", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer shutdownCancel()
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the queue closes", func() {
			w := worker.NewInMemoryWorker(queue, publisher)
			finished := make(chan struct{})
			go func() {
				w.Run(context.Background())
				close(finished)
			}()
			_ = queue.Close()

			convey.Convey("Then the worker stops", func() {
				select {
				case <-finished:
					convey.So(true, convey.ShouldBeTrue)
				case <-time.After(time.Second):
					convey.So("worker still running", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a new Pool", t, func() {
		_ = logging.Init()

		queue := newMockQueue()
		publisher := newMockPublisher()

		convey.Convey("When created with a non-positive count", func() {
			pool := worker.NewPool(0, queue, publisher)
			convey.So(pool.Size(), convey.ShouldEqual, 1)
		})

		convey.Convey("When started with several workers", func() {
			pool := worker.NewPool(3, queue, publisher)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pool.Start(ctx)

			for i := 0; i < 5; i++ {
				queue.ch <- model.Notice{Kind: model.NoticeRefresh, Version: uint64(i)}
			}

			convey.Convey("Then every notice is published once", func() {
				convey.So(eventually(func() bool { return publisher.count() == 5 }), convey.ShouldBeTrue)
				convey.So(eventually(func() bool { return pool.Processed() == 5 }), convey.ShouldBeTrue)
			})

			convey.Convey("And shutdown closes the queue", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
				defer shutdownCancel()
				convey.So(pool.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}
