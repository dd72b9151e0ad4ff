package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/tally/internal/adapters/http/api"
	"github.com/okian/tally/internal/config"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func testConfig() *config.Config {
	cfg := config.New(context.Background())
	cfg.AccessCode = "4242"
	cfg.Roster = []string{"Ann", "Ben"}
	return cfg
}

func TestBuild(t *testing.T) {
	convey.Convey("Given a wired application on the memory store", t, func() {
		ctx := context.Background()
		app, err := build(ctx, testConfig(), logger.Get())
		convey.So(err, convey.ShouldBeNil)
		convey.So(app.svc.Start(ctx), convey.ShouldBeNil)
		defer app.hub.Close()
		defer app.svc.Stop()

		do := func(method, target, body string, header http.Header) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, target, strings.NewReader(body))
			for k, v := range header {
				req.Header[k] = v
			}
			w := httptest.NewRecorder()
			app.handler.ServeHTTP(w, req)
			return w
		}

		convey.Convey("When an entry is submitted through the API", func() {
			w := do(http.MethodPost, "/api/session", `{"code":"4242"}`, nil)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			var sess struct{ Token string }
			convey.So(json.Unmarshal(w.Body.Bytes(), &sess), convey.ShouldBeNil)

			w = do(http.MethodPost, "/api/entries", `{"consultant":"Ben","placements":"2","intakes":1}`,
				http.Header{"X-Session-Token": {sess.Token}})
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)

			convey.Convey("Then the summary and leaderboard reflect it", func() {
				w := do(http.MethodGet, "/api/summary", "", nil)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var sum struct {
					Total struct{ Placements, Intakes int }
				}
				convey.So(json.Unmarshal(w.Body.Bytes(), &sum), convey.ShouldBeNil)
				convey.So(sum.Total.Placements, convey.ShouldEqual, 2)
				convey.So(sum.Total.Intakes, convey.ShouldEqual, 1)

				w = do(http.MethodGet, "/api/leaderboard", "", nil)
				var lb struct {
					Standings []struct {
						Name  string
						Medal string
					}
				}
				convey.So(json.Unmarshal(w.Body.Bytes(), &lb), convey.ShouldBeNil)
				convey.So(lb.Standings, convey.ShouldHaveLength, 2)
				convey.So(lb.Standings[0].Name, convey.ShouldEqual, "Ben")
				convey.So(lb.Standings[0].Medal, convey.ShouldEqual, "gold")
			})
		})

		convey.Convey("When the dashboard and docs are requested", func() {
			for _, p := range []string{"/", "/static/app.js", "/api-docs", "/openapi.yaml", "/healthz", "/metrics"} {
				w := do(http.MethodGet, p, "", nil)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get(api.RequestIDHeader), convey.ShouldNotBeEmpty)
			}
		})
	})

	convey.Convey("Given an unknown store driver", t, func() {
		cfg := testConfig()
		cfg.StoreDriver = "postgres"
		_, err := build(context.Background(), cfg, logger.Get())
		convey.So(err, convey.ShouldNotBeNil)
	})

	convey.Convey("Given an empty roster", t, func() {
		cfg := testConfig()
		cfg.Roster = nil
		_, err := build(context.Background(), cfg, logger.Get())
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a config on a free port", t, func() {
		cfg := testConfig()
		cfg.Addr = "127.0.0.1:0"

		convey.Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- run(ctx, cfg, logger.Get()) }()
			time.Sleep(50 * time.Millisecond)
			cancel()

			convey.Convey("Then run shuts down cleanly", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(5 * time.Second):
					convey.So("run did not return", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})

		convey.Convey("When testing service metrics update", func() {
			app, err := build(context.Background(), testConfig(), logger.Get())
			convey.So(err, convey.ShouldBeNil)

			convey.So(func() { updateServiceMetrics(app.svc) }, convey.ShouldNotPanic)
			convey.So(func() { updateSystemMetrics() }, convey.ShouldNotPanic)
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.So(metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry())), convey.ShouldNotBeNil)
		})
	})
}
