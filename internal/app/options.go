package service

import (
	"time"

	"github.com/okian/tally/internal/adapters/mq/worker"
	"github.com/okian/tally/pkg/logger"
)

const (
	defaultQueueSize       = 1024
	defaultWorkerCount     = 1
	defaultEntriesLimit    = 50
	defaultMaxEntriesLimit = 500
	maxMemoEntries         = 256
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of notice dispatch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the notice queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithPublisher sets where change notices are delivered.
func WithPublisher(p worker.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithMaxEntriesLimit caps how many raw entries Entries returns.
func WithMaxEntriesLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxEntriesLimit = limit
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
