package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Sentinel kinds for metrics errors.
var (
	ErrRegister = errors.New("metrics register failed")
)

// Register adds extra collectors to the service registry.
func Register(cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := customRegistry.Register(c); err != nil {
			return fmt.Errorf("%w: %w", ErrRegister, err)
		}
	}
	return nil
}
