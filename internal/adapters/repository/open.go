package repository

import "fmt"

// Store drivers.
const (
	DriverMemory    = "memory"
	DriverSQLite    = "sqlite"
	DriverFirestore = "firestore"
)

// Open returns an uninitialized store for driver.
func Open(driver string, opts ...Option) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverSQLite:
		return NewSQLiteStore(opts...), nil
	case DriverFirestore:
		return NewFirestoreStore(opts...), nil
	default:
		return nil, fmt.Errorf("open %q: %w", driver, ErrUnknownDriver)
	}
}
