package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Checker checks an upstream dependency (record service, completion provider).
type Checker interface {
	HealthCheck(ctx context.Context) error
}
