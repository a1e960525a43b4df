package health

import "context"

// HealthPinger is implemented by probed dependencies (the post index, the
// embedding provider, the violation store). HealthPing must return nil when
// the component is healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
