package health

import "context"

// HealthPinger can be implemented by a component to expose a specialized
// probe. HealthPing must return nil when the component is healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
