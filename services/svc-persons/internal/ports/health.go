package ports

import "context"

type (
	// DependencyChecker is implemented by every backing service readiness
	// depends on.
	DependencyChecker interface {
		Name() string
		Ping(ctx context.Context) error
	}

	DependencyStatus struct {
		Healthy bool   `json:"healthy"`
		Message string `json:"message,omitempty"`
		Latency string `json:"latency,omitempty"`
	}
)
