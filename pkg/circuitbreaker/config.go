package circuitbreaker

import "time"

// Config is embedded in service settings; the envconfig tags are relative to
// the owning section prefix.
type Config struct {
	Name             string        `envconfig:"NAME"`
	Enabled          bool          `envconfig:"ENABLED" default:"true"`
	MaxRequests      uint          `envconfig:"MAX_REQUESTS" default:"1"`
	Interval         time.Duration `envconfig:"INTERVAL" default:"60s"`
	Timeout          time.Duration `envconfig:"TIMEOUT" default:"30s"`
	FailureThreshold uint          `envconfig:"FAILURE_THRESHOLD" default:"5"`

	// OnStateChange is invoked on every transition, typically to log it.
	OnStateChange func(name string, from, to State) `ignored:"true" json:"-"`
}
