// Package integration provides named configuration presets for shieldd,
// bundling the handful of worker-level settings that vary by deployment
// profile (a solo test node vs. a production validator) so operators don't
// have to tune each flag by hand: queue depth, log verbosity, and whether
// metrics are exposed. There is no DB layout or GC mode here because
// persistent storage is out of scope (see DESIGN.md).
package integration

import "fmt"

// Preset bundles the worker settings one deployment profile wants together.
type Preset struct {
	Name          string
	QueueSize     int // buffered capacity of the worker's request channel
	LogVerbosity  int // logrus level index, 0=fatal .. 5=trace
	EnableMetrics bool
}

// DefaultPreset is applied when no --preset flag is given.
func DefaultPreset() Preset {
	return Preset{
		Name:          "default",
		QueueSize:     64,
		LogVerbosity:  3,
		EnableMetrics: false,
	}
}

// DevPreset favors fast iteration and maximum visibility over throughput: a
// small queue (so a stuck handler is noticed immediately) and trace-level
// logging.
func DevPreset() Preset {
	return Preset{
		Name:          "dev",
		QueueSize:     8,
		LogVerbosity:  5,
		EnableMetrics: true,
	}
}

// ValidatorPreset favors throughput: a deep queue so a slow downstream store
// write never stalls the replication engine's own loop, at info-level
// logging.
func ValidatorPreset() Preset {
	return Preset{
		Name:          "validator",
		QueueSize:     1024,
		LogVerbosity:  3,
		EnableMetrics: true,
	}
}

// ByName looks up a preset by its flag value. Unknown names are an error so
// a typo in --preset never silently falls back to defaults.
func ByName(name string) (Preset, error) {
	switch name {
	case "", "default":
		return DefaultPreset(), nil
	case "dev":
		return DevPreset(), nil
	case "validator":
		return ValidatorPreset(), nil
	default:
		return Preset{}, fmt.Errorf("integration: unknown preset %q (valid: default, dev, validator)", name)
	}
}
