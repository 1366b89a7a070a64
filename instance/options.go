package instance

import "github.com/gogpu/wireboard/gpucore"

// DefaultInitialCapacity is the number of records the first device buffer
// can hold when no WithInitialCapacity option is given.
const DefaultInitialCapacity = 64

// DefaultLabel names stores created without WithLabel.
const DefaultLabel = "instances"

// Option configures a Store during creation.
//
// Example:
//
//	store, err := instance.New[tileInstance](adapter,
//	    instance.WithLabel("board"),
//	    instance.WithInitialCapacity(1024),
//	)
type Option func(*options)

// options holds optional configuration for Store creation.
type options struct {
	label           string
	initialCapacity int
	usage           gpucore.BufferUsage
	dirtyTracking   bool
}

// defaultOptions returns the default store options.
func defaultOptions() options {
	return options{
		label:           DefaultLabel,
		initialCapacity: DefaultInitialCapacity,
		usage:           gpucore.BufferUsageVertex | gpucore.BufferUsageCopyDst,
	}
}

// WithLabel names the store in logs and metrics.
func WithLabel(label string) Option {
	return func(o *options) {
		if label != "" {
			o.label = label
		}
	}
}

// WithInitialCapacity sets how many records the first device buffer holds.
// Host storage is preallocated to the same size. Values below 1 are ignored.
func WithInitialCapacity(records int) Option {
	return func(o *options) {
		if records > 0 {
			o.initialCapacity = records
		}
	}
}

// WithUsage adds buffer usage flags on top of Vertex|CopyDst, for example
// Storage when the instance buffer is also read by a compute pass.
func WithUsage(usage gpucore.BufferUsage) Option {
	return func(o *options) {
		o.usage |= usage
	}
}

// WithDirtyTracking makes Buffer upload only the records that changed since
// the previous call, as coalesced runs, instead of the whole live range.
func WithDirtyTracking() Option {
	return func(o *options) {
		o.dirtyTracking = true
	}
}
