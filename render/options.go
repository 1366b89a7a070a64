package render

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/wireboard/instance"
)

// Option configures a renderer during creation.
type Option func(*config)

type config struct {
	format  gputypes.TextureFormat
	samples uint32
	spirv   bool
	limits  *gputypes.Limits
	store   []instance.Option
}

func newConfig(label string, opts []Option) config {
	c := config{
		format:  gputypes.TextureFormatBGRA8Unorm,
		samples: 1,
		store:   []instance.Option{instance.WithLabel(label)},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithTargetFormat sets the color format of the render target the pipeline
// draws into. The default is BGRA8Unorm.
func WithTargetFormat(format gputypes.TextureFormat) Option {
	return func(c *config) {
		if format != gputypes.TextureFormatUndefined {
			c.format = format
		}
	}
}

// WithSampleCount sets the MSAA sample count of the render target.
func WithSampleCount(samples uint32) Option {
	return func(c *config) {
		if samples > 0 {
			c.samples = samples
		}
	}
}

// WithSPIRV hands the device SPIR-V compiled with naga instead of WGSL, for
// backends that only accept SPIR-V.
func WithSPIRV() Option {
	return func(c *config) {
		c.spirv = true
	}
}

// WithLimits sets the device limits used to cap instance buffer growth.
// The default is gputypes.DefaultLimits.
func WithLimits(limits gputypes.Limits) Option {
	return func(c *config) {
		c.limits = &limits
	}
}

// WithStoreOptions passes options through to the renderer's instance store.
func WithStoreOptions(opts ...instance.Option) Option {
	return func(c *config) {
		c.store = append(c.store, opts...)
	}
}
