package render

import "github.com/gogpu/gpucontext"

// DeviceHandle provides GPU device access from the host application.
//
// The host owns the device and passes it to the renderers; they never
// create one. The *FromProvider constructors additionally require
// HalDevice() any and HalQueue() any methods returning the hal.Device and
// hal.Queue behind the provider.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider
