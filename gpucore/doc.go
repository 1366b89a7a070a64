// Package gpucore defines the device capability that wireboard's instance
// stores and renderers are written against.
//
// The [BufferAdapter] interface is the only thing an [instance.Store] knows
// about the graphics device. It is passed explicitly to the store's
// constructor instead of being reached through a process-wide context, so a
// store can run against a real device or an in-memory stand-in:
//
//	               +------------------+
//	               |  instance.Store  |
//	               +--------+---------+
//	                        |
//	                 gpucore.BufferAdapter
//	                        |
//	         +--------------+--------------+
//	         |                             |
//	+--------v--------+          +---------v--------+
//	| native adapter  |          |  memory adapter  |
//	|  (hal.Device)   |          |   (host bytes)   |
//	+-----------------+          +------------------+
//
// # Resource Management
//
// Buffers are referred to by opaque [BufferID] values. Adapters own the
// mapping between IDs and backend resources. IDs are never reused after
// [BufferAdapter.DestroyBuffer].
//
// [instance.Store]: github.com/gogpu/wireboard/instance.Store
package gpucore
