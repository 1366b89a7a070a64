// Package mock contains gomock doubles for wireboard's capability
// interfaces, used to inject device failures in tests.
package mock

//go:generate go run go.uber.org/mock/mockgen -destination=gpucore.go -package=mock github.com/gogpu/wireboard/gpucore BufferAdapter
