package render

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/wire.wgsl
var wireShaderSource string

//go:embed shaders/board.wgsl
var boardShaderSource string

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// compileSPIRV compiles WGSL source to SPIR-V words with naga.
func compileSPIRV(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V length %d is not a multiple of 4", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	if len(words) == 0 || words[0] != spirvMagic {
		return nil, fmt.Errorf("compile shader: output is not SPIR-V")
	}
	return words, nil
}

// createShader creates a shader module from WGSL, or from SPIR-V compiled
// with naga when spirv is set.
func createShader(device hal.Device, label, source string, spirv bool) (hal.ShaderModule, error) {
	if source == "" {
		return nil, fmt.Errorf("%s: shader source is empty", label)
	}
	src := hal.ShaderSource{WGSL: source}
	if spirv {
		words, err := compileSPIRV(source)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		src = hal.ShaderSource{SPIRV: words}
	}
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: src,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: create shader module: %w", label, err)
	}
	return module, nil
}
