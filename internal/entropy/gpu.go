package entropy

import (
	"strings"

	"devicescan/internal/pkg/pattern"
)

// Model patterns, most specific first.
var gpuModelPatterns = []string{
	`(?i)(?:GeForce|Radeon|Intel)\s+([A-Z]{2,4}\s+\d+\w*(?:\s+\w+)?)`,
	`([A-Z]{2,4}\s+\d+\w*(?:\s+\w+)?)`,
}

const gpuModelSuffix = `([A-Z]{2,4}\s+\d+\w*(?:\s+\w+)?)`

// GPUModel reduces an unmasked WebGL renderer string to a short model name.
//
//	"ANGLE (NVIDIA, NVIDIA GeForce GTX 1660 Ti (0x00002182) Direct3D11 vs_5_0 ps_5_0, D3D11)" -> "GTX 1660 Ti"
//	"AMD Radeon RX 6800" -> "RX 6800"
//
// Unrecognised renderers are returned unchanged; an empty renderer yields DefaultGPU.
func GPUModel(renderer string) string {
	if strings.TrimSpace(renderer) == "" {
		return DefaultGPU
	}

	for _, expr := range gpuModelPatterns {
		if model, ok := pattern.Submatch(expr, renderer); ok && model != "" {
			return strings.TrimSpace(model)
		}
	}

	for _, vendor := range []string{"GeForce", "Radeon"} {
		rest, ok := pattern.Submatch(`(?i)`+vendor+`\s+([^()]+)`, renderer)
		if !ok || rest == "" {
			continue
		}
		model := strings.TrimSpace(rest)
		if model == "" {
			return renderer
		}
		if short, ok := pattern.Submatch(gpuModelSuffix, model); ok && short != "" {
			return strings.TrimSpace(short)
		}
		return model
	}

	return renderer
}
