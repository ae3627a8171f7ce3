// Package visitors turns entropy readings into a stable visitor identifier.
package visitors

import (
	"strings"

	"devicescan/internal/entropy"
	"devicescan/internal/hashing"
)

// Delimiter joins source values before hashing. It is not escaped, so tuples
// whose joined forms coincide share an identifier.
const Delimiter = "-"

// DefaultConfidence is the confidence shown for every fingerprint unless
// computed confidence is enabled.
const DefaultConfidence = 99.9

// SynthesizeID joins the string form of each source with Delimiter, hashes
// the result with seed 0 and renders it as uppercase hex.
func SynthesizeID(sources ...any) string {
	parts := make([]string, len(sources))
	for i, src := range sources {
		parts[i] = hashing.Stringify(src)
	}
	return hashing.Hex(hashing.Hash(strings.Join(parts, Delimiter), 0))
}

// Inputs are the readings that feed a fingerprint.
type Inputs struct {
	CanvasID      entropy.Sample
	AudioID       entropy.Sample
	GPU           string
	Cores         entropy.Sample
	Memory        entropy.Sample
	IsBotDetected bool
}

// Fingerprint is the immutable result of one scan's entropy readings.
type Fingerprint struct {
	VisitorID     string         `json:"visitorId"`
	Alias         string         `json:"alias"`
	CanvasID      entropy.Sample `json:"canvasId"`
	AudioID       entropy.Sample `json:"audioId"`
	GPU           string         `json:"gpu"`
	Cores         entropy.Sample `json:"cores"`
	Memory        entropy.Sample `json:"memory"`
	Confidence    float64        `json:"confidence"`
	IsBotDetected bool           `json:"isBotDetected"`
}

type buildOptions struct {
	computedConfidence bool
}

// Option adjusts how a fingerprint is built.
type Option func(*buildOptions)

// WithComputedConfidence derives confidence from the share of sources that
// produced a usable value instead of using DefaultConfidence.
func WithComputedConfidence() Option {
	return func(o *buildOptions) {
		o.computedConfidence = true
	}
}

// BuildFingerprint derives the visitor id from the fixed tuple
// (canvas, audio, gpu, cores, memory) and assembles the record.
func BuildFingerprint(in Inputs, opts ...Option) Fingerprint {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	visitorID := SynthesizeID(in.CanvasID, in.AudioID, in.GPU, in.Cores, in.Memory)

	confidence := DefaultConfidence
	if o.computedConfidence {
		confidence = computeConfidence(in)
	}

	return Fingerprint{
		VisitorID:     visitorID,
		Alias:         VisitorAlias(visitorID),
		CanvasID:      in.CanvasID,
		AudioID:       in.AudioID,
		GPU:           in.GPU,
		Cores:         in.Cores,
		Memory:        in.Memory,
		Confidence:    confidence,
		IsBotDetected: in.IsBotDetected,
	}
}

// computeConfidence scales DefaultConfidence by the fraction of usable
// sources, rounded to one decimal.
func computeConfidence(in Inputs) float64 {
	usable := 0
	for _, s := range []entropy.Sample{in.CanvasID, in.AudioID, in.Cores, in.Memory} {
		if s.IsValue() {
			usable++
		}
	}
	if in.GPU != "" && in.GPU != entropy.BlockedLiteral && in.GPU != entropy.DefaultGPU {
		usable++
	}
	score := DefaultConfidence * float64(usable) / 5
	return float64(int(score*10+0.5)) / 10
}
