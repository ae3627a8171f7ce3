package entropy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// ClientReport is the set of signals a browser collected and submitted.
type ClientReport struct {
	CanvasID    Sample `json:"canvasId"`
	AudioID     Sample `json:"audioId"`
	GPURenderer string `json:"gpuRenderer"`
	Cores       Sample `json:"cores"`
	Memory      Sample `json:"memory"`
	Webdriver   bool   `json:"webdriver"`
	Timezone    string `json:"timezone"`
}

// DecodeClientReport reads a report from r. Absent sample fields decode as
// Unavailable.
func DecodeClientReport(r io.Reader) (ClientReport, error) {
	report := ClientReport{
		CanvasID: Unavailable(),
		AudioID:  Unavailable(),
		Cores:    Unavailable(),
		Memory:   Unavailable(),
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&report); err != nil {
		return ClientReport{}, fmt.Errorf("entropy: decode client report: %w", err)
	}
	return report, nil
}

// Sources exposes the report through the common reader contract. Counters
// reported as zero become Unavailable, as browsers do for absent values.
func (r ClientReport) Sources() Sources {
	return Sources{
		Canvas: func() Sample { return r.CanvasID },
		Audio:  func(context.Context) Sample { return r.AudioID },
		GPU: func() string {
			if r.GPURenderer == BlockedLiteral {
				return BlockedLiteral
			}
			return GPUModel(r.GPURenderer)
		},
		Cores:  func() Sample { return positiveOrSelf(r.Cores) },
		Memory: func() Sample { return positiveOrSelf(r.Memory) },
		Bot:    func() bool { return r.Webdriver },
	}
}

func positiveOrSelf(s Sample) Sample {
	if f, ok := s.Float(); ok {
		return Positive(f)
	}
	return s
}
