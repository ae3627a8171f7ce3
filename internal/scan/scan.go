// Package scan assembles a fingerprint and a network record from one pass
// over the entropy sources and the provider list.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"devicescan/internal/entropy"
	"devicescan/internal/network"
	"devicescan/internal/pkg/async"
	"devicescan/internal/visitors"
)

const (
	BranchNetwork = "network"
	BranchAudio   = "audio"
	BranchEntropy = "entropy"
)

// Resolver resolves the network identity of the scanned device.
type Resolver interface {
	Resolve(ctx context.Context, specs []network.Spec) network.Record
}

// Result is what a scan publishes. It is a value; callers decide where it goes.
type Result struct {
	Fingerprint visitors.Fingerprint `json:"fingerprint"`
	Network     network.Record       `json:"network"`
	ScannedAt   time.Time            `json:"scannedAt"`
}

// Scanner runs scans against a fixed provider list.
type Scanner struct {
	Resolver           Resolver
	Providers          []network.Spec
	Logger             *slog.Logger
	ComputedConfidence bool
	Now                func() time.Time
}

// Scan resolves the network and reads the asynchronous source concurrently,
// reads the synchronous sources inline, and assembles the result once both
// branches have settled. The returned error is always an *AssemblyError.
func (s *Scanner) Scan(ctx context.Context, sources entropy.Sources) (Result, error) {
	logger := s.logger()
	start := time.Now()

	pool := async.NewPool(2)
	results := pool.Execute(ctx, []async.Task{
		{
			Name: BranchNetwork,
			Execute: func(ctx context.Context) (any, error) {
				return s.Resolver.Resolve(ctx, s.Providers), nil
			},
		},
		{
			Name: BranchAudio,
			Execute: func(ctx context.Context) (any, error) {
				return entropy.ReadAsync(ctx, sources.Audio), nil
			},
		},
	})

	record, err := settled[network.Record](results, BranchNetwork)
	if err != nil {
		return Result{}, s.fail(logger, err)
	}
	audio, err := settled[entropy.Sample](results, BranchAudio)
	if err != nil {
		return Result{}, s.fail(logger, err)
	}

	inputs, err := readSync(sources)
	if err != nil {
		return Result{}, s.fail(logger, err)
	}
	inputs.AudioID = audio

	var opts []visitors.Option
	if s.ComputedConfidence {
		opts = append(opts, visitors.WithComputedConfidence())
	}
	fingerprint := visitors.BuildFingerprint(inputs, opts...)

	logger.Info("Scan completed",
		slog.String("visitor_id", fingerprint.VisitorID),
		slog.String("network_status", string(record.Status)),
		slog.String("network_source", record.Source),
		slog.Duration("duration", time.Since(start)))

	return Result{
		Fingerprint: fingerprint,
		Network:     record,
		ScannedAt:   s.now().UTC(),
	}, nil
}

func settled[T any](results map[string]async.Result, branch string) (T, error) {
	var zero T
	result, ok := results[branch]
	if !ok {
		return zero, &AssemblyError{Branch: branch, Err: fmt.Errorf("no result")}
	}
	if result.Err != nil {
		return zero, &AssemblyError{Branch: branch, Err: result.Err}
	}
	value, ok := result.Data.(T)
	if !ok {
		return zero, &AssemblyError{Branch: branch, Err: fmt.Errorf("unexpected result %T", result.Data)}
	}
	return value, nil
}

// readSync performs the inline reads. Sources convert their own failures to
// sentinels, so a panic here is unexpected.
func readSync(sources entropy.Sources) (in visitors.Inputs, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &AssemblyError{Branch: BranchEntropy, Err: fmt.Errorf("%v\n%s", r, debug.Stack())}
		}
	}()
	return visitors.Inputs{
		CanvasID:      entropy.ReadSync(sources.Canvas),
		GPU:           sources.ReadGPU(),
		Cores:         entropy.ReadSync(sources.Cores),
		Memory:        entropy.ReadSync(sources.Memory),
		IsBotDetected: sources.ReadBot(),
	}, nil
}

func (s *Scanner) fail(logger *slog.Logger, err error) error {
	logger.Error("Scan failed", slog.Any("error", err))
	return err
}

func (s *Scanner) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func (s *Scanner) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
