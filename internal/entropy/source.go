package entropy

import (
	"context"
	"log/slog"
)

// DefaultGPU is reported when no renderer information can be read.
const DefaultGPU = "Generic / Virtual"

// SyncSource reads a signal inline.
type SyncSource func() Sample

// AsyncSource reads a signal that needs to wait on something, such as an
// offline render. It runs concurrently with network resolution.
type AsyncSource func(ctx context.Context) Sample

// Sources is the full set of readers a scan consumes.
type Sources struct {
	Canvas SyncSource
	Audio  AsyncSource
	GPU    func() string
	Cores  SyncSource
	Memory SyncSource
	Bot    func() bool
}

// Guard wraps a fallible reader so that an error or a panic becomes Blocked.
func Guard(name string, logger *slog.Logger, read func() (Sample, error)) SyncSource {
	return func() (sample Sample) {
		defer func() {
			if r := recover(); r != nil {
				logWarn(logger, "Entropy source panicked", slog.String("source", name), slog.Any("panic", r))
				sample = Blocked()
			}
		}()

		s, err := read()
		if err != nil {
			logWarn(logger, "Entropy source blocked", slog.String("source", name), slog.Any("error", err))
			return Blocked()
		}
		return s
	}
}

// GuardAsync is Guard for readers that take a context. A cancelled context
// yields Blocked.
func GuardAsync(name string, logger *slog.Logger, read func(context.Context) (Sample, error)) AsyncSource {
	return func(ctx context.Context) Sample {
		return Guard(name, logger, func() (Sample, error) {
			if err := ctx.Err(); err != nil {
				return Sample{}, err
			}
			return read(ctx)
		})()
	}
}

// ReadGPU calls the GPU reader, converting a panic into Blocked.
func (s Sources) ReadGPU() (gpu string) {
	if s.GPU == nil {
		return DefaultGPU
	}
	defer func() {
		if r := recover(); r != nil {
			gpu = BlockedLiteral
		}
	}()
	return s.GPU()
}

// ReadBot calls the automation probe. A missing or failing probe reports false.
func (s Sources) ReadBot() (bot bool) {
	if s.Bot == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			bot = false
		}
	}()
	return s.Bot()
}

// ReadSync calls a synchronous reader; a nil reader is an absent capability.
func ReadSync(src SyncSource) Sample {
	if src == nil {
		return Unavailable()
	}
	return src()
}

// ReadAsync calls an asynchronous reader; a nil reader is an absent capability.
func ReadAsync(ctx context.Context, src AsyncSource) Sample {
	if src == nil {
		return Unavailable()
	}
	return src(ctx)
}

func logWarn(logger *slog.Logger, msg string, attrs ...any) {
	if logger == nil {
		return
	}
	logger.Warn(msg, attrs...)
}
