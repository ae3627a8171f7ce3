package entropy

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/denisbrodbeck/machineid"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"golang.org/x/term"

	"devicescan/internal/hashing"
)

var errNoMachineID = errors.New("entropy: machine id is empty")

// HostSources reads signals from the machine the process runs on. A host has
// no canvas or audio pipeline, so the canvas slot carries a hash of the
// app-scoped machine id and the audio slot a hash of the platform and
// kernel description.
func HostSources(appID string, logger *slog.Logger) Sources {
	return Sources{
		Canvas: Guard("canvas", logger, func() (Sample, error) {
			id, err := machineid.ProtectedID(appID)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return Unavailable(), nil
				}
				return Sample{}, err
			}
			if id == "" {
				return Sample{}, errNoMachineID
			}
			return Number(float64(hashing.Hash(id, 0))), nil
		}),
		Audio: GuardAsync("audio", logger, func(ctx context.Context) (Sample, error) {
			info, err := host.InfoWithContext(ctx)
			if err != nil {
				return Sample{}, err
			}
			desc := strings.Join([]string{
				info.OS,
				info.Platform,
				info.PlatformVersion,
				info.KernelVersion,
				info.KernelArch,
			}, "|")
			return Number(float64(hashing.Hash(desc, 0))), nil
		}),
		GPU: func() string {
			return DefaultGPU
		},
		Cores: Guard("cores", logger, func() (Sample, error) {
			n, err := cpu.Counts(true)
			if err != nil {
				return Sample{}, err
			}
			return Positive(float64(n)), nil
		}),
		Memory: Guard("memory", logger, func() (Sample, error) {
			vm, err := mem.VirtualMemory()
			if err != nil {
				return Sample{}, err
			}
			return DeviceMemory(vm.Total), nil
		}),
		Bot: func() bool {
			return os.Getenv("CI") != "" || !term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// DeviceMemory converts a byte count into gibibytes rounded down to a power
// of two, the granularity browsers expose. Zero is Unavailable.
func DeviceMemory(totalBytes uint64) Sample {
	if totalBytes == 0 {
		return Unavailable()
	}
	gib := float64(totalBytes) / (1 << 30)
	return Number(math.Exp2(math.Floor(math.Log2(gib))))
}
