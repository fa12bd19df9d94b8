package observability

// References:
// https://github.com/DataDog/dd-trace-go/blob/main/profiler/profiler.go#L118

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/process"
)

type ProfileType int8

const (
	CPUProfile ProfileType = iota
	MemProfile
)

func (typ ProfileType) String() string {
	switch typ {
	case CPUProfile:
		return "cpu"
	case MemProfile:
		return "mem"
	default:
	}
	return "unknown"
}

// ProcessProfile is a point-in-time view of the current process.
type ProcessProfile struct {
	RSS        uint64
	VMS        uint64
	CPUPercent float64
	Threads    int32
	HeapAlloc  uint64
	Goroutines int
}

// SnapshotProcess samples the current process. The heap and goroutine
// figures come from the Go runtime, the rest from the operating system.
func SnapshotProcess(types ...ProfileType) (ProcessProfile, error) {
	if len(types) == 0 {
		types = []ProfileType{CPUProfile, MemProfile}
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return ProcessProfile{}, err
	}
	profile := ProcessProfile{
		Goroutines: runtime.NumGoroutine(),
	}
	for _, typ := range types {
		switch typ {
		case CPUProfile:
			if profile.CPUPercent, err = proc.CPUPercent(); err != nil {
				return profile, err
			}
			if profile.Threads, err = proc.NumThreads(); err != nil {
				return profile, err
			}
		case MemProfile:
			info, err := proc.MemoryInfo()
			if err != nil {
				return profile, err
			}
			profile.RSS, profile.VMS = info.RSS, info.VMS
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			profile.HeapAlloc = ms.HeapAlloc
		default:
		}
	}
	return profile, nil
}
