package system

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// RunStats is the end-of-job performance summary printed with -stats.
type RunStats struct {
	BuildVersion string
	Frames       int
	Elapsed      time.Duration
}

// Report prints the summary along with host CPU and memory figures.
func (s RunStats) Report() {
	fps := 0.0
	if s.Elapsed > 0 {
		fps = float64(s.Frames) / s.Elapsed.Seconds()
	}

	fmt.Println("--- [PERFORMANCE REPORT] ---")
	fmt.Printf("Build: %s\n", s.BuildVersion)
	fmt.Printf("Frames: %d\n", s.Frames)
	fmt.Printf("Total Time: %.2fs\n", s.Elapsed.Seconds())
	fmt.Printf("Effective FPS: %.2f\n", fps)

	if cores, err := cpu.Counts(true); err == nil {
		fmt.Printf("Logical CPUs: %d\n", cores)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		fmt.Printf("System Memory: %.1f%% of %.1f GiB used\n",
			vm.UsedPercent, float64(vm.Total)/(1<<30))
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := proc.MemoryInfo(); err == nil {
			fmt.Printf("Process RSS: %.1f MiB\n", float64(mi.RSS)/(1<<20))
		}
	}
	fmt.Println("----------------------------")
}
