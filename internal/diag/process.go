package diag

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats снимок ресурсов процесса
type ProcessStats struct {
	Uptime     string  `json:"uptime"`
	CPUPercent float64 `json:"cpu_percent"`
	RSSMB      float64 `json:"rss_mb"`
	HeapMB     float64 `json:"heap_alloc_mb"`
	NumGC      uint32  `json:"num_gc"`
	Goroutines int     `json:"goroutines"`
}

// ProcessSampler читает статистику текущего процесса через gopsutil
type ProcessSampler struct {
	start time.Time
	proc  *process.Process
}

// NewProcessSampler создаёт сэмплер для текущего процесса.
// Если gopsutil не видит процесс, CPU и RSS остаются нулевыми.
func NewProcessSampler() *ProcessSampler {
	ps := &ProcessSampler{start: time.Now()}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		ps.proc = p
	}
	return ps
}

// Sample возвращает текущий снимок
func (ps *ProcessSampler) Sample() ProcessStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	st := ProcessStats{
		Uptime:     FormatUptime(time.Since(ps.start)),
		HeapMB:     float64(m.HeapAlloc) / 1024 / 1024,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
	}
	if ps.proc == nil {
		return st
	}
	if cpu, err := ps.proc.CPUPercent(); err == nil {
		st.CPUPercent = cpu
	}
	if mem, err := ps.proc.MemoryInfo(); err == nil && mem != nil {
		st.RSSMB = float64(mem.RSS) / 1024 / 1024
	}
	return st
}

// FormatUptime возвращает длительность в виде "1ч 2м 3с"
func FormatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}
