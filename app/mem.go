package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sys/unix"
)

var (
	lastCPUWall   time.Time
	lastCPUProc   time.Duration
	haveCPUSample bool
)

// memUsageTick samples process memory and CPU once a second for the footer.
func memUsageTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		mem, cpu := sampleMemoryAndCPU()
		return memUsageMsg{Text: fmt.Sprintf("RAM %5.1f MB • CPU %4.1f%%", float64(mem)/(1024*1024), cpu)}
	})
}

func sampleMemoryAndCPU() (rss uint64, cpu float64) {
	var rusage unix.Rusage
	_ = unix.Getrusage(unix.RUSAGE_SELF, &rusage)
	rss = uint64(rusage.Maxrss * 1024) // KB to bytes

	nowWall := time.Now()
	user := time.Duration(rusage.Utime.Sec)*time.Second + time.Duration(rusage.Utime.Usec)*time.Microsecond
	sys := time.Duration(rusage.Stime.Sec)*time.Second + time.Duration(rusage.Stime.Usec)*time.Microsecond
	nowProc := user + sys
	if haveCPUSample {
		wallDiff := nowWall.Sub(lastCPUWall)
		procDiff := nowProc - lastCPUProc
		if wallDiff > 0 {
			cpu = procDiff.Seconds() / wallDiff.Seconds() * 100
			if cpu < 0 {
				cpu = 0
			}
		}
	}
	lastCPUWall = nowWall
	lastCPUProc = nowProc
	haveCPUSample = true
	return
}
