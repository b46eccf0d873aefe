// Package sysinfo probes host facts used to size batch runs.
package sysinfo

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Host reports the machine's parallelism and available memory. It satisfies
// the batch package's Probe interface.
type Host struct{}

// Parallelism returns the number of usable parallel-execution units.
func (Host) Parallelism() int {
	return runtime.NumCPU()
}

// AvailableMemoryBytes estimates free memory from /proc/meminfo. It returns
// 0 on platforms or hosts where that cannot be determined, which callers
// treat as "unknown, do not cap".
func (Host) AvailableMemoryBytes() uint64 {
	return readMemAvailable("/proc/meminfo")
}

func readMemAvailable(path string) uint64 {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := s.Text()
		if !strings.HasPrefix(line, "MemAvailable:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0
		}
		return kb * 1024
	}
	return 0
}
