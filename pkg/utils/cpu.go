package utils

import "github.com/shirou/gopsutil/cpu"

// CPUProbe returns whether a new job may start and the measured usage.
type CPUProbe func(maxCPUUsage float64) (bool, float64)

func CheckCPUUsage(maxCPUUsage float64) (bool, float64) {
	if maxCPUUsage <= 0 {
		return true, 0
	}
	usage, err := cpu.Percent(0, false)
	if err != nil || len(usage) == 0 {
		// an unreadable probe must not stall the queue
		return true, 0
	}
	return usage[0] <= maxCPUUsage, usage[0]
}
