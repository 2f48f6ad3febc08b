// Package cpuspec inspects the CPU to pick a sensible inference thread
// count. On hybrid architectures only performance cores are worth giving to
// the TFLite interpreter, efficiency cores slow the whole batch down.
package cpuspec

import (
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// CPUSpec contains information about CPU specifications
type CPUSpec struct {
	BrandName        string
	PerformanceCores int
}

// GetCPUSpec returns CPU specifications including the number of performance cores
func GetCPUSpec() CPUSpec {
	brandName := cpuid.CPU.BrandName

	return CPUSpec{
		BrandName:        brandName,
		PerformanceCores: determinePerformanceCores(brandName),
	}
}

// GetOptimalThreadCount returns the recommended number of threads for
// snore detection inference.
func (c CPUSpec) GetOptimalThreadCount() int {
	// Get actual available CPU count (important for VMs and cgroup limits)
	availableCPUs := runtime.NumCPU()

	if c.PerformanceCores > 0 {
		if c.PerformanceCores > availableCPUs {
			return availableCPUs
		}
		return c.PerformanceCores
	}

	// Fallback to all logical cores if P-cores cannot be determined.
	if cpuid.CPU.LogicalCores > 0 {
		return cpuid.CPU.LogicalCores
	}
	return availableCPUs
}

// determinePerformanceCores estimates P-core count from the CPU brand
// string. Apple Silicon and recent hybrid Intel parts are the common
// deployment targets beyond the Raspberry Pi; everything else returns 0
// and the caller falls back to logical cores.
func determinePerformanceCores(brandName string) int {
	brandName = strings.ToLower(brandName)

	switch {
	case strings.Contains(brandName, "apple m1"),
		strings.Contains(brandName, "apple m2"):
		if strings.Contains(brandName, "pro") || strings.Contains(brandName, "max") {
			return 8
		}
		return 4
	case strings.Contains(brandName, "apple m3"),
		strings.Contains(brandName, "apple m4"):
		if strings.Contains(brandName, "pro") || strings.Contains(brandName, "max") {
			return 10
		}
		return 4
	}

	// Hybrid Intel parts (12th gen onwards) report E-cores in the logical
	// count; approximate P-cores as physical minus small cores is not
	// possible from the brand string alone, so leave them to the fallback.
	return 0
}
