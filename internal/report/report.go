// Package report collects each platform-statistics section and prints a
// formatted console report. Sections are independent: a section that fails
// because a sensor or pseudo-file is absent is logged and skipped, and the
// remaining sections still run.
package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"codeberg.org/mutker/platformstats/internal/config"
	"codeberg.org/mutker/platformstats/internal/cpu"
	"codeberg.org/mutker/platformstats/internal/logger"
	"codeberg.org/mutker/platformstats/internal/memory"
	"codeberg.org/mutker/platformstats/internal/sysfs"
	"codeberg.org/mutker/platformstats/internal/telemetry"
	pscpu "github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
)

// loadSampleGap is the pause between the two /proc/stat samples that feed
// the utilization delta.
const loadSampleGap = time.Second

type Reporter struct {
	cfg       *config.Config
	out       io.Writer
	sampler   *cpu.Sampler
	memReader *memory.Reader

	// Overridable in tests.
	sampleGap time.Duration
	cpuCount  func() (int, error)
}

func New(cfg *config.Config, out io.Writer) *Reporter {
	return &Reporter{
		cfg:       cfg,
		out:       out,
		sampler:   cpu.NewSampler(cfg.ProcStat),
		memReader: memory.NewReader(cfg.ProcMeminfo),
		sampleGap: loadSampleGap,
		cpuCount: func() (int, error) {
			return pscpu.Counts(true)
		},
	}
}

// Run prints every selected section. It returns an error only when the
// context is cancelled; section failures are logged and skipped.
func (r *Reporter) Run(ctx context.Context) error {
	r.printHostHeader()

	sections := []struct {
		name     string
		selected bool
		fn       func(context.Context) error
	}{
		{"cpu_utilization", r.cfg.All || r.cfg.CPUUtil, r.printCPUUtilization},
		{"memory_utilization", r.cfg.All || r.cfg.MemUtil, r.printMemoryUtilization},
		{"power_utilization", r.cfg.All || r.cfg.PowerUtil, r.printPowerUtilization},
		{"sysmon", r.cfg.All || r.cfg.PowerUtil, r.printSysmon},
		{"cpu_frequency", r.cfg.All || r.cfg.CPUFreq, r.printCPUFrequency},
	}

	for _, section := range sections {
		if !section.selected {
			continue
		}

		if err := section.fn(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn().Err(err).Str("section", section.name).Msg("Section skipped")
		}
	}

	return ctx.Err()
}

// printHostHeader is best-effort identification of the board being probed.
func (r *Reporter) printHostHeader() {
	info, err := host.Info()
	if err != nil {
		logger.Debug().Err(err).Msg("Host info unavailable")
		return
	}

	fmt.Fprintf(r.out, "Host\t\t:     %s\n", info.Hostname)
	fmt.Fprintf(r.out, "Kernel\t\t:     %s\n", info.KernelVersion)
	fmt.Fprintf(r.out, "Uptime\t\t:     %s\n\n", (time.Duration(info.Uptime) * time.Second).String())
}

func (r *Reporter) printCPUUtilization(ctx context.Context) error {
	numCPUs, err := r.cpuCount()
	if err != nil {
		return err
	}

	before := make([]cpu.Stat, numCPUs)
	sampled := make([]bool, numCPUs)

	for id := 0; id < numCPUs; id++ {
		stat, err := r.sampler.Sample(id)
		if err != nil {
			logger.Warn().Err(err).Int("cpu", id).Msg("Failed to sample CPU")
			continue
		}
		before[id] = stat
		sampled[id] = true

		if r.cfg.Verbose {
			logCPUStat(id, "t0", stat)
		}
	}

	if err := wait(ctx, r.sampleGap); err != nil {
		return err
	}

	fmt.Fprintln(r.out, "CPU Utilization")
	for id := 0; id < numCPUs; id++ {
		if !sampled[id] {
			continue
		}

		stat, err := r.sampler.Sample(id)
		if err != nil {
			logger.Warn().Err(err).Int("cpu", id).Msg("Failed to resample CPU")
			continue
		}

		if r.cfg.Verbose {
			logCPUStat(id, "t1", stat)
		}

		util, err := cpu.Utilization(before[id], stat)
		if err != nil {
			logger.Warn().Err(err).Int("cpu", id).Msg("Failed to compute utilization")
			continue
		}

		fmt.Fprintf(r.out, "CPU%d\t:     %.2f%%\n", id, util)
	}
	fmt.Fprintln(r.out)

	return nil
}

func logCPUStat(id int, label string, stat cpu.Stat) {
	logger.Info().
		Int("cpu", id).
		Str("sample", label).
		Uint64("user", stat.User).
		Uint64("nice", stat.Nice).
		Uint64("system", stat.System).
		Uint64("idle", stat.Idle).
		Uint64("iowait", stat.IOWait).
		Uint64("irq", stat.IRQ).
		Uint64("softirq", stat.SoftIRQ).
		Msg("Raw CPU counters")
}

func (r *Reporter) printMemoryUtilization(_ context.Context) error {
	info, err := r.memReader.Read()
	if err != nil {
		return err
	}

	fmt.Fprintln(r.out, "RAM Utilization")
	fmt.Fprintf(r.out, "MemTotal\t:     %d kB\n", info.MemTotal)
	fmt.Fprintf(r.out, "MemFree\t\t:     %d kB\n", info.MemFree)
	fmt.Fprintf(r.out, "MemAvailable\t:     %d kB\n\n", info.MemAvailable)

	fmt.Fprintln(r.out, "Swap Mem Utilization")
	fmt.Fprintf(r.out, "SwapTotal\t:     %d kB\n", info.SwapTotal)
	fmt.Fprintf(r.out, "SwapFree\t:     %d kB\n\n", info.SwapFree)

	fmt.Fprintln(r.out, "CMA Mem Utilization")
	fmt.Fprintf(r.out, "CmaTotal\t:     %d kB\n", info.CmaTotal)
	fmt.Fprintf(r.out, "CmaFree\t\t:     %d kB\n\n", info.CmaFree)

	return nil
}

func (r *Reporter) printPowerUtilization(ctx context.Context) error {
	fmt.Fprintln(r.out, "Power Utilization")

	board, err := telemetry.NewBoardPower(r.cfg.HwmonRoot, r.cfg.Duration)
	if err != nil {
		if sysfs.IsNotFound(err) {
			fmt.Fprintf(r.out, "no hwmon device found for %s under %s\n\n", telemetry.BoardSensorName, r.cfg.HwmonRoot)
			return nil
		}
		return err
	}

	for i := 0; i < r.cfg.Duration; i++ {
		if i > 0 {
			if err := wait(ctx, time.Duration(r.cfg.Rate)*time.Second); err != nil {
				return err
			}
		}

		sample, err := board.Sample()
		if err != nil {
			return err
		}

		fmt.Fprintf(r.out, "SOM total power\t\t:     %d mW\tSOM avg power\t:     %d mW\n", sample.Power, sample.AveragePower)
		fmt.Fprintf(r.out, "SOM total current\t:     %d mA\tSOM avg current\t:     %d mA\n", sample.Current, sample.AverageCurrent)
		fmt.Fprintf(r.out, "SOM total voltage\t:     %d mV\tSOM avg voltage\t:     %d mV\n\n", sample.Voltage, sample.AverageVoltage)
	}

	return nil
}

func (r *Reporter) printSysmon(_ context.Context) error {
	sysmon, err := telemetry.NewSysmon(r.cfg.HwmonRoot)
	if err != nil {
		if sysfs.IsNotFound(err) {
			fmt.Fprintf(r.out, "no hwmon device found for %s under %s\n\n", telemetry.SysmonSensorName, r.cfg.HwmonRoot)
			return nil
		}
		return err
	}

	reading, err := sysmon.Read()
	if err != nil {
		return err
	}

	fmt.Fprintln(r.out, "AMS CTRL")
	fmt.Fprintf(r.out, "System PLLs voltage measurement, VCC_PSLL\t\t:     %d mV\n", reading.VCCPsPLL)
	fmt.Fprintf(r.out, "PL internal voltage measurement, VCC_PSBATT\t\t:     %d mV\n", reading.PLVCCInt)
	fmt.Fprintf(r.out, "Voltage measurement for six DDR I/O PLLs, VCC_PSDDR_PLL\t:     %d mV\n", reading.VCCPsDDR)
	fmt.Fprintf(r.out, "VCC_PSINTFP_DDR voltage measurement\t\t\t:     %d mV\n\n", reading.VCCPsIntFP)

	fmt.Fprintln(r.out, "PS Sysmon")
	fmt.Fprintf(r.out, "LPD temperature measurement\t\t\t\t:     %d C\n", telemetry.CelsiusFromMilli(reading.LPDTemp))
	fmt.Fprintf(r.out, "FPD temperature measurement (REMOTE)\t\t\t:     %d C\n", telemetry.CelsiusFromMilli(reading.FPDTemp))
	fmt.Fprintf(r.out, "VCC PS FPD voltage measurement (supply 2)\t\t:     %d mV\n", reading.VCCPsFPD)
	fmt.Fprintf(r.out, "PS IO Bank 500 voltage measurement (supply 6)\t\t:     %d mV\n", reading.PSIOBank500)
	fmt.Fprintf(r.out, "VCC PS GTR voltage\t\t\t\t\t:     %d mV\n", reading.VCCPsGTR)
	fmt.Fprintf(r.out, "VTT PS GTR voltage\t\t\t\t\t:     %d mV\n\n", reading.VTTPsGTR)

	fmt.Fprintln(r.out, "PL Sysmon")
	fmt.Fprintf(r.out, "PL temperature\t\t\t\t\t\t:     %d C\n\n", telemetry.CelsiusFromMilli(reading.PLTemp))

	return nil
}

func (r *Reporter) printCPUFrequency(_ context.Context) error {
	numCPUs, err := r.cpuCount()
	if err != nil {
		return err
	}

	fmt.Fprintln(r.out, "CPU Frequency")
	for id := 0; id < numCPUs; id++ {
		freq, err := cpu.Frequency(r.cfg.CpufreqBase, id)
		if err != nil {
			logger.Warn().Err(err).Int("cpu", id).Msg("Failed to read CPU frequency")
			continue
		}

		fmt.Fprintf(r.out, "CPU%d\t:     %.3f MHz\n", id, cpu.FrequencyMHz(freq))
	}
	fmt.Fprintln(r.out)

	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
