package config

import (
	"os"
	"strings"

	"codeberg.org/mutker/platformstats/internal/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix = "PLATFORMSTATS"

	defaultRate     = 1
	defaultDuration = 5

	defaultHwmonRoot   = "/sys/class/hwmon"
	defaultProcStat    = "/proc/stat"
	defaultProcMeminfo = "/proc/meminfo"
	defaultCpufreqBase = "/sys/devices/system/cpu/cpu"
)

type Config struct {
	All       bool
	CPUUtil   bool `mapstructure:"cpu-util"`
	CPUFreq   bool `mapstructure:"cpu-freq"`
	MemUtil   bool `mapstructure:"mem-util"`
	PowerUtil bool `mapstructure:"power-util"`
	Rate      int
	Duration  int
	Verbose   bool
	Debug     bool

	// Kernel interface roots, overridable for tests and nonstandard kernels.
	HwmonRoot   string `mapstructure:"hwmon-root"`
	ProcStat    string `mapstructure:"proc-stat"`
	ProcMeminfo string `mapstructure:"proc-meminfo"`
	CpufreqBase string `mapstructure:"cpufreq-base"`
}

func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	v.SetDefault("rate", defaultRate)
	v.SetDefault("duration", defaultDuration)
	v.SetDefault("hwmon-root", defaultHwmonRoot)
	v.SetDefault("proc-stat", defaultProcStat)
	v.SetDefault("proc-meminfo", defaultProcMeminfo)
	v.SetDefault("cpufreq-base", defaultCpufreqBase)

	fs := pflag.NewFlagSet("platformstats", pflag.ContinueOnError)
	fs.Bool("all", false, "Print all platform statistics")
	fs.Bool("cpu-util", false, "Print CPU utilization")
	fs.Bool("cpu-freq", false, "Print CPU frequency")
	fs.Bool("mem-util", false, "Print RAM, swap and CMA utilization")
	fs.Bool("power-util", false, "Print power and thermal telemetry")
	fs.Int("rate", defaultRate, "Seconds between successive power samples")
	fs.Int("duration", defaultDuration, "Number of power samples to take")
	fs.Bool("verbose", false, "Enable verbose logging")
	fs.Bool("debug", false, "Enable debugging mode")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	if err := v.BindPFlags(fs); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	// No section selected means print everything, matching a bare invocation.
	if !config.CPUUtil && !config.CPUFreq && !config.MemUtil && !config.PowerUtil {
		config.All = true
	}

	applyLogLevel(config)

	return config, nil
}

func (c *Config) validate() error {
	errFactory := errors.New()

	if c.Rate < 1 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Rate)
	}
	if c.Duration < 1 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Duration)
	}

	return nil
}

func applyLogLevel(c *Config) {
	switch {
	case c.Debug:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case c.Verbose:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}
