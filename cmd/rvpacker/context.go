package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"rvpacker/internal/config"
	"rvpacker/internal/logging"
	"rvpacker/internal/runner"
	"rvpacker/internal/textengine"
)

// commandContext carries the flag storage and lazily constructed shared
// state for every subcommand.
type commandContext struct {
	inputFlag     *string
	outputFlag    *string
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	start time.Time

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logOnce sync.Once
	log     *slog.Logger
	logErr  error
}

func newCommandContext(inputFlag, outputFlag, configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		inputFlag:     inputFlag,
		outputFlag:    outputFlag,
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
		start:         time.Now(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

// logger builds the process logger once. Flags override the configuration
// file.
func (c *commandContext) logger() (*slog.Logger, error) {
	c.logOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logErr = err
			return
		}
		level := cfg.Logging.Level
		if v := strings.TrimSpace(*c.logLevelFlag); v != "" {
			level = v
		}
		format := cfg.Logging.Format
		if v := strings.TrimSpace(*c.logFormatFlag); v != "" {
			format = v
		}
		c.log, c.logErr = logging.New(logging.Options{
			Level:  level,
			Format: format,
			Output: os.Stderr,
		})
	})
	return c.log, c.logErr
}

func (c *commandContext) inputDir() string {
	if v := strings.TrimSpace(*c.inputFlag); v != "" {
		return v
	}
	if cfg, err := c.ensureConfig(); err == nil && cfg.Paths.InputDir != "" {
		return cfg.Paths.InputDir
	}
	return "./"
}

func (c *commandContext) outputDir() string {
	if v := strings.TrimSpace(*c.outputFlag); v != "" {
		return v
	}
	if cfg, err := c.ensureConfig(); err == nil {
		return cfg.Paths.OutputDir
	}
	return ""
}

// newRunner assembles a runner for the resolved directories. Callers own
// the returned runner and must Close it.
func (c *commandContext) newRunner() (*runner.Runner, error) {
	log, err := c.logger()
	if err != nil {
		return nil, err
	}
	return runner.New(runner.Options{
		InputDir:  c.inputDir(),
		OutputDir: c.outputDir(),
		Log:       log,
		Text:      textengine.New(log),
		StartTime: c.start,
	})
}

func (c *commandContext) reportElapsed(out io.Writer, r *runner.Runner) {
	fmt.Fprintf(out, "Elapsed: %.2fs\n", r.Elapsed().Seconds())
}
