// ============================================================================
// taskgen CLI - Command Line Interface
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: Cobra command tree around the task generator
//
// Command Structure:
//   taskgen                        # Append one run to tasks.txt
//   ├── rank <draw>...             # Print the rank assignment for explicit draws
//   ├── config                     # Print the effective configuration as YAML
//   ├── --config, -c              # Config file (optional, none by default)
//   ├── --output, -o              # Archive path (default: tasks.txt)
//   ├── --seed                    # Fixed random seed
//   ├── --runs                    # Runs per invocation (default: 1)
//   ├── --metrics-file            # Prometheus textfile output
//   ├── --log-level               # debug, info, warn, error
//   └── --version
//
// Configuration Management:
//   Uses YAML format config file, read only when named with --config.
//   A bare invocation reads nothing from the working directory besides
//   appending to tasks.txt. Flags that are set explicitly override file
//   values.
//
// Exit behavior:
//   Prints "File Updated!" on success. Any archive failure is returned to
//   main, which prints it and exits non-zero.
//
// ============================================================================

package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ChuLiYu/taskgen/internal/generator"
	"github.com/ChuLiYu/taskgen/internal/metrics"
	"github.com/ChuLiYu/taskgen/internal/priority"
	"github.com/ChuLiYu/taskgen/internal/random"
	"github.com/ChuLiYu/taskgen/internal/storage/archive"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration structure
// Maps config file fields through YAML tags
type Config struct {
	Archive struct {
		Path string `yaml:"path"`
	} `yaml:"archive"`

	Generator struct {
		Runs int     `yaml:"runs"`
		Seed *uint64 `yaml:"seed,omitempty"`
	} `yaml:"generator"`

	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// options holds the raw flag values of one command tree.
type options struct {
	configFile  string
	output      string
	seed        uint64
	runs        int
	metricsFile string
	logLevel    string
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Archive.Path = archive.DefaultPath
	cfg.Generator.Runs = 1
	cfg.Log.Level = "warn"
	return cfg
}

func BuildCLI() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "taskgen",
		Short: "taskgen: synthetic task set generator",
		Long: `taskgen appends synthetic real-time task sets to an archive file.

Each run draws 1-20 tasks, gives every task a best-case and worst-case
execution time and a unique priority rank, and appends them to tasks.txt
followed by a "---" separator line.`,
		Version:       "1.0.0",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file path (YAML)")
	flags.StringVarP(&opts.output, "output", "o", archive.DefaultPath, "archive file path")
	flags.Uint64Var(&opts.seed, "seed", 0, "random seed (default: derived from the clock)")
	flags.IntVar(&opts.runs, "runs", 1, "number of runs to append")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	rootCmd.AddCommand(buildRankCommand())
	rootCmd.AddCommand(buildConfigCommand(opts))

	return rootCmd
}

func buildRankCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank <draw>...",
		Short: "Rank explicit priority draws",
		Long: `Print the priority rank assigned to each draw, in input order.
Draws must be integers in [0, N) where N is the number of draws.
Equal draws are ranked by position.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rankDraws(cmd.OutOrStdout(), args)
		},
	}
	return cmd
}

func rankDraws(out io.Writer, args []string) error {
	draws := make([]int, len(args))
	for i, arg := range args {
		d, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid draw %q: %w", arg, err)
		}
		draws[i] = d
	}

	ranks, err := priority.Rank(draws)
	if err != nil {
		return err
	}

	fields := make([]string, len(ranks))
	for i, r := range ranks {
		fields[i] = strconv.Itoa(r)
	}
	fmt.Fprintln(out, strings.Join(fields, " "))
	return nil
}

func buildConfigCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long:  "Print the configuration after merging the config file and flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			return showConfig(cmd.OutOrStdout(), cfg)
		},
	}
	return cmd
}

func showConfig(out io.Writer, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func runGenerate(cmd *cobra.Command, opts *options) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)
	if err != nil {
		return err
	}

	var src random.Source
	if cfg.Generator.Seed != nil {
		src = random.New(*cfg.Generator.Seed)
		logger.Info("Using fixed seed", "seed", *cfg.Generator.Seed)
	} else {
		clockSrc, seed := random.NewFromClock()
		src = clockSrc
		logger.Info("Using clock seed", "seed", seed)
	}

	collector := metrics.NewCollector()

	gen, err := generator.New(generator.Config{
		ArchivePath: cfg.Archive.Path,
		Runs:        cfg.Generator.Runs,
		Logger:      logger,
	}, src, collector)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	_, genErr := gen.Execute()

	if cfg.Metrics.Textfile != "" {
		if err := collector.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			if genErr == nil {
				return fmt.Errorf("failed to write metrics file: %w", err)
			}
			logger.Error("Failed to write metrics file", "path", cfg.Metrics.Textfile, "error", err)
		}
	}

	if genErr != nil {
		var ioErr *archive.IOError
		if errors.As(genErr, &ioErr) && ioErr.Op == "open" {
			return fmt.Errorf("error opening the file: %w", genErr)
		}
		return fmt.Errorf("failed to update archive: %w", genErr)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "File Updated!")
	return nil
}

// resolveConfig merges defaults, the config file and explicitly set flags.
func resolveConfig(cmd *cobra.Command, opts *options) (*Config, error) {
	flags := cmd.Flags()

	cfg := defaultConfig()
	if flags.Changed("config") {
		loaded, err := loadConfig(opts.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if flags.Changed("output") {
		cfg.Archive.Path = opts.output
	}
	if flags.Changed("seed") {
		seed := opts.seed
		cfg.Generator.Seed = &seed
	}
	if flags.Changed("runs") {
		cfg.Generator.Runs = opts.runs
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.Textfile = opts.metricsFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Archive.Path == "" {
		return fmt.Errorf("invalid config: archive path is empty")
	}
	if cfg.Generator.Runs < 1 {
		return fmt.Errorf("invalid config: runs must be at least 1, got %d", cfg.Generator.Runs)
	}
	if _, err := parseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

func newLogger(w io.Writer, levelName string) (*slog.Logger, error) {
	level, err := parseLevel(levelName)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
