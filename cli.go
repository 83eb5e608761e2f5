package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const longHelp = `Searches programs of the form

  {s_n-1}<...<{s1}<{s0}[{k0}[<{j0}>{-j1}>{c0}>{c1}...<...<]{h}>{k1}]

followed by a printing tail, for the shortest one that prints text.

text accepts regex-style escapes (\n, \t, \xHH, \uHHHH, ...) and is encoded
as ISO-8859-1. Without a limit, one is derived from the text and the limit
rolls (-r) as shorter programs are found.`

// cliOptions are the flags that are not search bounds.
type cliOptions struct {
	configPath  string
	verbose     bool
	logFile     string
	metricsAddr string
	storeDir    string
	timeout     time.Duration
}

// bindConfigFlags registers one flag per configurable bound.
func bindConfigFlags(fs *pflag.FlagSet, c *Config) {
	fs.IntVarP(&c.MaxInit, "max-init", "i", c.MaxInit, "maximum prefix length (0 = unbounded)")
	fs.IntVarP(&c.MinInit, "min-init", "I", c.MinInit, "minimum prefix length")
	fs.IntVarP(&c.MaxTape, "max-tape", "t", c.MaxTape, "maximum tape cells the prefix may use")
	fs.IntVarP(&c.MinTape, "min-tape", "T", c.MinTape, "minimum tape cells the prefix must use")
	fs.IntVarP(&c.MaxNodeCost, "max-node-cost", "n", c.MaxNodeCost, "maximum symbols spent printing one byte")
	fs.IntVarP(&c.MaxLoops, "max-loops", "l", c.MaxLoops, "maximum outer loop iterations")
	fs.IntVarP(&c.MaxSlen, "max-slen", "s", c.MaxSlen, "maximum s-segment length (0 = unbounded)")
	fs.IntVarP(&c.MinSlen, "min-slen", "S", c.MinSlen, "minimum s-segment length")
	fs.IntVarP(&c.MaxClen, "max-clen", "c", c.MaxClen, "maximum c-segment length, not counting its last '<' (0 = unbounded)")
	fs.IntVarP(&c.MinClen, "min-clen", "C", c.MinClen, "minimum c-segment length, not counting its last '<'")
	fs.BoolVarP(&c.RollingLimit, "rolling-limit", "r", c.RollingLimit, "lower the limit whenever a shorter program is found")
	fs.BoolVarP(&c.UniqueCells, "unique-cells", "u", c.UniqueCells, "print each byte from a different cell")
	fs.BoolVarP(&c.TailLoops, "tail-loops", "z", c.TailLoops, "allow [<] [>] zips and [.<] [.>] print loops in the tail")
	fs.BoolVar(&c.FullProgram, "full-program", c.FullProgram, "print the whole program for each solution")
	fs.BoolVar(&c.Verify, "verify", c.Verify, "run every solution on the reference machine")
	fs.IntVarP(&c.Workers, "workers", "w", c.Workers, "parallel workers")
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cfg := DefaultConfig()
	var opts cliOptions

	cmd := &cobra.Command{
		Use:           "bfcrunch <text> [limit]",
		Short:         "Find short Brainfuck programs that print a text",
		Long:          longHelp,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.configPath != "" {
				merged, err := overlayConfigFile(cmd.Flags(), opts.configPath)
				if err != nil {
					return err
				}
				cfg = merged
			}
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n <= 0 {
					return fmt.Errorf("%w: limit %q", ErrInvalidConfig, args[1])
				}
				cfg.Limit = n
			}
			return runSearch(cmd.Context(), cfg, opts, args[0], stdout, stderr)
		},
	}
	bindConfigFlags(cmd.Flags(), &cfg)
	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "YAML or JSON file of bounds; explicit flags win")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	f.StringVar(&opts.logFile, "log-file", "", "also append JSON logs to this file")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	f.StringVar(&opts.storeDir, "store", "", "directory to persist the best solution and resume from")
	f.DurationVar(&opts.timeout, "timeout", 0, "stop after this long (0 = no timeout)")
	return cmd
}

// overlayConfigFile loads path over the defaults, then re-applies every
// flag set on the command line.
func overlayConfigFile(flags *pflag.FlagSet, path string) (Config, error) {
	merged := DefaultConfig()
	if err := LoadConfigFile(path, &merged); err != nil {
		return Config{}, err
	}
	overlay := pflag.NewFlagSet("overlay", pflag.ContinueOnError)
	bindConfigFlags(overlay, &merged)
	var errs []error
	flags.Visit(func(fl *pflag.Flag) {
		if overlay.Lookup(fl.Name) == nil {
			return
		}
		if err := overlay.Set(fl.Name, fl.Value.String()); err != nil {
			errs = append(errs, err)
		}
	})
	return merged, errors.Join(errs...)
}

func runSearch(ctx context.Context, cfg Config, opts cliOptions, text string, stdout, stderr io.Writer) error {
	goal, err := ParseText(text)
	if err != nil {
		return err
	}

	log, closer, err := NewLogger(stderr, opts.logFile, opts.verbose)
	if err != nil {
		return err
	}
	defer closer.Close()

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	reg := prometheus.NewRegistry()
	crOpts := []Option{WithLogger(log), WithMetrics(NewMetrics(reg))}
	if opts.metricsAddr != "" {
		ServeMetrics(ctx, opts.metricsAddr, reg, log)
	}
	if opts.storeDir != "" {
		st, err := OpenStore(opts.storeDir)
		if err != nil {
			return err
		}
		defer st.Close()
		crOpts = append(crOpts, WithStore(st))
	}

	cr, err := NewCruncher(cfg, goal, crOpts...)
	if err != nil {
		return err
	}
	eff := cr.Config()
	log.Info("search", "bytes", len(goal), "limit", eff.Limit, "rolling", eff.RollingLimit, "workers", eff.Workers)

	start := time.Now()
	found := 0
	err = cr.Run(ctx, func(sol Solution) error {
		found++
		_, err := fmt.Fprintf(stdout, "%s\n\n", FormatSolution(&sol, eff.FullProgram))
		return err
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		log.Info("stopped", "reason", err, "solutions", found, "elapsed", time.Since(start).Round(time.Millisecond))
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("done", "solutions", found, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
