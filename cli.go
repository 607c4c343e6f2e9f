package main

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"binpack_go/bpp"
	"binpack_go/colgen"
)

type cli struct {
	out     io.Writer
	errOut  io.Writer
	verbose bool
	logger  *log.Logger
}

func newCLI(out, errOut io.Writer) *cli {
	return &cli{out: out, errOut: errOut}
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "binpack",
		Short:         "Exact one-dimensional bin packing by column generation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.logger = newLogger(c.errOut, c.verbose)
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log every column generation iteration")
	root.AddCommand(c.solveCommand())
	return root
}

func (c *cli) solveCommand() *cobra.Command {
	var (
		configPath string
		oracle     string
		epsilon    float64
		scale      float64
		maxIter    int
		nodeLimit  int
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "solve <instance>",
		Short: "Solve an instance file (item count, capacity, weights)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := DefaultConfig()
			if configPath != "" {
				var err error
				if cfg, err = LoadConfig(configPath); err != nil {
					return err
				}
			}
			flags := cmd.Flags()
			if flags.Changed("oracle") {
				cfg.Solver.Oracle = oracle
			}
			if flags.Changed("epsilon") {
				cfg.Solver.Epsilon = epsilon
			}
			if flags.Changed("scale") {
				cfg.Solver.Scale = scale
			}
			if flags.Changed("max-iterations") {
				cfg.Solver.MaxIterations = maxIter
			}
			if flags.Changed("node-limit") {
				cfg.Solver.NodeLimit = nodeLimit
			}
			if flags.Changed("timeout") {
				cfg.Solver.Timeout = timeout.String()
			}
			opts, err := cfg.Solver.Options()
			if err != nil {
				return err
			}
			opts.Logger = c.logger

			inst, err := bpp.LoadInstance(args[0])
			if err != nil {
				return err
			}
			c.logger.Info("loaded instance", "name", inst.Name, "items", inst.Len(), "capacity", inst.Capacity)
			res, err := colgen.Solve(cmd.Context(), inst, opts)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), inst, res)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "TOML config file with a [solver] table")
	f.StringVar(&oracle, "oracle", "auto", "knapsack oracle: auto, dp, dd, branch or pb")
	f.Float64Var(&epsilon, "epsilon", 0, "tolerance for reduced costs and integrality (default 1e-6)")
	f.Float64Var(&scale, "scale", 0, "dual to integer profit scale factor (default 1e6)")
	f.IntVar(&maxIter, "max-iterations", 0, "stop generating after this many patterns, 0 for no cap")
	f.IntVar(&nodeLimit, "node-limit", 0, "branch and bound LP budget for the integer solve")
	f.DurationVar(&timeout, "timeout", 0, "wall-clock budget for pattern generation")
	return cmd
}
