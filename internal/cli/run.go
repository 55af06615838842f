package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/dyntext/pkg/dyntext/config"
	"github.com/randalmurphal/dyntext/pkg/dyntext/history"
	"github.com/randalmurphal/dyntext/pkg/dyntext/pipeline"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	History string
	Cycles  int
}

// RunNodeOutput is one node's output in the run output.
type RunNodeOutput struct {
	NodeID  string `json:"node_id"`
	Text    string `json:"text"`
	Counter int64  `json:"counter"`
	Cached  bool   `json:"cached"`
	Error   string `json:"error,omitempty"`
}

// RunCycleOutput is one cycle in the run output.
type RunCycleOutput struct {
	Cycle int             `json:"cycle"`
	Nodes []RunNodeOutput `json:"nodes"`
}

// RunResult is the run output.
type RunResult struct {
	RunID  string           `json:"run_id"`
	Cycles []RunCycleOutput `json:"cycles"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <pipeline.yaml>",
		Short: "Run generation cycles over a pipeline file",
		Long: `Evaluate every node of a pipeline file once per cycle, keeping each
node's counter between cycles.

Nodes whose inputs did not change reuse their previous output unless
autoincrement is on. With --history (or "history:" in the file) every
output is appended to a SQLite database.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.History, "history", "", "SQLite history database (overrides the file)")
	cmd.Flags().IntVar(&opts.Cycles, "cycles", 0, "number of cycles (overrides the file)")

	return cmd
}

func runPipeline(rootOpts *RootOptions, opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	p, err := config.LoadPipeline(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load pipeline", err)
	}
	if opts.History != "" {
		p.History = opts.History
	}
	if opts.Cycles > 0 {
		p.Cycles = opts.Cycles
	}
	formatter.VerboseLog("Loaded %d node(s) from %s", len(p.Nodes), path)

	runnerOpts := []pipeline.Option{
		pipeline.WithLogger(newLogger(rootOpts, formatter.GetErrWriter())),
	}
	if p.History != "" {
		store, err := history.NewSQLiteStore(p.History)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeHistory, "failed to open history", err)
		}
		defer store.Close()
		runnerOpts = append(runnerOpts, pipeline.WithHistory(store))
		formatter.VerboseLog("Recording history to %s", p.History)
	}

	report, err := pipeline.New(runnerOpts...).Run(cmd.Context(), p)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeRun, "pipeline run interrupted", err)
	}
	formatter.VerboseLog("Run %s completed %d cycle(s)", report.RunID, len(report.Cycles))

	result := toRunResult(report)
	return formatter.Success(result, func(w io.Writer) error {
		return writeRunText(w, result)
	})
}

func toRunResult(report pipeline.Report) RunResult {
	result := RunResult{
		RunID:  report.RunID,
		Cycles: make([]RunCycleOutput, 0, len(report.Cycles)),
	}
	for _, c := range report.Cycles {
		cycle := RunCycleOutput{Cycle: c.Number, Nodes: make([]RunNodeOutput, 0, len(c.Outputs))}
		for _, o := range c.Outputs {
			node := RunNodeOutput{
				NodeID:  o.NodeID,
				Text:    o.Result.Text,
				Counter: o.Result.Counter,
				Cached:  o.Cached,
			}
			if o.Result.Err != nil {
				node.Error = o.Result.Err.Error()
			}
			cycle.Nodes = append(cycle.Nodes, node)
		}
		result.Cycles = append(result.Cycles, cycle)
	}
	return result
}

// writeRunText prints one block per cycle. The run ID is left out so the
// text output of a pipeline is reproducible.
func writeRunText(w io.Writer, result RunResult) error {
	for _, c := range result.Cycles {
		if _, err := fmt.Fprintf(w, "cycle %d\n", c.Cycle); err != nil {
			return err
		}
		for _, n := range c.Nodes {
			suffix := ""
			if n.Cached {
				suffix = " (cached)"
			}
			if n.Error != "" {
				suffix += " (fallback)"
			}
			if _, err := fmt.Fprintf(w, "  %s: %s%s\n", n.NodeID, n.Text, suffix); err != nil {
				return err
			}
		}
	}
	return nil
}
