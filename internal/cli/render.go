package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/dyntext/pkg/dyntext"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	Seed          uint64
	Counter       int64
	Shuffle       bool
	Autoincrement bool
	Prefix        string
	Repeat        int
	Limit         uint64
	Debug         bool
}

// RenderResult is one evaluation in the render output.
type RenderResult struct {
	Text    string `json:"text"`
	Counter int64  `json:"counter"`
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Path    string `json:"path,omitempty"`
	Debug   string `json:"debug"`
	Error   string `json:"error,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Select one combination of a template",
		Long: `Evaluate a template and print the selected combination.

With --repeat the same engine evaluates the template several times, so
--autoincrement cycles through the combinations. A template that cannot be
processed is printed unchanged.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "seed for the pseudorandom pick")
	cmd.Flags().Int64Var(&opts.Counter, "counter", dyntext.NoCounter, "explicit counter (-1 for none)")
	cmd.Flags().BoolVar(&opts.Shuffle, "shuffle", false, "round-robin selection instead of seeded")
	cmd.Flags().BoolVar(&opts.Autoincrement, "autoincrement", false, "advance the counter on every evaluation")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "text prepended to the result")
	cmd.Flags().IntVarP(&opts.Repeat, "repeat", "n", 1, "number of evaluations")
	cmd.Flags().Uint64Var(&opts.Limit, "limit", 0, "maximum combinations (0 for no limit)")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "print the debug line of each evaluation")

	return cmd
}

func runRender(rootOpts *RootOptions, opts *RenderOptions, text string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	if opts.Repeat < 1 {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric,
			fmt.Sprintf("--repeat must be at least 1, got %d", opts.Repeat), nil)
	}

	engine := dyntext.NewEngine(
		dyntext.WithLogger(newLogger(rootOpts, formatter.GetErrWriter())),
		dyntext.WithCombinationLimit(opts.Limit),
	)

	req := dyntext.NewRequest(text)
	req.Seed = opts.Seed
	req.SetCounter(opts.Counter)
	req.Shuffle = opts.Shuffle
	req.Autoincrement = opts.Autoincrement
	req.Prefix = opts.Prefix

	results := make([]RenderResult, 0, opts.Repeat)
	for i := 0; i < opts.Repeat; i++ {
		res := engine.Process(cmd.Context(), req)
		out := RenderResult{
			Text:    res.Text,
			Counter: res.Counter,
			Index:   res.Index,
			Total:   res.Total,
			Path:    res.Path,
			Debug:   res.Debug,
		}
		if res.Err != nil {
			out.Error = res.Err.Error()
			formatter.VerboseLog("evaluation %d fell back: %v", i+1, res.Err)
		}
		results = append(results, out)
	}

	return formatter.Success(results, func(w io.Writer) error {
		for _, r := range results {
			line := r.Text
			if opts.Debug {
				line = r.Debug
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	})
}
