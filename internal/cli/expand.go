package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/dyntext/pkg/dyntext/template"
)

// ExpandOptions holds flags for the expand command.
type ExpandOptions struct {
	Paths bool
	Count bool
	Limit uint64
}

// ExpandResult is the expand output.
type ExpandResult struct {
	Count        uint64                 `json:"count"`
	Combinations []template.Combination `json:"combinations,omitempty"`
}

// NewExpandCommand creates the expand command.
func NewExpandCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExpandOptions{}

	cmd := &cobra.Command{
		Use:   "expand <template>",
		Short: "List every combination of a template",
		Long: `Print every combination a template denotes, one per line, in selection
order: the left-most group varies slowest.

--count prints only the number of combinations, without expanding.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Paths, "paths", false, "prefix each combination with its choice path")
	cmd.Flags().BoolVar(&opts.Count, "count", false, "print only the number of combinations")
	cmd.Flags().Uint64Var(&opts.Limit, "limit", 10000, "maximum combinations to expand (0 for no limit)")

	return cmd
}

func runExpand(rootOpts *RootOptions, opts *ExpandOptions, text string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	seq := template.Parse(text)
	result := ExpandResult{Count: template.Count(seq)}
	formatter.VerboseLog("%d group(s), %d combination(s)", seq.Groups(), result.Count)

	if opts.Count {
		return formatter.Success(result, func(w io.Writer) error {
			_, err := fmt.Fprintln(w, result.Count)
			return err
		})
	}

	combos, err := template.NewExpander(template.WithLimit(opts.Limit)).ExpandPaths(seq)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeLimit, "template too large to expand", err)
	}
	result.Combinations = combos

	return formatter.Success(result, func(w io.Writer) error {
		for _, c := range combos {
			var err error
			if opts.Paths {
				_, err = fmt.Fprintf(w, "%s\t%s\n", c.Path, c.Text)
			} else {
				_, err = fmt.Fprintln(w, c.Text)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}
