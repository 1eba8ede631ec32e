package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AbelMSG89/json-synchronized/pkg/keytree"
)

// ErrCheckFailed is returned by check when any cell is missing or invalid.
var ErrCheckFailed = fmt.Errorf("check failed")

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Report missing and invalid values",
		Long: `Report every key that is absent or blank in some document, every value
that is neither a string nor an object, and every key that is a group in
one document but a plain value in another. Exits with status 1 when
anything is found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), dirArg(args))
			if err != nil {
				return err
			}
			ws.printWarnings()

			names := ws.store.Names()
			res := keytree.Merge(ws.store.Bodies())
			st := keytree.Summarize(res, len(names))
			if st.Clean() {
				printSuccess("%d keys present in all %d documents", st.Fields, len(names))
				return nil
			}

			if !quiet {
				for _, r := range keytree.Flatten(res.Rows, nil) {
					if r.Kind != keytree.RowField || r.Missing.Empty() {
						continue
					}
					var cols []string
					for _, col := range r.Missing.Slice() {
						cols = append(cols, names[col])
					}
					printWarning("%s missing in %v", r.Path, cols)
				}
				for _, p := range res.Problems {
					if p.Conflict {
						printError("%s in %s is a %s but other documents hold a group", p.Path, names[p.Column], p.Type)
						continue
					}
					printError("%s in %s is a %s, not a string", p.Path, names[p.Column], p.Type)
				}
			}
			for col, n := range st.Missing {
				if n > 0 {
					printDetail("%s: %d missing", names[col], n)
				}
			}
			printStats(st.Groups, st.Fields, st.MissingTotal(), st.Errors+st.Conflicts)
			return fmt.Errorf("%w: %d missing, %d invalid", ErrCheckFailed, st.MissingTotal(), st.Errors+st.Conflicts)
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print the summary")
	return cmd
}
