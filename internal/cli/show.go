package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/AbelMSG89/json-synchronized/pkg/keytree"
)

const maxCellWidth = 40

type showOpts struct {
	missing bool
	depth   int
}

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	var opts showOpts
	cmd := &cobra.Command{
		Use:   "show [dir]",
		Short: "Print the merged key grid",
		Long: `Print every key found in any document as one row, with one column per
document. Absent or blank values are marked; --missing limits the output to
rows with at least one missing value.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), dirArg(args))
			if err != nil {
				return err
			}
			ws.printWarnings()

			names := ws.store.Names()
			res := keytree.Merge(ws.store.Bodies())
			rows := visibleRows(res.Rows, opts)
			if len(rows) == 0 {
				printSuccess("Nothing to show")
				return nil
			}
			fmt.Fprintln(stdout, renderGrid(names, rows))

			st := keytree.Summarize(res, len(names))
			printStats(st.Groups, st.Fields, st.MissingTotal(), st.Errors)
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.missing, "missing", false, "only rows with a missing value")
	cmd.Flags().IntVar(&opts.depth, "depth", 0, "maximum depth to print (0 = all)")
	return cmd
}

// visibleRows flattens the tree, dropping add rows and applying filters.
func visibleRows(rows []keytree.Row, opts showOpts) []keytree.Row {
	var out []keytree.Row
	for _, r := range keytree.Flatten(rows, nil) {
		if r.Kind == keytree.RowAdd {
			continue
		}
		if opts.depth > 0 && r.Depth >= opts.depth {
			continue
		}
		if opts.missing && r.Missing.Empty() && r.Conflicts.Empty() {
			continue
		}
		out = append(out, r)
	}
	return out
}

// renderGrid renders rows as a table with one column per document.
func renderGrid(names []string, rows []keytree.Row) string {
	headers := append([]string{"Key"}, names...)
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		line := make([]string, 0, len(names)+1)
		line = append(line, keyLabel(r, true))
		for col := range names {
			line = append(line, cellText(r, col))
		}
		data = append(data, line)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == -1 {
				return base.Inherit(styleHeader)
			}
			if row < 0 || row >= len(rows) {
				return base
			}
			r := rows[row]
			switch {
			case col == 0 && r.Kind == keytree.RowGroup:
				return base.Inherit(styleGroup)
			case col == 0:
				return base.Inherit(StyleValue)
			case r.Missing.Has(col-1) || r.Conflicts.Has(col-1):
				return base.Inherit(StyleMissing)
			case r.Kind == keytree.RowField && col-1 < len(r.Cells) && r.Cells[col-1].HasError:
				return base.Inherit(StyleWarning)
			}
			return base
		})
	return t.Render()
}

// keyLabel is the indented key with a group marker.
func keyLabel(r keytree.Row, open bool) string {
	indent := strings.Repeat("  ", r.Depth)
	switch r.Kind {
	case keytree.RowGroup:
		icon := iconClosed
		if open {
			icon = iconOpen
		}
		return indent + icon + " " + r.Key
	case keytree.RowAdd:
		return indent + "+ add key"
	default:
		return indent + r.Key
	}
}

// cellText is the display text for one document's cell.
func cellText(r keytree.Row, col int) string {
	switch r.Kind {
	case keytree.RowGroup:
		if r.Conflicts.Has(col) {
			return iconConflict + " not an object"
		}
		if r.Missing.Has(col) {
			return iconMissing
		}
		return ""
	case keytree.RowField:
		if col >= len(r.Cells) {
			return ""
		}
		cell := r.Cells[col]
		if cell.HasError {
			return iconWarning + " not a string"
		}
		if cell.IsEmpty {
			return iconMissing
		}
		return truncate(cell.Value, maxCellWidth)
	}
	return ""
}

// truncate shortens s to at most n runes on one line.
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", "⏎")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
