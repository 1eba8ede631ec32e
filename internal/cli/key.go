package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AbelMSG89/json-synchronized/pkg/errors"
	"github.com/AbelMSG89/json-synchronized/pkg/jsonval"
)

// keyCommand creates the key command and its subcommands.
func (c *CLI) keyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Add, change, remove or rename keys across documents",
		Long: `Apply one edit to the documents of a directory. Paths are dotted
("errors.auth.title"); write a literal dot inside a key as "\.". By default
every document is changed; --file limits the edit to the named documents.`,
	}

	cmd.AddCommand(c.keySetCommand())
	cmd.AddCommand(c.keyAddCommand())
	cmd.AddCommand(c.keyRemoveCommand())
	cmd.AddCommand(c.keyMoveCommand())

	return cmd
}

// parseKeyPath parses a dotted path and rejects the root.
func parseKeyPath(s string) (jsonval.Path, error) {
	p := jsonval.ParsePath(s)
	if err := errors.ValidatePath(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *CLI) keySetCommand() *cobra.Command {
	var files []string
	cmd := &cobra.Command{
		Use:   "set <dir> <path> <value>",
		Short: "Set a string value",
		Args:  cobra.ExactArgs(3),

		ValidArgsFunction: c.completeKeyPaths,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := parseKeyPath(args[1])
			if err != nil {
				return err
			}
			ws, err := c.openWorkspace(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			targets := files
			if len(targets) == 0 {
				targets = ws.store.Names()
			}
			values := make(map[string]jsonval.Value, len(targets))
			for _, name := range targets {
				values[name] = jsonval.String(args[2])
			}
			written, err := ws.engine.SetValues(cmd.Context(), path, values)
			if err != nil {
				return err
			}
			printSuccess("Set %s in %d file(s)", path, len(written))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "documents to change (default all)")
	return cmd
}

func (c *CLI) keyAddCommand() *cobra.Command {
	var (
		files []string
		group bool
	)
	cmd := &cobra.Command{
		Use:   "add <dir> <path> [value]",
		Short: "Add a new key",
		Long: `Add a key to every document. Nothing is written if the key already
exists in any of them. With --group the key is added as an empty group
instead of a string.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := parseKeyPath(args[1])
			if err != nil {
				return err
			}
			value := jsonval.String("")
			if len(args) == 3 {
				value = jsonval.String(args[2])
			}
			if group {
				if len(args) == 3 {
					return errors.New(errors.ErrCodeInvalidInput, "a group takes no value")
				}
				value = jsonval.ObjectValue(jsonval.NewObject())
			}
			ws, err := c.openWorkspace(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := ws.engine.AddKey(cmd.Context(), path, value, files); err != nil {
				return err
			}
			kind := "field"
			if group {
				kind = "group"
			}
			printSuccess("Added %s %s", kind, path)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "documents to change (default all)")
	cmd.Flags().BoolVarP(&group, "group", "g", false, "add an empty group")
	return cmd
}

func (c *CLI) keyRemoveCommand() *cobra.Command {
	var (
		files []string
		yes   bool
	)
	cmd := &cobra.Command{
		Use:     "rm <dir> <path>",
		Aliases: []string{"remove"},
		Short:   "Remove a key and everything beneath it",
		Args:    cobra.ExactArgs(2),

		ValidArgsFunction: c.completeKeyPaths,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := parseKeyPath(args[1])
			if err != nil {
				return err
			}
			ws, err := c.openWorkspace(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !yes {
				ok, err := confirm(cmd.InOrStdin(), fmt.Sprintf("Remove %q from all files?", path.String()))
				if err != nil {
					return err
				}
				if !ok {
					printInfo("Cancelled")
					return nil
				}
			}
			removed, err := ws.engine.RemoveKey(cmd.Context(), path, files)
			if err != nil {
				return err
			}
			if len(removed) == 0 {
				printWarning("%s was not found", path)
				return nil
			}
			printSuccess("Removed %s from %d file(s)", path, len(removed))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "documents to change (default all)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (c *CLI) keyMoveCommand() *cobra.Command {
	var files []string
	cmd := &cobra.Command{
		Use:     "mv <dir> <path> <new-key>",
		Aliases: []string{"rename"},
		Short:   "Rename the last segment of a key",
		Args:    cobra.ExactArgs(3),

		ValidArgsFunction: c.completeKeyPaths,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := parseKeyPath(args[1])
			if err != nil {
				return err
			}
			if args[2] == path.Last() {
				printInfo("%s already has that name", path)
				return nil
			}
			ws, err := c.openWorkspace(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renamed, err := ws.engine.RenameKey(cmd.Context(), path, args[2], files)
			if err != nil {
				return err
			}
			if len(renamed) == 0 {
				printWarning("%s was not found", path)
				return nil
			}
			printSuccess("Renamed %s to %s in %d file(s)", path, args[2], len(renamed))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "documents to change (default all)")
	return cmd
}

// confirm asks a yes/no question on stdout and reads the answer from r.
// Anything but y or yes is a no.
func confirm(r io.Reader, question string) (bool, error) {
	fmt.Fprintf(stdout, "%s %s ", question, StyleDim.Render("[y/N]"))
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
