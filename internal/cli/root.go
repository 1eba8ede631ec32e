package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/AbelMSG89/json-synchronized/pkg/buildinfo"
)

// SetVersion sets the version information displayed by --version. main
// calls it with values injected via ldflags; empty values keep the
// defaults.
func SetVersion(version, commit, date string) {
	if version != "" {
		buildinfo.Version = version
	}
	if commit != "" {
		buildinfo.Commit = commit
	}
	if date != "" {
		buildinfo.Date = date
	}
}

// Execute builds the command tree and runs it with args. Logs go to
// stderr at info level, or debug level with --verbose.
func Execute(ctx context.Context, args []string, stderr io.Writer) error {
	var verbose bool

	c := New(stderr, LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			c.SetLogLevel(LogDebug)
		}
	}
	root.SetArgs(args)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}
