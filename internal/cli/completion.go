package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/AbelMSG89/json-synchronized/pkg/keytree"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for jsonsync.

To load completions:

Bash:
  $ source <(jsonsync completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ jsonsync completion bash > /etc/bash_completion.d/jsonsync
  # macOS:
  $ jsonsync completion bash > $(brew --prefix)/etc/bash_completion.d/jsonsync

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ jsonsync completion zsh > "${fpath[1]}/_jsonsync"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ jsonsync completion fish | source

  # To load completions for each session, execute once:
  $ jsonsync completion fish > ~/.config/fish/completions/jsonsync.fish

PowerShell:
  PS> jsonsync completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> jsonsync completion powershell > jsonsync.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeKeyPaths completes the <path> argument that follows <dir> with
// the dotted paths found in the directory's documents.
func (c *CLI) completeKeyPaths(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return nil, cobra.ShellCompDirectiveFilterDirs
	case 1:
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	// Completion output must stay clean.
	quiet := &CLI{Logger: log.New(io.Discard), configPath: c.configPath, getenv: c.getenv}
	ws, err := quiet.openWorkspace(cmd.Context(), args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, r := range keytree.Flatten(keytree.Merge(ws.store.Bodies()).Rows, nil) {
		if r.Kind == keytree.RowAdd {
			continue
		}
		p := r.Path.String()
		if strings.HasPrefix(p, toComplete) {
			out = append(out, p)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
