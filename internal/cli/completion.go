package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/coursemap/pkg/status"
)

// statusCompletions lists the status codes accepted on the command line,
// each with a short description for shells that show one.
var statusCompletions = []string{
	status.CodeInProgress + "\ttaking the course",
	status.CodePassed + "\tpassed",
	status.CodeFailed + "\tfailed",
	status.CodeNone + "\tclear the record",
}

// completeStatus completes a status code argument.
func completeStatus(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, c := range statusCompletions {
		if strings.HasPrefix(c, toComplete) {
			out = append(out, c)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeSetArgs completes "status set <course-id> <status>". Course ids
// are left to the user.
func completeSetArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 1 {
		return completeStatus(cmd, args, toComplete)
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Print a shell completion script",
		Long: `Print a completion script for the given shell to stdout.

The script completes subcommands, flags and status codes, so
"coursemap status set 103 <TAB>" offers ing, pass, fail and none, as does
"coursemap check 103 --to <TAB>".

  bash        source <(coursemap completion bash)
  zsh         coursemap completion zsh > "${fpath[1]}/_coursemap"
  fish        coursemap completion fish > ~/.config/fish/completions/coursemap.fish
  powershell  coursemap completion powershell | Out-String | Invoke-Expression

For zsh, compinit must be enabled. Open a new shell afterwards.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
