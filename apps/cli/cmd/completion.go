package cmd

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
)

func newCompletionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: heredoc.Doc(`
			Generate shell completion scripts for apix.

			To load completions:

			Bash:
			  $ source <(apix completion bash)

			  # To load completions for each session, execute once:
			  # Linux:
			  $ apix completion bash > /etc/bash_completion.d/apix
			  # macOS:
			  $ apix completion bash > $(brew --prefix)/etc/bash_completion.d/apix

			Zsh:
			  # If shell completion is not already enabled in your environment,
			  # you will need to enable it. Execute the following once:
			  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

			  # To load completions for each session, execute once:
			  $ apix completion zsh > "${fpath[1]}/_apix"

			Fish:
			  $ apix completion fish | source

			  # To load completions for each session, execute once:
			  $ apix completion fish > ~/.config/fish/completions/apix.fish

			PowerShell:
			  PS> apix completion powershell | Out-String | Invoke-Expression
		`),
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args: func(cmd *cobra.Command, args []string) error {
			return usageError(cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs)(cmd, args))
		},
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
