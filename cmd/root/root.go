// Package root wires citeweave's command tree.
package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/citeweave/citeweave/cmd/extract"
	"github.com/citeweave/citeweave/cmd/validate"
)

// NewRootCommand creates the root command for citeweave.
func NewRootCommand() *cobra.Command {
	var zshCompletion bool

	cmd := &cobra.Command{
		Use:   "citeweave",
		Short: "Validate and extract cross-document Markdown citations",
		Long: `citeweave validates outgoing links in a Markdown document against a scoped
directory tree and, on demand, extracts the referenced content into a
deduplicated JSON payload suitable for seeding prompts or build artifacts.`,
		Version: "1.0.0",
		Run: func(cmd *cobra.Command, args []string) {
			if zshCompletion {
				if err := cmd.Root().GenZshCompletion(os.Stdout); err != nil {
					fmt.Fprintf(os.Stderr, "Error generating zsh completion: %v\n", err)
					os.Exit(1)
				}
				return
			}
			cmd.Help()
		},
	}

	cmd.PersistentFlags().Bool("verbose", false, "Accepted but has no effect; no command reads this flag")
	cmd.PersistentFlags().Bool("quiet", false, "Accepted but has no effect; no command reads this flag")
	cmd.PersistentFlags().String("config", "", "Config file (default: .citeweave.yaml)")

	cmd.Flags().BoolVar(&zshCompletion, "zsh-completion", false, "Generate zsh completion script")

	cmd.AddCommand(validate.NewValidateCommand())
	cmd.AddCommand(extract.NewExtractCommand())
	cmd.AddCommand(newCompletionCommand())

	setupCustomCompletions(cmd)

	return cmd
}

func newCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate completion script",
		Long: `To load completions:

Bash:

  $ source <(citeweave completion bash)

Zsh:

  $ citeweave completion zsh > "${fpath[1]}/_citeweave"

fish:

  $ citeweave completion fish | source

PowerShell:

  PS> citeweave completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Run: func(cmd *cobra.Command, args []string) {
			switch args[0] {
			case "bash":
				cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
		},
	}
	return cmd
}

// setupCustomCompletions wires directory/file completion for citeweave's
// path-taking flags and arguments.
func setupCustomCompletions(cmd *cobra.Command) {
	cmd.RegisterFlagCompletionFunc("config", CompleteConfigFiles)

	for _, subCmd := range cmd.Commands() {
		switch subCmd.Name() {
		case "validate", "extract":
			subCmd.ValidArgsFunction = CompleteMarkdownFiles
			subCmd.RegisterFlagCompletionFunc("scope", CompleteDirs)
			subCmd.RegisterFlagCompletionFunc("format", CompleteOutputFormats)
			for _, nested := range subCmd.Commands() {
				nested.ValidArgsFunction = CompleteMarkdownFiles
				nested.RegisterFlagCompletionFunc("scope", CompleteDirs)
				nested.RegisterFlagCompletionFunc("format", CompleteOutputFormats)
			}
		}
	}
}

func CompleteDirs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return nil, cobra.ShellCompDirectiveFilterDirs
}

func CompleteMarkdownFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"md", "markdown"}, cobra.ShellCompDirectiveFilterFileExt
}

func CompleteConfigFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
}

func CompleteOutputFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"json", "text"}, cobra.ShellCompDirectiveNoFileComp
}
