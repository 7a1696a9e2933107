package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/myshop-dev/myshop/internal/cli/config"
	"github.com/myshop-dev/myshop/internal/cli/userconfig"
	"github.com/myshop-dev/myshop/internal/cli/views"
)

// NewSelectAPICmd creates the select-api command
func NewSelectAPICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select-api [local|production]",
		Short: "Select the API deployment to use for commands",
		Long: `Select the API deployment to use for commands.

If no mode is provided, an interactive prompt will be shown.
MYSHOP_MODE, when set, takes precedence over the saved choice.

Examples:
  $ myshop select-api              # Interactive selection
  $ myshop select-api production   # Use MYSHOP_PROD_API`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var mode string
			if len(args) > 0 {
				mode = args[0]
			}
			return runSelectAPI(cmd.OutOrStdout(), views.TerminalPrompter{}, mode)
		},
	}

	return cmd
}

func runSelectAPI(out io.Writer, prompter views.Prompter, mode string) error {
	if mode == "" {
		items := make([]string, len(config.Modes))
		for i, m := range config.Modes {
			items[i] = string(m)
		}

		idx, err := prompter.Select("Select an API", items)
		if err != nil {
			return fmt.Errorf("API selection cancelled: %w", err)
		}
		mode = items[idx]
	}

	selected, err := parseMode(mode)
	if err != nil {
		return err
	}

	if err := userconfig.SetMode(string(selected)); err != nil {
		return fmt.Errorf("failed to save selected API: %w", err)
	}

	fmt.Fprintf(out, "Selected API: %s\n", selected)
	if env := os.Getenv("MYSHOP_MODE"); env != "" && !strings.EqualFold(env, string(selected)) {
		fmt.Fprintf(out, "⚠ MYSHOP_MODE=%s is set and takes precedence\n", env)
	}
	return nil
}

func parseMode(mode string) (config.Mode, error) {
	for _, m := range config.Modes {
		if strings.EqualFold(mode, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown API mode '%s', must be local or production", mode)
}
