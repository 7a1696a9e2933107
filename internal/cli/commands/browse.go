package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/myshop-dev/myshop/internal/cli/app"
	"github.com/myshop-dev/myshop/internal/cli/auth"
	"github.com/myshop-dev/myshop/internal/cli/router"
	"github.com/myshop-dev/myshop/internal/cli/views"
)

const (
	quitLabel    = "Quit"
	logoutAction = "logout"
)

// NewBrowseCmd creates the browse command
func NewBrowseCmd(appFn AppFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the storefront interactively",
		Long: `Browse the storefront interactively.

Starts at the landing page of the current session and offers the navigation
links after every page.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(appFn)
			if err != nil {
				return err
			}
			return runBrowse(cmd, a)
		},
	}
}

func runBrowse(cmd *cobra.Command, a *app.App) error {
	ctx := cmd.Context()
	path := router.LandingFor(auth.CurrentPrincipal(a.Store))

	for {
		if err := a.Open(ctx, path); err != nil {
			if errors.Is(err, views.ErrCancelled) {
				return nil
			}
			// Show the problem and fall back to the menu.
			fmt.Fprintf(a.Out, "\n%v\n", err)
		}

		menu := a.Shell.Menu()
		items := []string{}
		paths := []string{}
		for _, link := range menu.Links {
			label := link.Label
			if link.Badge > 0 {
				label = fmt.Sprintf("%s (%d)", label, link.Badge)
			}
			items = append(items, label)
			paths = append(paths, link.Path)
		}
		items = append(items, menu.Action.Label, quitLabel)
		paths = append(paths, menu.Action.Path, "")

		fmt.Fprintln(a.Out)
		idx, err := a.Views.Prompter().Select("Go to", items)
		if err != nil {
			if errors.Is(err, views.ErrCancelled) {
				return nil
			}
			return err
		}

		switch {
		case items[idx] == quitLabel:
			return nil
		case paths[idx] == logoutAction:
			next, err := a.Logout()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.Out, "✓ Logged out")
			path = next
		default:
			path = paths[idx]
		}
	}
}
