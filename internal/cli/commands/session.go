package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/myshop-dev/myshop/internal/cli/auth"
	"github.com/myshop-dev/myshop/internal/cli/router"
	"github.com/myshop-dev/myshop/internal/cli/shell"
	"github.com/myshop-dev/myshop/internal/cli/userconfig"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(appFn AppFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(appFn)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.Out, "API:  %s (%s)\n", a.Config.BaseURL(), a.Config.Mode)

			sess, ok := a.Store.Read()
			if !ok {
				fmt.Fprintln(a.Out, "Not logged in. Run 'myshop login' to authenticate.")
				return nil
			}

			p := auth.PrincipalOf(sess, ok)
			fmt.Fprintf(a.Out, "User: %s\n", sess.UserID)
			fmt.Fprintf(a.Out, "Role: %s\n", p)
			if p == auth.Admin {
				fmt.Fprintf(a.Out, "Fake reviews pending: %d\n", a.Sync.Count())
			}
			return nil
		},
	}
}

// NewOpenCmd creates the open command
func NewOpenCmd(appFn AppFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "open [path]",
		Short: "Render the page at a path, e.g. /products/<id>",
		Long: `Render the page at a path.

Without a path, the last page rendered is opened again, or the landing page
of the current session.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(appFn)
			if err != nil {
				return err
			}

			path := ""
			if len(args) > 0 {
				path = args[0]
			} else if last, err := userconfig.GetLastPath(); err == nil {
				path = last
			}
			if path == "" {
				path = router.LandingFor(auth.CurrentPrincipal(a.Store))
			}
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}

			return a.Open(cmd.Context(), path)
		},
	}
}

// NewNavCmd creates the nav command
func NewNavCmd(appFn AppFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "nav",
		Short: "Show the navigation available to the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(appFn)
			if err != nil {
				return err
			}
			printMenu(a.Out, a.Shell.Menu())
			return nil
		},
	}
}

func printMenu(w io.Writer, menu shell.Menu) {
	fmt.Fprintf(w, "%s  %s\n", menu.Brand.Label, menu.Brand.Path)
	for _, link := range menu.Links {
		label := link.Label
		if link.Badge > 0 {
			label = fmt.Sprintf("%s (%d)", label, link.Badge)
		}
		fmt.Fprintf(w, "  %-18s %s\n", label, link.Path)
	}
	fmt.Fprintf(w, "  %-18s %s\n", menu.Action.Label, menu.Action.Path)
}
