package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/myshop-dev/myshop/internal/cli/app"
	"github.com/myshop-dev/myshop/internal/cli/commands"
	"github.com/myshop-dev/myshop/internal/cli/config"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the command tree. newApp is called once, before the
// first command that needs the storefront runs.
func NewRootCmd(newApp func() (*app.App, error)) *cobra.Command {
	var (
		application *app.App
		appErr      error
	)

	getApp := func() (*app.App, error) {
		return application, appErr
	}

	rootCmd := &cobra.Command{
		Use:   "myshop",
		Short: "MyShop - storefront client",
		Long: `MyShop CLI - Shop the catalog, write reviews and moderate the store.

Shoppers browse products and review them; administrators manage products,
banners and the reviews flagged as fake.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip wiring for commands that never talk to the API
			if !needsApp(cmd) || application != nil {
				return nil
			}

			application, appErr = newApp()
			if appErr != nil {
				return appErr
			}

			// Check the stored session once per process
			application.Bootstrap(cmd.Context())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if application != nil {
				application.Close()
			}
		},
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:         "version",
		Short:       "Print the version number",
		Annotations: map[string]string{skipApp: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "myshop version %s\n", version)
		},
	})

	selectAPI := commands.NewSelectAPICmd()
	selectAPI.Annotations = map[string]string{skipApp: "true"}

	rootCmd.AddCommand(commands.NewLoginCmd(getApp))
	rootCmd.AddCommand(commands.NewSignupCmd(getApp))
	rootCmd.AddCommand(commands.NewLogoutCmd(getApp))
	rootCmd.AddCommand(commands.NewWhoamiCmd(getApp))
	rootCmd.AddCommand(commands.NewOpenCmd(getApp))
	rootCmd.AddCommand(commands.NewNavCmd(getApp))
	rootCmd.AddCommand(commands.NewBrowseCmd(getApp))
	rootCmd.AddCommand(commands.NewProductsCmd(getApp))
	rootCmd.AddCommand(commands.NewProductCmd(getApp))
	rootCmd.AddCommand(commands.NewReviewCmd(getApp))
	rootCmd.AddCommand(commands.NewImageCmd(getApp))
	rootCmd.AddCommand(commands.NewAdminCmd(getApp))
	rootCmd.AddCommand(selectAPI)

	return rootCmd
}

const skipApp = "myshop/skip-app"

func needsApp(cmd *cobra.Command) bool {
	if cmd.Annotations[skipApp] == "true" {
		return false
	}
	// Command groups such as `admin` only print help.
	return cmd.Runnable()
}

// defaultApp wires the client from the process environment.
func defaultApp() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(app.Options{
		Config:       cfg,
		Out:          os.Stdout,
		ErrOut:       os.Stderr,
		RememberPath: true,
	})
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd(defaultApp).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
