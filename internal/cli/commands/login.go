package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/myshop-dev/myshop/internal/cli/app"
	"github.com/myshop-dev/myshop/internal/cli/views"
)

// NewLoginCmd creates the login command
func NewLoginCmd(appFn AppFunc) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the storefront",
		Long: `Log in to the storefront.

Administrators land on the product manager, shoppers on the catalog.
If a session is already stored, its landing page is shown instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, appFn, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set MYSHOP_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set MYSHOP_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(cmd *cobra.Command, appFn AppFunc, email, password string) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("MYSHOP_EMAIL")
	}
	if password == "" {
		password = os.Getenv("MYSHOP_PASSWORD")
	}

	return openPath(cmd, appFn, "/", map[string]string{
		views.LabelEmail:    email,
		views.LabelPassword: password,
	}, false)
}

// NewSignupCmd creates the signup command
func NewSignupCmd(appFn AppFunc) *cobra.Command {
	var firstName, lastName, email, mobile, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a shopper account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("MYSHOP_PASSWORD")
			}
			answers := map[string]string{
				views.LabelFirstName: firstName,
				views.LabelLastName:  lastName,
				views.LabelEmail:     email,
				views.LabelMobile:    mobile,
				views.LabelPassword:  password,
			}
			// A password given non-interactively is its own confirmation.
			if password != "" {
				answers[views.LabelConfirmPassword] = password
			}
			return openPath(cmd, appFn, "/signup", answers, false)
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&mobile, "mobile", "", "Mobile number (digits only)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set MYSHOP_PASSWORD, will prompt if not provided)")

	return cmd
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(appFn AppFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(appFn)
			if err != nil {
				return err
			}
			return runLogout(a)
		},
	}
}

func runLogout(a *app.App) error {
	landing, err := a.Logout()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.Out, "✓ Logged out")
	fmt.Fprintf(a.Out, "Landing: %s (log in again with: myshop login)\n", landing)
	return nil
}
