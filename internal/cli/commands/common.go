package commands

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/myshop-dev/myshop/internal/cli/app"
	"github.com/myshop-dev/myshop/internal/cli/views"
)

// AppFunc returns the application wired for the running command.
type AppFunc func() (*app.App, error)

// getApp resolves the application or explains why it could not be built.
func getApp(appFn AppFunc) (*app.App, error) {
	a, err := appFn()
	if err != nil {
		return nil, fmt.Errorf("failed to start: %w", err)
	}
	if a == nil {
		return nil, errors.New("application not initialized")
	}
	return a, nil
}

// openPath navigates to path, answering prompts from answers first.
func openPath(cmd *cobra.Command, appFn AppFunc, path string, answers map[string]string, assumeYes bool) error {
	a, err := getApp(appFn)
	if err != nil {
		return err
	}

	if len(answers) > 0 || assumeYes {
		prompter := views.WithAnswers(a.Views.Prompter(), answers)
		prompter.AssumeYes = assumeYes
		a.Views.SetPrompter(prompter)
	}

	return a.Open(cmd.Context(), path)
}

func withQuery(path string, values url.Values) string {
	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			delete(values, key)
		}
	}
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}
