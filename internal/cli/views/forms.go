package views

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/myshop-dev/myshop/internal/cli/router"
	"github.com/myshop-dev/myshop/internal/cli/session"
)

// Login is the anonymous landing page. An existing session skips the form.
func (v *Views) Login() router.View {
	return router.ViewFunc(func(ctx context.Context, req router.Request) (string, error) {
		if path, ok := v.sessions.BootstrapRedirect(); ok {
			return path, nil
		}

		heading(req.Out, "Login")
		if msg := req.Query.Get("notice"); msg != "" {
			fmt.Fprintln(req.Out, msg)
		}

		email, err := v.prompter.Input(LabelEmail, "")
		if err != nil {
			return "", err
		}
		password, err := v.prompter.Secret(LabelPassword)
		if err != nil {
			return "", err
		}

		res, err := v.sessions.Login(ctx, email, password)
		if err != nil {
			return "", formError(req.Out, err)
		}

		notice(req.Out, res.Notice)
		return res.Redirect, nil
	})
}

// Signup registers a new shopper and logs them in.
func (v *Views) Signup() router.View {
	return router.ViewFunc(func(ctx context.Context, req router.Request) (string, error) {
		if path, ok := v.sessions.BootstrapRedirect(); ok {
			return path, nil
		}

		heading(req.Out, "Create an account")

		var profile session.Profile
		inputs := []struct {
			label string
			dst   *string
		}{
			{LabelFirstName, &profile.FirstName},
			{LabelLastName, &profile.LastName},
			{LabelEmail, &profile.Email},
			{LabelMobile, &profile.Mobile},
		}
		for _, in := range inputs {
			value, err := v.prompter.Input(in.label, "")
			if err != nil {
				return "", err
			}
			*in.dst = value
		}

		var err error
		if profile.Password, err = v.prompter.Secret(LabelPassword); err != nil {
			return "", err
		}
		if profile.ConfirmPassword, err = v.prompter.Secret(LabelConfirmPassword); err != nil {
			return "", err
		}

		res, err := v.sessions.Signup(ctx, profile)
		if err != nil {
			return "", formError(req.Out, err)
		}

		notice(req.Out, res.Notice)
		return res.Redirect, nil
	})
}

// formError prints field-level problems before handing the error back.
func formError(w io.Writer, err error) error {
	var verr *session.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintln(w, "Please fix the following:")
		fieldErrors(w, verr.Fields)
	}
	return err
}
