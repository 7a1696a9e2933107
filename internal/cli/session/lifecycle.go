// Package session establishes and tears down the storefront session.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/myshop-dev/myshop/internal/cli/auth"
	"github.com/myshop-dev/myshop/internal/cli/client"
)

// Landing paths per principal.
const (
	AnonymousLanding = "/"
	UserLanding      = "/products"
	AdminLanding     = "/admin/products"
)

// LandingFor returns the page a principal is sent to after authenticating.
func LandingFor(p auth.Principal) string {
	switch p {
	case auth.Admin:
		return AdminLanding
	case auth.User:
		return UserLanding
	case auth.Anonymous:
		return AnonymousLanding
	default:
		return AnonymousLanding
	}
}

// State is where the lifecycle is in establishing a session.
type State int

const (
	Anonymous State = iota
	Authenticating
	AuthenticatedUser
	AuthenticatedAdmin
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case AuthenticatedUser:
		return "authenticated-user"
	case AuthenticatedAdmin:
		return "authenticated-admin"
	default:
		return "anonymous"
	}
}

// Authenticator is the part of the API the lifecycle needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*client.LoginResponse, error)
	Register(ctx context.Context, req client.RegisterRequest) (*client.RegisterResponse, error)
}

// Notifier is told when the session changes so derived state follows it.
type Notifier interface {
	Bootstrap(ctx context.Context)
	Reset()
}

// Result tells the caller where to go next and what to show.
type Result struct {
	Redirect string
	Notice   string
	Session  auth.Session
}

// Lifecycle runs login, signup and logout against one credential store.
type Lifecycle struct {
	store    *auth.Store
	api      Authenticator
	notifier Notifier
	validate *validator.Validate
	logger   zerolog.Logger

	mu             sync.Mutex
	authenticating bool
}

// New creates a lifecycle. notifier may be nil.
func New(store *auth.Store, api Authenticator, notifier Notifier, logger zerolog.Logger) *Lifecycle {
	return &Lifecycle{
		store:    store,
		api:      api,
		notifier: notifier,
		validate: newValidator(),
		logger:   logger,
	}
}

// State reports the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	authenticating := l.authenticating
	l.mu.Unlock()

	if authenticating {
		return Authenticating
	}
	switch auth.CurrentPrincipal(l.store) {
	case auth.Admin:
		return AuthenticatedAdmin
	case auth.User:
		return AuthenticatedUser
	default:
		return Anonymous
	}
}

// Login validates the form locally, exchanges the credentials for a session
// and stores it. Any remote failure leaves the store untouched and returns
// ErrAuthenticationFailed.
func (l *Lifecycle) Login(ctx context.Context, email, password string) (Result, error) {
	form := Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := validateForm(l.validate, form); err != nil {
		return Result{}, err
	}

	done, err := l.begin()
	if err != nil {
		return Result{}, err
	}
	defer done()

	resp, err := l.api.Login(ctx, form.Email, form.Password)
	if err != nil {
		l.logger.Debug().Err(err).Str("email", form.Email).Msg("Login rejected")
		return Result{}, ErrAuthenticationFailed
	}

	sess, err := l.establish(ctx, *resp)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Redirect: LandingFor(auth.PrincipalOf(sess, true)),
		Notice:   "You have successfully logged in!",
		Session:  sess,
	}, nil
}

// Signup validates the profile locally, registers the account and logs it
// in with the returned session.
func (l *Lifecycle) Signup(ctx context.Context, profile Profile) (Result, error) {
	profile.Email = strings.TrimSpace(profile.Email)
	profile.Mobile = strings.TrimSpace(profile.Mobile)
	if err := validateForm(l.validate, profile); err != nil {
		return Result{}, err
	}

	done, err := l.begin()
	if err != nil {
		return Result{}, err
	}
	defer done()

	resp, err := l.api.Register(ctx, client.RegisterRequest{
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Email:     profile.Email,
		Mobile:    profile.Mobile,
		Password:  profile.Password,
	})
	if err != nil {
		return Result{}, signupError(err)
	}

	sess, err := l.establish(ctx, resp.User)
	if errors.Is(err, ErrAuthenticationFailed) {
		return Result{}, &SignupError{Message: signupFailedFallback, Err: err}
	}
	if err != nil {
		return Result{}, err
	}

	return Result{
		Redirect: LandingFor(auth.PrincipalOf(sess, true)),
		Notice:   "Account created successfully",
		Session:  sess,
	}, nil
}

// BootstrapRedirect returns the landing page of an existing session, so the
// login and signup forms are skipped for authenticated users.
func (l *Lifecycle) BootstrapRedirect() (string, bool) {
	p := auth.CurrentPrincipal(l.store)
	if p == auth.Anonymous {
		return "", false
	}
	return LandingFor(p), true
}

// Logout clears the stored session and returns the anonymous landing page.
// Logging out without a session only redirects.
func (l *Lifecycle) Logout() (string, error) {
	err := l.store.Clear()
	if l.notifier != nil {
		l.notifier.Reset()
	}
	if err != nil {
		return AnonymousLanding, fmt.Errorf("failed to clear session: %w", err)
	}
	return AnonymousLanding, nil
}

// begin marks the lifecycle as authenticating; only one exchange may run.
func (l *Lifecycle) begin() (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.authenticating {
		return nil, errors.New("authentication already in progress")
	}
	l.authenticating = true

	return func() {
		l.mu.Lock()
		l.authenticating = false
		l.mu.Unlock()
	}, nil
}

// establish writes the triple from a successful exchange and re-bootstraps
// derived state for the new session. An incomplete triple is treated as a
// failed exchange; a storage failure is returned as is.
func (l *Lifecycle) establish(ctx context.Context, resp client.LoginResponse) (auth.Session, error) {
	sess := auth.Session{
		Token:  resp.Token,
		Role:   auth.Role(resp.Role),
		UserID: resp.UserID,
	}
	if !sess.Valid() {
		l.logger.Warn().Str("role", resp.Role).Msg("Incomplete session in API response")
		return auth.Session{}, ErrAuthenticationFailed
	}

	if err := l.store.Write(sess); err != nil {
		return auth.Session{}, err
	}

	if l.notifier != nil {
		l.notifier.Bootstrap(ctx)
	}

	l.logger.Info().Str("user_id", sess.UserID).Str("role", string(sess.Role)).Msg("Session established")
	return sess, nil
}

func signupError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return &SignupError{Message: apiErr.Message, Err: err}
	}
	return &SignupError{Message: signupFailedFallback, Err: err}
}
