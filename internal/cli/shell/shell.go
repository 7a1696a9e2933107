// Package shell renders the navigation bar shown above every view.
package shell

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/myshop-dev/myshop/internal/cli/auth"
	"github.com/myshop-dev/myshop/internal/cli/notify"
	"github.com/myshop-dev/myshop/internal/cli/session"
)

const brandLabel = "MyShop"

// Link is one navigation entry. Badge is shown when greater than zero.
type Link struct {
	Label string
	Path  string
	Badge int
}

// Menu is the navigation available to one principal.
type Menu struct {
	Brand  Link
	Links  []Link
	Action Link
}

// Hidden reports whether the shell is suppressed on path.
func Hidden(path string) bool {
	switch strings.TrimRight(path, "/") {
	case "", "/signup":
		return true
	default:
		return false
	}
}

// Shell follows the credential store and the moderation count.
type Shell struct {
	sessions auth.SessionReader

	mu          sync.Mutex
	count       int
	unsubscribe func()
}

// New creates a shell subscribed to counter. Call Close to unsubscribe.
func New(sessions auth.SessionReader, counter notify.Counter) *Shell {
	s := &Shell{sessions: sessions}
	if counter != nil {
		s.count = counter.Count()
		s.unsubscribe = counter.Subscribe(s.setCount)
	}
	return s
}

// Close stops following the moderation count.
func (s *Shell) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *Shell) setCount(count int) {
	s.mu.Lock()
	s.count = count
	s.mu.Unlock()
}

// Badge returns the last moderation count the shell was told about.
func (s *Shell) Badge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Menu builds the navigation for the current principal.
func (s *Shell) Menu() Menu {
	p := auth.CurrentPrincipal(s.sessions)

	menu := Menu{Brand: Link{Label: brandLabel, Path: session.LandingFor(p)}}
	switch p {
	case auth.Admin:
		menu.Links = []Link{
			{Label: "Products", Path: "/admin/products"},
			{Label: "Fake Reviews", Path: "/admin/reviews", Badge: s.Badge()},
		}
		menu.Action = Link{Label: "Logout", Path: "logout"}
	case auth.User:
		menu.Links = []Link{
			{Label: "Products", Path: "/products"},
		}
		menu.Action = Link{Label: "Logout", Path: "logout"}
	case auth.Anonymous:
		menu.Action = Link{Label: "Login", Path: "/"}
	}
	return menu
}

// Render writes the navigation bar for path, or nothing where it is hidden.
func (s *Shell) Render(w io.Writer, path string) error {
	if Hidden(path) {
		return nil
	}

	menu := s.Menu()
	parts := []string{fmt.Sprintf("%s <%s>", menu.Brand.Label, menu.Brand.Path)}
	for _, link := range menu.Links {
		parts = append(parts, formatLink(link, link.Path == path))
	}
	parts = append(parts, formatLink(menu.Action, false))

	bar := strings.Join(parts, "  |  ")
	_, err := fmt.Fprintf(w, "%s\n%s\n", bar, strings.Repeat("─", len([]rune(bar))))
	return err
}

func formatLink(link Link, active bool) string {
	label := link.Label
	if link.Badge > 0 {
		label = fmt.Sprintf("%s (%d)", label, link.Badge)
	}
	if active {
		label = "*" + label
	}
	return fmt.Sprintf("%s <%s>", label, link.Path)
}
