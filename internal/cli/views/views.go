// Package views implements the screens behind each storefront route.
package views

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/myshop-dev/myshop/internal/cli/client"
	"github.com/myshop-dev/myshop/internal/cli/session"
)

// Sessions is the part of the session lifecycle the forms drive.
type Sessions interface {
	Login(ctx context.Context, email, password string) (session.Result, error)
	Signup(ctx context.Context, profile session.Profile) (session.Result, error)
	BootstrapRedirect() (string, bool)
}

// Catalog is the storefront API as seen by the views.
type Catalog interface {
	ListProducts(ctx context.Context) ([]client.Product, error)
	GetProduct(ctx context.Context, id string) (*client.Product, error)
	CreateProduct(ctx context.Context, in client.ProductInput) (*client.Product, error)
	UpdateProduct(ctx context.Context, id string, in client.ProductInput) (*client.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListProductReviews(ctx context.Context, productID string) ([]client.ReviewRecord, error)
	SubmitReview(ctx context.Context, in client.ReviewInput) (*client.ReviewRecord, error)
	ListFakeReviews(ctx context.Context) ([]client.ReviewRecord, error)
	DeleteReview(ctx context.Context, id string) error
	ListBanners(ctx context.Context) ([]client.Banner, error)
	UploadBanner(ctx context.Context, title, fileName string, image io.Reader) (*client.Banner, error)
}

// Refresher re-reads the moderation count after a moderation action.
type Refresher interface {
	Refresh(ctx context.Context) int
}

// Views holds the collaborators shared by every screen.
type Views struct {
	sessions   Sessions
	catalog    Catalog
	moderation Refresher
	prompter   Prompter
	files      fs.FS
	logger     zerolog.Logger
}

// New creates the view set. Banner files are read from the local file system
// unless SetFS is used.
func New(sessions Sessions, catalog Catalog, moderation Refresher, prompter Prompter, logger zerolog.Logger) *Views {
	return &Views{
		sessions:   sessions,
		catalog:    catalog,
		moderation: moderation,
		prompter:   prompter,
		logger:     logger,
	}
}

// SetPrompter replaces the prompter, e.g. with one prefilled from flags.
func (v *Views) SetPrompter(p Prompter) {
	v.prompter = p
}

// Prompter returns the current prompter.
func (v *Views) Prompter() Prompter {
	return v.prompter
}

// SetFS sets the file system banner images are read from.
func (v *Views) SetFS(files fs.FS) {
	v.files = files
}

func (v *Views) openFile(name string) (io.ReadCloser, error) {
	if v.files == nil {
		return os.Open(name)
	}
	return v.files.Open(strings.TrimPrefix(filepath.ToSlash(filepath.Clean(name)), "/"))
}

func notice(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "✓ "+format+"\n", args...)
}

func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "%s\n\n", title)
}

// fieldErrors prints a validation error one field per line, in a stable order.
func fieldErrors(w io.Writer, fields map[string]string) {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(w, "  %s: %s\n", key, fields[key])
	}
}

func stars(rating float64) string {
	full := int(rating + 0.5)
	if full > 5 {
		full = 5
	}
	if full < 0 {
		full = 0
	}
	return strings.Repeat("★", full) + strings.Repeat("☆", 5-full)
}
