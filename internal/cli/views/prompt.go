package views

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("cancelled")

// Prompt labels. Commands prefill answers by these labels.
const (
	LabelEmail           = "Email"
	LabelPassword        = "Password"
	LabelFirstName       = "First name"
	LabelLastName        = "Last name"
	LabelMobile          = "Mobile number"
	LabelConfirmPassword = "Confirm password"
	LabelRating          = "Rating (1-5)"
	LabelReview          = "Review"
	LabelProductName     = "Name"
	LabelProductDesc     = "Description"
	LabelProductSKU      = "SKU"
	LabelSupplierID      = "Supplier ID"
	LabelImageURL        = "Image URL"
	LabelBannerTitle     = "Banner title"
	LabelBannerFile      = "Image file"
)

// Prompter collects input for the form views.
type Prompter interface {
	Input(label, defaultValue string) (string, error)
	Secret(label string) (string, error)
	Confirm(label string) (bool, error)
	Select(label string, items []string) (int, error)
}

// TerminalPrompter prompts on the controlling terminal.
type TerminalPrompter struct{}

func (TerminalPrompter) Input(label, defaultValue string) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   defaultValue,
		AllowEdit: defaultValue != "",
	}
	value, err := prompt.Run()
	if err != nil {
		return "", promptError(err)
	}
	return value, nil
}

func (TerminalPrompter) Secret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%s is required in non-interactive mode", strings.ToLower(label))
	}

	fmt.Fprintf(os.Stderr, "%s: ", label)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return string(secret), nil
}

func (TerminalPrompter) Confirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, promptError(err)
	}
	return true, nil
}

func (TerminalPrompter) Select(label string, items []string) (int, error) {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ . | cyan }}",
		Inactive: "  {{ . }}",
		Selected: "{{ . | green }}",
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     items,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return 0, promptError(err)
	}
	return index, nil
}

func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return ErrCancelled
	}
	return fmt.Errorf("prompt failed: %w", err)
}

// Prefilled answers prompts from a fixed set of values keyed by label and
// falls back to next for anything else. With a nil next, unanswered inputs
// are left empty and unanswered selections fail.
type Prefilled struct {
	Answers   map[string]string
	AssumeYes bool
	next      Prompter
}

// WithAnswers returns a prompter that answers labels found in answers
// without asking.
func WithAnswers(next Prompter, answers map[string]string) *Prefilled {
	filtered := make(map[string]string, len(answers))
	for label, value := range answers {
		if value != "" {
			filtered[label] = value
		}
	}
	return &Prefilled{Answers: filtered, next: next}
}

func (p *Prefilled) Input(label, defaultValue string) (string, error) {
	if value, ok := p.Answers[label]; ok {
		return value, nil
	}
	if p.next == nil {
		return defaultValue, nil
	}
	return p.next.Input(label, defaultValue)
}

func (p *Prefilled) Secret(label string) (string, error) {
	if value, ok := p.Answers[label]; ok {
		return value, nil
	}
	if p.next == nil {
		return "", nil
	}
	return p.next.Secret(label)
}

// Confirm answers yes without asking when AssumeYes is set.
func (p *Prefilled) Confirm(label string) (bool, error) {
	if p.AssumeYes {
		return true, nil
	}
	if p.next == nil {
		return false, nil
	}
	return p.next.Confirm(label)
}

func (p *Prefilled) Select(label string, items []string) (int, error) {
	if value, ok := p.Answers[label]; ok {
		for i, item := range items {
			if item == value {
				return i, nil
			}
		}
		return 0, fmt.Errorf("%q is not a valid choice for %s", value, strings.ToLower(label))
	}
	if p.next == nil {
		return 0, fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return p.next.Select(label, items)
}
