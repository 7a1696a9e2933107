package commands

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/myshop-dev/myshop/internal/cli/views"
)

// NewProductsCmd creates the products command
func NewProductsCmd(appFn AppFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return openPath(cmd, appFn, "/products", nil, false)
		},
	}
}

// NewProductCmd creates the product command
func NewProductCmd(appFn AppFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show a product and its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return openPath(cmd, appFn, "/products/"+url.PathEscape(args[0]), nil, false)
		},
	}
}

// NewReviewCmd creates the review command
func NewReviewCmd(appFn AppFunc) *cobra.Command {
	var rating int
	var text string

	cmd := &cobra.Command{
		Use:   "review <product-id>",
		Short: "Review a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answers := map[string]string{views.LabelReview: text}
			if rating != 0 {
				answers[views.LabelRating] = strconv.Itoa(rating)
			}
			return openPath(cmd, appFn, "/reviews/"+url.PathEscape(args[0]), answers, false)
		},
	}

	cmd.Flags().IntVar(&rating, "rating", 0, "Rating from 1 to 5 (will prompt if not provided)")
	cmd.Flags().StringVar(&text, "text", "", "Review text (will prompt if not provided)")

	return cmd
}
