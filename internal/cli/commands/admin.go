package commands

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/myshop-dev/myshop/internal/cli/views"
)

// NewAdminCmd creates the admin command group
func NewAdminCmd(appFn AppFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage products, reviews and banners (admins only)",
	}

	cmd.AddCommand(newAdminProductsCmd(appFn))
	cmd.AddCommand(newAddProductCmd(appFn))
	cmd.AddCommand(newDeleteProductCmd(appFn))
	cmd.AddCommand(newAdminReviewsCmd(appFn))
	cmd.AddCommand(newDeleteReviewCmd(appFn))
	cmd.AddCommand(newBannerUploadCmd(appFn))

	return cmd
}

func newAdminProductsCmd(appFn AppFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List products for management",
		RunE: func(cmd *cobra.Command, args []string) error {
			return openPath(cmd, appFn, "/admin/products", nil, false)
		},
	}
}

func newAddProductCmd(appFn AppFunc) *cobra.Command {
	var name, desc, sku, supplierID, imageURL string

	cmd := &cobra.Command{
		Use:   "add-product [id]",
		Short: "Add a product, or edit the product with the given id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/admin/add-product"
			if len(args) > 0 {
				path += "/" + url.PathEscape(args[0])
			}
			return openPath(cmd, appFn, path, map[string]string{
				views.LabelProductName: name,
				views.LabelProductDesc: desc,
				views.LabelProductSKU:  sku,
				views.LabelSupplierID:  supplierID,
				views.LabelImageURL:    imageURL,
			}, false)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Product name")
	cmd.Flags().StringVar(&desc, "desc", "", "Description")
	cmd.Flags().StringVar(&sku, "sku", "", "Stock keeping unit")
	cmd.Flags().StringVar(&supplierID, "supplier", "", "Supplier ID")
	cmd.Flags().StringVar(&imageURL, "image", "", "Image URL")

	return cmd
}

func newDeleteProductCmd(appFn AppFunc) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete-product <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := withQuery("/admin/products", url.Values{"delete": {args[0]}})
			return openPath(cmd, appFn, path, nil, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newAdminReviewsCmd(appFn AppFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "reviews",
		Short: "List reviews flagged as fake",
		RunE: func(cmd *cobra.Command, args []string) error {
			return openPath(cmd, appFn, "/admin/reviews", nil, false)
		},
	}
}

func newDeleteReviewCmd(appFn AppFunc) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete-review <id>",
		Short: "Delete a flagged review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := withQuery("/admin/reviews", url.Values{"delete": {args[0]}})
			return openPath(cmd, appFn, path, nil, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newBannerUploadCmd(appFn AppFunc) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "banner-upload <file>",
		Short: "Upload an image as a carousel banner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answers := map[string]string{
				views.LabelBannerFile:  args[0],
				views.LabelBannerTitle: title,
			}
			return openPath(cmd, appFn, "/admin/banner-upload", answers, false)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Banner title")

	return cmd
}
