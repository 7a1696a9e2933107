package views

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/myshop-dev/myshop/internal/cli/client"
	"github.com/myshop-dev/myshop/internal/cli/router"
)

// AdminProducts lists the catalog. With ?delete=<id> it first removes that
// product after confirmation.
func (v *Views) AdminProducts() router.View {
	return router.ViewFunc(func(ctx context.Context, req router.Request) (string, error) {
		if id := req.Query.Get("delete"); id != "" {
			ok, err := v.prompter.Confirm(fmt.Sprintf("Delete product %s", id))
			if err != nil {
				return "", err
			}
			if ok {
				if err := v.catalog.DeleteProduct(ctx, id); err != nil {
					return "", err
				}
				notice(req.Out, "Product deleted")
				// The product's reviews go with it, flagged ones included
				if v.moderation != nil {
					v.moderation.Refresh(ctx)
				}
			} else {
				fmt.Fprintln(req.Out, "Deletion cancelled.")
			}
		}

		products, err := v.catalog.ListProducts(ctx)
		if err != nil {
			return "", err
		}

		heading(req.Out, "Manage products")
		if len(products) == 0 {
			fmt.Fprintln(req.Out, "No products yet.")
			fmt.Fprintln(req.Out, "\nAdd one with: myshop admin add-product")
			return "", nil
		}

		w := tabwriter.NewWriter(req.Out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSKU\tSUPPLIER\tRATING\tREVIEWS")
		fmt.Fprintln(w, "──\t────\t───\t────────\t──────\t───────")
		for _, p := range products {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\t%d\n", p.ID, p.Name, p.SKU, p.SupplierID, p.AverageRating, p.TotalReviews)
		}
		w.Flush()
		return "", nil
	})
}

// AddProduct creates a product, or edits the one named by :id.
func (v *Views) AddProduct() router.View {
	return router.ViewFunc(func(ctx context.Context, req router.Request) (string, error) {
		id := req.Param("id")

		var current client.ProductInput
		if id != "" {
			product, err := v.catalog.GetProduct(ctx, id)
			if err != nil {
				return "", err
			}
			current = client.ProductInput{
				Name:       product.Name,
				Desc:       product.Desc,
				SKU:        product.SKU,
				SupplierID: product.SupplierID,
				ImageURL:   product.Image.URL,
			}
			heading(req.Out, fmt.Sprintf("Edit %s", product.Name))
		} else {
			heading(req.Out, "Add product")
		}

		in, err := v.productForm(current)
		if err != nil {
			return "", err
		}

		if id != "" {
			if _, err := v.catalog.UpdateProduct(ctx, id, in); err != nil {
				return "", err
			}
			notice(req.Out, "Product updated")
		} else {
			created, err := v.catalog.CreateProduct(ctx, in)
			if err != nil {
				return "", err
			}
			notice(req.Out, "Product %s created", created.ID)
		}
		return "/admin/products", nil
	})
}

func (v *Views) productForm(current client.ProductInput) (client.ProductInput, error) {
	fields := []struct {
		label    string
		dst      *string
		required bool
	}{
		{LabelProductName, &current.Name, true},
		{LabelProductDesc, &current.Desc, false},
		{LabelProductSKU, &current.SKU, true},
		{LabelSupplierID, &current.SupplierID, false},
		{LabelImageURL, &current.ImageURL, false},
	}

	var missing []string
	for _, f := range fields {
		value, err := v.prompter.Input(f.label, *f.dst)
		if err != nil {
			return client.ProductInput{}, err
		}
		*f.dst = strings.TrimSpace(value)
		if f.required && *f.dst == "" {
			missing = append(missing, strings.ToLower(f.label))
		}
	}
	if len(missing) > 0 {
		return client.ProductInput{}, fmt.Errorf("%s required", strings.Join(missing, " and "))
	}
	return current, nil
}

// AdminReviews lists the reviews flagged for moderation. With ?delete=<id>
// it first removes that review after confirmation, then re-reads the list
// and the shared moderation count.
func (v *Views) AdminReviews() router.View {
	return router.ViewFunc(func(ctx context.Context, req router.Request) (string, error) {
		if id := req.Query.Get("delete"); id != "" {
			ok, err := v.prompter.Confirm(fmt.Sprintf("Delete review %s", id))
			if err != nil {
				return "", err
			}
			if !ok {
				fmt.Fprintln(req.Out, "Deletion cancelled.")
			} else {
				if err := v.catalog.DeleteReview(ctx, id); err != nil {
					return "", err
				}
				notice(req.Out, "Review deleted")
				if v.moderation != nil {
					v.moderation.Refresh(ctx)
				}
			}
		}

		reviews, err := v.catalog.ListFakeReviews(ctx)
		if err != nil {
			return "", err
		}

		heading(req.Out, fmt.Sprintf("Fake reviews (%d)", len(reviews)))
		if len(reviews) == 0 {
			fmt.Fprintln(req.Out, "Nothing to moderate.")
			return "", nil
		}

		w := tabwriter.NewWriter(req.Out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPRODUCT\tUSER\tIP\tRATING\tREVIEW")
		fmt.Fprintln(w, "──\t───────\t────\t──\t──────\t──────")
		for _, r := range reviews {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", r.ID, productName(r.Product), userEmail(r.User), r.IPAddress, r.Rating, truncate(r.Review, 40))
		}
		w.Flush()

		fmt.Fprintln(req.Out, "\nDelete one with: myshop admin delete-review <id>")
		return "", nil
	})
}

// BannerUpload uploads an image file as a new carousel slide. ?file= and
// ?title= prefill the form.
func (v *Views) BannerUpload() router.View {
	return router.ViewFunc(func(ctx context.Context, req router.Request) (string, error) {
		heading(req.Out, "Upload banner")

		file, err := v.prompter.Input(LabelBannerFile, req.Query.Get("file"))
		if err != nil {
			return "", err
		}
		file = strings.TrimSpace(file)
		if file == "" {
			return "", fmt.Errorf("image file is required")
		}

		title, err := v.prompter.Input(LabelBannerTitle, req.Query.Get("title"))
		if err != nil {
			return "", err
		}

		f, err := v.openFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", file, err)
		}
		defer f.Close()

		banner, err := v.catalog.UploadBanner(ctx, strings.TrimSpace(title), filepath.Base(file), f)
		if err != nil {
			return "", err
		}

		notice(req.Out, "Banner uploaded: %s", banner.Image.URL)
		return "", nil
	})
}

func productName(p *client.ProductRef) string {
	if p == nil {
		return "-"
	}
	return p.Name
}

func userEmail(u *client.UserRef) string {
	if u == nil {
		return "-"
	}
	return u.Email
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
