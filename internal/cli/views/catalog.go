package views

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/myshop-dev/myshop/internal/cli/client"
	"github.com/myshop-dev/myshop/internal/cli/router"
)

var ratingChoices = []string{"5", "4", "3", "2", "1"}

// Products shows the banner carousel followed by the catalog.
func (v *Views) Products() router.View {
	return router.ViewFunc(func(ctx context.Context, req router.Request) (string, error) {
		var (
			banners  []client.Banner
			products []client.Product
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			banners, err = v.catalog.ListBanners(gctx)
			if err != nil {
				// Banners are optional.
				v.logger.Warn().Err(err).Msg("Failed to load banners")
			}
			return nil
		})
		g.Go(func() error {
			var err error
			products, err = v.catalog.ListProducts(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return "", err
		}

		if len(banners) > 0 {
			fmt.Fprintln(req.Out, "Featured")
			for _, b := range banners {
				fmt.Fprintf(req.Out, "  • %s  %s\n", b.Title, b.Image.URL)
			}
			fmt.Fprintln(req.Out)
		}

		heading(req.Out, "Products")
		if len(products) == 0 {
			fmt.Fprintln(req.Out, "No products yet.")
			return "", nil
		}

		w := tabwriter.NewWriter(req.Out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tRATING\tREVIEWS")
		fmt.Fprintln(w, "──\t────\t──────\t───────")
		for _, p := range products {
			fmt.Fprintf(w, "%s\t%s\t%s %.1f\t%d\n", p.ID, p.Name, stars(p.AverageRating), p.AverageRating, p.TotalReviews)
		}
		w.Flush()

		fmt.Fprintln(req.Out, "\nOpen a product with: myshop product <id>")
		return "", nil
	})
}

// ProductDetail shows one product and its genuine reviews.
func (v *Views) ProductDetail() router.View {
	return router.ViewFunc(func(ctx context.Context, req router.Request) (string, error) {
		id := req.Param("id")

		var (
			product *client.Product
			reviews []client.ReviewRecord
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			product, err = v.catalog.GetProduct(gctx, id)
			return err
		})
		g.Go(func() error {
			var err error
			reviews, err = v.catalog.ListProductReviews(gctx, id)
			return err
		})
		if err := g.Wait(); err != nil {
			return "", err
		}

		heading(req.Out, product.Name)
		fmt.Fprintf(req.Out, "%s\n\n", product.Desc)
		fmt.Fprintf(req.Out, "SKU:      %s\n", product.SKU)
		fmt.Fprintf(req.Out, "Supplier: %s\n", product.SupplierID)
		if product.Image.URL != "" {
			fmt.Fprintf(req.Out, "Image:    %s\n", product.Image.URL)
		}
		fmt.Fprintf(req.Out, "Rating:   %s %.1f (%d reviews)\n\n", stars(product.AverageRating), product.AverageRating, product.TotalReviews)

		fmt.Fprintln(req.Out, "Reviews")
		shown := 0
		for _, r := range reviews {
			if r.IsFake {
				continue
			}
			author := "anonymous"
			if r.User != nil && r.User.Email != "" {
				author = r.User.Email
			}
			fmt.Fprintf(req.Out, "  %s  %s\n    %s\n", stars(float64(r.Rating)), author, r.Review)
			shown++
		}
		if shown == 0 {
			fmt.Fprintln(req.Out, "  No reviews yet.")
		}

		fmt.Fprintf(req.Out, "\nWrite a review with: myshop review %s\n", product.ID)
		return "", nil
	})
}

// ReviewForm submits a review for the product in the path and returns to it.
func (v *Views) ReviewForm() router.View {
	return router.ViewFunc(func(ctx context.Context, req router.Request) (string, error) {
		id := req.Param("id")

		product, err := v.catalog.GetProduct(ctx, id)
		if err != nil {
			return "", err
		}
		heading(req.Out, fmt.Sprintf("Review %s", product.Name))

		idx, err := v.prompter.Select(LabelRating, ratingChoices)
		if err != nil {
			return "", err
		}
		rating, err := strconv.Atoi(ratingChoices[idx])
		if err != nil {
			return "", fmt.Errorf("invalid rating: %w", err)
		}

		text, err := v.prompter.Input(LabelReview, "")
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return "", fmt.Errorf("review text is required")
		}

		if _, err := v.catalog.SubmitReview(ctx, client.ReviewInput{
			ProductID: product.ID,
			Rating:    rating,
			Review:    text,
		}); err != nil {
			return "", fmt.Errorf("failed to submit review: %w", err)
		}

		notice(req.Out, "Review submitted")
		return "/products/" + url.PathEscape(product.ID), nil
	})
}
