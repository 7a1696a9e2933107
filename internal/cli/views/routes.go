package views

import (
	"github.com/myshop-dev/myshop/internal/cli/guard"
	"github.com/myshop-dev/myshop/internal/cli/router"
)

// Routes returns the storefront route table.
func (v *Views) Routes() []router.Route {
	return []router.Route{
		{Pattern: "/", Guard: guard.Open{}, View: v.Login()},
		{Pattern: "/signup", Guard: guard.Open{}, View: v.Signup()},

		{Pattern: "/products", Guard: guard.UserGuard{}, View: v.Products()},
		{Pattern: "/products/:id", Guard: guard.UserGuard{}, View: v.ProductDetail()},
		{Pattern: "/reviews/:id", Guard: guard.UserGuard{}, View: v.ReviewForm()},

		{Pattern: "/admin/products", Guard: guard.AdminGuard{}, View: v.AdminProducts()},
		{Pattern: "/admin/add-product", Guard: guard.AdminGuard{}, View: v.AddProduct()},
		{Pattern: "/admin/add-product/:id", Guard: guard.AdminGuard{}, View: v.AddProduct()},
		{Pattern: "/admin/reviews", Guard: guard.AdminGuard{}, View: v.AdminReviews()},
		{Pattern: "/admin/banner-upload", Guard: guard.AdminGuard{}, View: v.BannerUpload()},
	}
}
