package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the session triple returned by login and register.
type LoginResponse struct {
	Token  string `json:"token"`
	Role   string `json:"role"`
	UserID string `json:"userId"`
}

// RegisterRequest represents the signup request body
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	Password  string `json:"password"`
}

// RegisterResponse wraps the new account's session triple.
type RegisterResponse struct {
	User LoginResponse `json:"user"`
}

// Image is a stored image reference.
type Image struct {
	URL string `json:"url"`
}

// Product is a catalog entry.
type Product struct {
	ID            string  `json:"_id"`
	Name          string  `json:"name"`
	Desc          string  `json:"desc"`
	SKU           string  `json:"sku"`
	SupplierID    string  `json:"supplierId"`
	Image         Image   `json:"image"`
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int     `json:"totalReviews"`
}

// ProductInput is the body for creating or updating a product.
type ProductInput struct {
	Name       string `json:"name"`
	Desc       string `json:"desc"`
	SKU        string `json:"sku"`
	SupplierID string `json:"supplierId"`
	ImageURL   string `json:"imageUrl,omitempty"`
}

// ProductRef is the populated product of a review.
type ProductRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// UserRef is the populated author of a review.
type UserRef struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

// ReviewRecord is a review as returned by the API.
type ReviewRecord struct {
	ID        string      `json:"_id"`
	Product   *ProductRef `json:"productId"`
	User      *UserRef    `json:"userId"`
	Review    string      `json:"review"`
	Rating    int         `json:"rating"`
	IPAddress string      `json:"ipAddress"`
	IsFake    bool        `json:"isFake"`
	CreatedAt time.Time   `json:"createdAt"`
}

// ReviewInput is the body for submitting a review.
type ReviewInput struct {
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Review    string `json:"review"`
}

// Banner is a carousel slide.
type Banner struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
	Image Image  `json:"image"`
}

// Login exchanges credentials for a session triple
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.Post(ctx, "/users/login", LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns its session triple
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.Post(ctx, "/users/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListProducts returns the catalog
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.Get(ctx, "/products", &products); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct returns one product by ID
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := c.Get(ctx, "/products/"+url.PathEscape(id), &product); err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// CreateProduct adds a product (admin only)
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	var product Product
	if err := c.Post(ctx, "/products", in, &product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

// UpdateProduct replaces a product's fields (admin only)
func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error) {
	var product Product
	if err := c.Put(ctx, "/products/"+url.PathEscape(id), in, &product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

// DeleteProduct removes a product (admin only)
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if err := c.Delete(ctx, "/products/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// ListProductReviews returns every review of a product, flagged ones included
func (c *Client) ListProductReviews(ctx context.Context, productID string) ([]ReviewRecord, error) {
	var reviews []ReviewRecord
	if err := c.Get(ctx, "/reviews/"+url.PathEscape(productID), &reviews); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// SubmitReview posts a review for a product
func (c *Client) SubmitReview(ctx context.Context, in ReviewInput) (*ReviewRecord, error) {
	var review ReviewRecord
	if err := c.Post(ctx, "/reviews", in, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// ListFakeReviews returns the reviews awaiting moderation (admin only)
func (c *Client) ListFakeReviews(ctx context.Context) ([]ReviewRecord, error) {
	var reviews []ReviewRecord
	if err := c.Get(ctx, "/admin/fake-reviews", &reviews); err != nil {
		return nil, fmt.Errorf("failed to list fake reviews: %w", err)
	}
	return reviews, nil
}

// DeleteReview removes a review (admin only)
func (c *Client) DeleteReview(ctx context.Context, id string) error {
	if err := c.Delete(ctx, "/reviews/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

// ListBanners returns the carousel slides
func (c *Client) ListBanners(ctx context.Context) ([]Banner, error) {
	var banners []Banner
	if err := c.Get(ctx, "/banners", &banners); err != nil {
		return nil, fmt.Errorf("failed to list banners: %w", err)
	}
	return banners, nil
}

// UploadBanner uploads an image as a new carousel slide (admin only)
func (c *Client) UploadBanner(ctx context.Context, title, fileName string, image io.Reader) (*Banner, error) {
	var banner Banner
	fields := map[string]string{"title": title}
	if err := c.Upload(ctx, "/banners", fields, "image", fileName, image, &banner); err != nil {
		return nil, fmt.Errorf("failed to upload banner: %w", err)
	}
	return &banner, nil
}
