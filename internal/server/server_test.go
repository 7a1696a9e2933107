package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myshop-dev/myshop/internal/config"
	"github.com/myshop-dev/myshop/internal/models"
	"github.com/myshop-dev/myshop/internal/seed"
)

type testServer struct {
	*Server
	uploadDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := models.Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = models.Close(db) })

	_, err = seed.Admin(db, "admin@myshop.test", "secret")
	require.NoError(t, err)

	uploadDir := t.TempDir()
	cfg := &config.Config{
		Server:  config.ServerConfig{Port: "0", CORSOrigins: []string{"http://localhost:5173"}},
		Auth:    config.AuthConfig{JWTSecret: "test-secret"},
		Storage: config.StorageConfig{UploadDir: uploadDir},
	}

	srv, err := NewWithDB(cfg, db, zerolog.Nop(), "test")
	require.NoError(t, err)
	return &testServer{Server: srv, uploadDir: uploadDir}
}

func TestNewWithDBRejectsUnusableOrigins(t *testing.T) {
	db, err := models.Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = models.Close(db) })

	tests := []struct {
		name    string
		origins []string
		want    string
	}{
		{name: "none", origins: nil, want: "all origins disabled"},
		{name: "missing scheme", origins: []string{"shop.test"}, want: "bad origin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Server:  config.ServerConfig{CORSOrigins: tt.origins},
				Auth:    config.AuthConfig{JWTSecret: "test-secret"},
				Storage: config.StorageConfig{UploadDir: t.TempDir()},
			}

			var srv *Server
			require.NotPanics(t, func() {
				srv, err = NewWithDB(cfg, db, zerolog.Nop(), "test")
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Nil(t, srv)
		})
	}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (ts *testServer) login(t *testing.T, email, password string) SessionResponse {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/users/login", "", LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[SessionResponse](t, w)
}

func (ts *testServer) register(t *testing.T, email string) SessionResponse {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/users/register", "", RegisterRequest{
		FirstName: "Sam",
		LastName:  "Shopper",
		Email:     email,
		Mobile:    "0123456789",
		Password:  "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[RegisterResponse](t, w).User
}

func (ts *testServer) createProduct(t *testing.T, token, name, sku string) ProductResponse {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/products", token, ProductRequest{Name: name, SKU: sku})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[ProductResponse](t, w)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "online", decode[map[string]any](t, w)["status"])
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	session := ts.login(t, "Admin@MyShop.test", "secret")
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "admin", session.Role)
	assert.NotEmpty(t, session.UserID)

	w := ts.do(t, http.MethodPost, "/api/users/login", "", LoginRequest{Email: "admin@myshop.test", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decode[map[string]string](t, w)["message"])

	w = ts.do(t, http.MethodPost, "/api/users/login", "", LoginRequest{Email: "nobody@myshop.test", Password: "secret"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/api/users/login", "", LoginRequest{Email: "admin@myshop.test"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "password is required", decode[map[string]string](t, w)["message"])
}

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	session := ts.register(t, "sam@myshop.test")
	assert.Equal(t, "user", session.Role)

	w := ts.do(t, http.MethodGet, "/api/users/me", session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[UserDetail](t, w)
	assert.Equal(t, "sam@myshop.test", me.Email)
	assert.Equal(t, "Sam", me.FirstName)

	w = ts.do(t, http.MethodPost, "/api/users/register", "", RegisterRequest{
		FirstName: "Sam", LastName: "Again", Email: "SAM@myshop.test", Mobile: "1", Password: "secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already registered", decode[map[string]string](t, w)["message"])

	w = ts.do(t, http.MethodPost, "/api/users/register", "", RegisterRequest{
		LastName: "X", Email: "x@myshop.test", Mobile: "1", Password: "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "firstName is required", decode[map[string]string](t, w)["message"])
}

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Token abc"},
		{name: "invalid token", header: "Bearer abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			ts.Handler().ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.NotEmpty(t, decode[map[string]string](t, w)["message"])
		})
	}
}

func TestRoleEnforcement(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin@myshop.test", "secret")
	shopper := ts.register(t, "sam@myshop.test")
	product := ts.createProduct(t, admin.Token, "Kettle", "K-1")

	w := ts.do(t, http.MethodPost, "/api/products", shopper.Token, ProductRequest{Name: "Toaster", SKU: "T-1"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", decode[map[string]string](t, w)["message"])

	w = ts.do(t, http.MethodGet, "/api/admin/fake-reviews", shopper.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Reviews are written by shoppers only
	w = ts.do(t, http.MethodPost, "/api/reviews", admin.Token, ReviewRequest{ProductID: product.ID, Rating: 5, Review: "mine"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProductCRUD(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin@myshop.test", "secret")

	product := ts.createProduct(t, admin.Token, "Kettle", "K-1")
	assert.Equal(t, "Kettle", product.Name)
	assert.Zero(t, product.TotalReviews)

	w := ts.do(t, http.MethodPost, "/api/products", admin.Token, ProductRequest{Name: "Other", SKU: "K-1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodPost, "/api/products", admin.Token, ProductRequest{Name: "Bad", SKU: "has space"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["message"], "sku")

	w = ts.do(t, http.MethodPut, "/api/products/"+product.ID, admin.Token, ProductRequest{
		Name: "Kettle Pro", Desc: "Faster", SKU: "K-1", ImageURL: "/uploads/k.png",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[ProductResponse](t, w)
	assert.Equal(t, "Kettle Pro", updated.Name)
	assert.Equal(t, "Faster", updated.Desc)
	assert.Equal(t, "/uploads/k.png", updated.Image.URL)

	w = ts.do(t, http.MethodGet, "/api/products", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]ProductResponse](t, w), 1)

	w = ts.do(t, http.MethodDelete, "/api/products/"+product.ID, admin.Token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/products/"+product.ID, admin.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", decode[map[string]string](t, w)["message"])
}

func TestReviewModerationFlow(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin@myshop.test", "secret")
	shopper := ts.register(t, "sam@myshop.test")
	product := ts.createProduct(t, admin.Token, "Kettle", "K-1")

	w := ts.do(t, http.MethodPost, "/api/reviews", shopper.Token, ReviewRequest{ProductID: product.ID, Rating: 4, Review: "Boils fast"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[ReviewResponse](t, w)
	assert.False(t, first.IsFake)
	assert.Equal(t, "Kettle", first.Product.Name)

	// A second review of the same product by the same account is fake
	w = ts.do(t, http.MethodPost, "/api/reviews", shopper.Token, ReviewRequest{ProductID: product.ID, Rating: 1, Review: "Again"})
	require.Equal(t, http.StatusCreated, w.Code)
	second := decode[ReviewResponse](t, w)
	assert.True(t, second.IsFake)

	w = ts.do(t, http.MethodGet, "/api/reviews/"+product.ID, shopper.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	reviews := decode[[]ReviewResponse](t, w)
	assert.Len(t, reviews, 2)
	for _, r := range reviews {
		assert.Equal(t, "sam@myshop.test", r.User.Email)
	}

	w = ts.do(t, http.MethodGet, "/api/products/"+product.ID, shopper.Token, nil)
	p := decode[ProductResponse](t, w)
	assert.Equal(t, 1, p.TotalReviews)
	assert.InDelta(t, 4.0, p.AverageRating, 0.001)

	w = ts.do(t, http.MethodGet, "/api/admin/fake-reviews", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	fake := decode[[]ReviewResponse](t, w)
	require.Len(t, fake, 1)
	assert.Equal(t, second.ID, fake[0].ID)

	w = ts.do(t, http.MethodDelete, "/api/reviews/"+second.ID, admin.Token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/admin/fake-reviews", admin.Token, nil)
	assert.Empty(t, decode[[]ReviewResponse](t, w))

	w = ts.do(t, http.MethodDelete, "/api/reviews/"+second.ID, admin.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPost, "/api/admin/moderation/sweep", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, w)["flagged"])
}

func TestReviewValidation(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin@myshop.test", "secret")
	shopper := ts.register(t, "sam@myshop.test")
	product := ts.createProduct(t, admin.Token, "Kettle", "K-1")

	tests := []struct {
		name   string
		req    ReviewRequest
		status int
		msg    string
	}{
		{name: "rating too high", req: ReviewRequest{ProductID: product.ID, Rating: 6, Review: "x"}, status: http.StatusBadRequest, msg: "rating must be at most 5"},
		{name: "missing rating", req: ReviewRequest{ProductID: product.ID, Review: "x"}, status: http.StatusBadRequest, msg: "rating must be at least 1"},
		{name: "missing text", req: ReviewRequest{ProductID: product.ID, Rating: 3}, status: http.StatusBadRequest, msg: "review is required"},
		{name: "unknown product", req: ReviewRequest{ProductID: "nope", Rating: 3, Review: "x"}, status: http.StatusNotFound, msg: "Product not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/reviews", shopper.Token, tt.req)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.msg, decode[map[string]string](t, w)["message"])
		})
	}
}

func uploadRequest(t *testing.T, token, title, fileName string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if title != "" {
		require.NoError(t, writer.WriteField("title", title))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("image", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/banners", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestBannerUpload(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin@myshop.test", "secret")

	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, uploadRequest(t, admin.Token, "Summer sale", "sale.PNG", []byte("png-bytes")))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	banner := decode[BannerResponse](t, w)
	assert.Equal(t, "Summer sale", banner.Title)
	assert.True(t, strings.HasPrefix(banner.Image.URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(banner.Image.URL, ".png"))

	stored, err := os.ReadFile(filepath.Join(ts.uploadDir, filepath.Base(banner.Image.URL)))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), stored)

	// The image is served from the upload directory
	w = ts.do(t, http.MethodGet, banner.Image.URL, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/banners", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]BannerResponse](t, w), 1)
}

func TestBannerUploadRejects(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(t, "admin@myshop.test", "secret")

	tests := []struct {
		name     string
		title    string
		fileName string
		msg      string
	}{
		{name: "missing title", fileName: "a.png", msg: "title is required"},
		{name: "missing image", title: "Sale", msg: "image is required"},
		{name: "not an image", title: "Sale", fileName: "notes.txt", msg: "image must be a png, jpg, gif or webp file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ts.Handler().ServeHTTP(w, uploadRequest(t, admin.Token, tt.title, tt.fileName, []byte("data")))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.msg, decode[map[string]string](t, w)["message"])
		})
	}
}
