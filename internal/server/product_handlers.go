package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/myshop-dev/myshop/internal/models"
)

// ImageRef is a stored image reference
type ImageRef struct {
	URL string `json:"url"`
}

// ProductResponse is a catalog entry as returned to clients
type ProductResponse struct {
	ID            string   `json:"_id"`
	Name          string   `json:"name"`
	Desc          string   `json:"desc"`
	SKU           string   `json:"sku"`
	SupplierID    string   `json:"supplierId"`
	Image         ImageRef `json:"image"`
	AverageRating float64  `json:"averageRating"`
	TotalReviews  int      `json:"totalReviews"`
}

// ProductRequest is the body for creating or replacing a product
type ProductRequest struct {
	Name       string `json:"name" validate:"required"`
	Desc       string `json:"desc"`
	SKU        string `json:"sku" validate:"required,alphanumdash"`
	SupplierID string `json:"supplierId"`
	ImageURL   string `json:"imageUrl"`
}

func toProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Desc:          p.Desc,
		SKU:           p.SKU,
		SupplierID:    p.SupplierID,
		Image:         ImageRef{URL: p.ImageURL},
		AverageRating: p.AverageRating,
		TotalReviews:  p.TotalReviews,
	}
}

// skuTaken reports whether another product already uses sku
func (s *Server) skuTaken(sku, exceptID string) (bool, error) {
	var count int64
	q := s.db.Model(&models.Product{}).Where("sku = ?", sku)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// findProduct loads the product named by the :id parameter, or responds 404
func (s *Server) findProduct(c *gin.Context) (*models.Product, bool) {
	var product models.Product
	if err := models.FindByID(s.db, c.Param("id"), &product); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondMessage(c, http.StatusNotFound, "Product not found")
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to find product")
		respondMessage(c, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	return &product, true
}

// @Summary List products
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ProductResponse
// @Router /api/products [get]
func (s *Server) listProducts(c *gin.Context) {
	var products []models.Product
	if err := s.db.Order("created_at DESC").Find(&products).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list products")
		respondMessage(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]ProductResponse, len(products))
	for i := range products {
		response[i] = toProductResponse(&products[i])
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Get product
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 404 {object} map[string]interface{}
// @Router /api/products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	product, ok := s.findProduct(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

// @Summary Create product
// @Description Add a product to the catalog (admin only)
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProductRequest true "Product"
// @Success 201 {object} ProductResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req ProductRequest
	if !s.bindJSON(c, &req) {
		return
	}

	taken, err := s.skuTaken(req.SKU, "")
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to check sku")
		respondMessage(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if taken {
		respondMessage(c, http.StatusConflict, "A product with this SKU already exists")
		return
	}

	product := &models.Product{
		Name:       strings.TrimSpace(req.Name),
		Desc:       req.Desc,
		SKU:        req.SKU,
		SupplierID: req.SupplierID,
		ImageURL:   req.ImageURL,
	}
	if err := s.db.Create(product).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create product")
		respondMessage(c, http.StatusInternalServerError, "Failed to create product")
		return
	}

	s.logger.Info().Str("product_id", product.ID).Str("sku", product.SKU).Msg("Product created")

	c.JSON(http.StatusCreated, toProductResponse(product))
}

// @Summary Update product
// @Description Replace a product's fields (admin only)
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body ProductRequest true "Product"
// @Success 200 {object} ProductResponse
// @Failure 404 {object} map[string]interface{}
// @Router /api/products/{id} [put]
func (s *Server) updateProduct(c *gin.Context) {
	product, ok := s.findProduct(c)
	if !ok {
		return
	}

	var req ProductRequest
	if !s.bindJSON(c, &req) {
		return
	}

	taken, err := s.skuTaken(req.SKU, product.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to check sku")
		respondMessage(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if taken {
		respondMessage(c, http.StatusConflict, "A product with this SKU already exists")
		return
	}

	// Ratings are owned by moderation and never written here
	if err := s.db.Model(product).Updates(map[string]interface{}{
		"name":        strings.TrimSpace(req.Name),
		"description": req.Desc,
		"sku":         req.SKU,
		"supplier_id": req.SupplierID,
		"image_url":   req.ImageURL,
	}).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update product")
		respondMessage(c, http.StatusInternalServerError, "Failed to update product")
		return
	}

	if err := models.FindByID(s.db, product.ID, product); err != nil {
		s.logger.Error().Err(err).Msg("Failed to reload product")
		respondMessage(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, toProductResponse(product))
}

// @Summary Delete product
// @Description Delete a product and its reviews (admin only)
// @Tags products
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /api/products/{id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	product, ok := s.findProduct(c)
	if !ok {
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(product).Error
	})
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", product.ID).Msg("Failed to delete product")
		respondMessage(c, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	sessionData, _ := GetSessionData(c)
	s.logger.Info().
		Str("product_id", product.ID).
		Str("deleted_by", sessionData.UserID).
		Msg("Product deleted")

	c.Status(http.StatusNoContent)
}
