package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/myshop-dev/myshop/internal/models"
	"github.com/myshop-dev/myshop/internal/moderation"
)

// ProductRef is the populated product of a review
type ProductRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// UserRef is the populated author of a review
type UserRef struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

// ReviewResponse is a review as returned to clients
type ReviewResponse struct {
	ID        string      `json:"_id"`
	Product   *ProductRef `json:"productId"`
	User      *UserRef    `json:"userId"`
	Review    string      `json:"review"`
	Rating    int         `json:"rating"`
	IPAddress string      `json:"ipAddress"`
	IsFake    bool        `json:"isFake"`
	CreatedAt time.Time   `json:"createdAt"`
}

// ReviewRequest is the body for submitting a review
type ReviewRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
	Review    string `json:"review" validate:"required"`
}

func toReviewResponse(r *models.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:        r.ID,
		Review:    r.Text,
		Rating:    r.Rating,
		IPAddress: r.IPAddress,
		IsFake:    r.IsFake,
		CreatedAt: r.CreatedAt,
	}
	if r.Product != nil {
		resp.Product = &ProductRef{ID: r.Product.ID, Name: r.Product.Name}
	} else if r.ProductID != "" {
		resp.Product = &ProductRef{ID: r.ProductID}
	}
	if r.User != nil {
		resp.User = &UserRef{ID: r.User.ID, Email: r.User.Email}
	} else if r.UserID != "" {
		resp.User = &UserRef{ID: r.UserID}
	}
	return resp
}

func (s *Server) respondReviews(c *gin.Context, query *gorm.DB) {
	var reviews []models.Review
	if err := query.Preload("Product").Preload("User").Order("created_at DESC").Find(&reviews).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list reviews")
		respondMessage(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]ReviewResponse, len(reviews))
	for i := range reviews {
		response[i] = toReviewResponse(&reviews[i])
	}
	c.JSON(http.StatusOK, response)
}

// @Summary List product reviews
// @Description Every review of a product, flagged ones included
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {array} ReviewResponse
// @Router /api/reviews/{id} [get]
func (s *Server) listProductReviews(c *gin.Context) {
	s.respondReviews(c, s.db.Where("product_id = ?", c.Param("id")))
}

// @Summary List fake reviews
// @Description Reviews flagged by moderation (admin only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ReviewResponse
// @Router /api/admin/fake-reviews [get]
func (s *Server) listFakeReviews(c *gin.Context) {
	s.respondReviews(c, s.db.Where("is_fake = ?", true))
}

// @Summary Submit review
// @Description Review a product; moderation decides whether it is fake
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ReviewRequest true "Review"
// @Success 201 {object} ReviewResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/reviews [post]
func (s *Server) createReview(c *gin.Context) {
	var req ReviewRequest
	if !s.bindJSON(c, &req) {
		return
	}

	var product models.Product
	if err := models.FindByID(s.db, req.ProductID, &product); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondMessage(c, http.StatusNotFound, "Product not found")
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find product")
		respondMessage(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	sessionData, _ := GetSessionData(c)
	review := &models.Review{
		ProductID: product.ID,
		UserID:    sessionData.UserID,
		Rating:    req.Rating,
		Text:      strings.TrimSpace(req.Review),
		IPAddress: c.ClientIP(),
	}

	if err := s.moderator.Submit(c.Request.Context(), review); err != nil {
		s.logger.Error().Err(err).Msg("Failed to submit review")
		respondMessage(c, http.StatusInternalServerError, "Failed to submit review")
		return
	}

	s.logger.Info().
		Str("review_id", review.ID).
		Str("product_id", product.ID).
		Bool("is_fake", review.IsFake).
		Msg("Review submitted")

	review.Product = &product
	c.JSON(http.StatusCreated, toReviewResponse(review))
}

// @Summary Delete review
// @Description Delete a review (admin only)
// @Tags reviews
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /api/reviews/{id} [delete]
func (s *Server) deleteReview(c *gin.Context) {
	review, err := s.moderator.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, moderation.ErrReviewNotFound) {
			respondMessage(c, http.StatusNotFound, "Review not found")
			return
		}
		s.logger.Error().Err(err).Msg("Failed to delete review")
		respondMessage(c, http.StatusInternalServerError, "Failed to delete review")
		return
	}

	sessionData, _ := GetSessionData(c)
	s.logger.Info().
		Str("review_id", review.ID).
		Bool("was_fake", review.IsFake).
		Str("deleted_by", sessionData.UserID).
		Msg("Review deleted")

	c.Status(http.StatusNoContent)
}

// @Summary Run moderation sweep
// @Description Re-evaluate unflagged reviews now (admin only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/admin/moderation/sweep [post]
func (s *Server) runSweep(c *gin.Context) {
	flagged, err := s.moderator.Sweep(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Moderation sweep failed")
		respondMessage(c, http.StatusInternalServerError, "Moderation sweep failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"flagged": flagged})
}
