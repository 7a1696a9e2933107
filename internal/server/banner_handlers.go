package server

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/myshop-dev/myshop/internal/models"
)

const maxBannerSize = 5 << 20 // 5MB

var bannerExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// BannerResponse is a carousel slide as returned to clients
type BannerResponse struct {
	ID    string   `json:"_id"`
	Title string   `json:"title"`
	Image ImageRef `json:"image"`
}

// BannerForm is the multipart form of a banner upload
type BannerForm struct {
	Title string `form:"title" validate:"required"`
}

func toBannerResponse(b *models.Banner) BannerResponse {
	return BannerResponse{ID: b.ID, Title: b.Title, Image: ImageRef{URL: b.ImageURL}}
}

// @Summary List banners
// @Tags banners
// @Produce json
// @Security BearerAuth
// @Success 200 {array} BannerResponse
// @Router /api/banners [get]
func (s *Server) listBanners(c *gin.Context) {
	var banners []models.Banner
	if err := s.db.Order("created_at DESC").Find(&banners).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list banners")
		respondMessage(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]BannerResponse, len(banners))
	for i := range banners {
		response[i] = toBannerResponse(&banners[i])
	}
	c.JSON(http.StatusOK, response)
}

// @Summary Upload banner
// @Description Upload an image as a new carousel slide (admin only)
// @Tags banners
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Banner title"
// @Param image formData file true "Banner image"
// @Success 201 {object} BannerResponse
// @Failure 400 {object} map[string]interface{}
// @Router /api/banners [post]
func (s *Server) uploadBanner(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBannerSize+1<<20)

	form := BannerForm{Title: strings.TrimSpace(c.PostForm("title"))}
	if !s.validate(c, &form) {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "image is required")
		return
	}
	if file.Size > maxBannerSize {
		respondMessage(c, http.StatusBadRequest, "image must be at most 5MB")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !bannerExtensions[ext] {
		respondMessage(c, http.StatusBadRequest, "image must be a png, jpg, gif or webp file")
		return
	}

	// Stored under a generated name; the client's file name is never used on disk
	name := strings.ToLower(ulid.Make().String()) + ext
	if err := c.SaveUploadedFile(file, filepath.Join(s.config.Storage.UploadDir, name)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to save banner image")
		respondMessage(c, http.StatusInternalServerError, "Failed to save image")
		return
	}

	banner := &models.Banner{
		Title:    form.Title,
		ImageURL: path.Join("/uploads", name),
	}
	if err := s.db.Create(banner).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create banner")
		respondMessage(c, http.StatusInternalServerError, "Failed to create banner")
		return
	}

	s.logger.Info().Str("banner_id", banner.ID).Str("image", banner.ImageURL).Msg("Banner uploaded")

	c.JSON(http.StatusCreated, toBannerResponse(banner))
}
