// Package moderation decides which reviews are fake and keeps product
// rating aggregates in line with the reviews that are not.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/myshop-dev/myshop/internal/models"
)

// SharedIPWindow is how far back a review from the same address by another
// account counts against a new review.
const SharedIPWindow = 24 * time.Hour

// Reasons recorded in logs when a review is flagged.
const (
	ReasonDuplicate = "duplicate_review"
	ReasonSharedIP  = "shared_ip"
)

// ErrReviewNotFound is returned when deleting an unknown review.
var ErrReviewNotFound = errors.New("review not found")

// Moderator flags reviews and recomputes product ratings
type Moderator struct {
	db     *gorm.DB
	logger zerolog.Logger
	now    func() time.Time
}

// New creates a moderator backed by db
func New(db *gorm.DB, logger zerolog.Logger) *Moderator {
	return &Moderator{
		db:     db,
		logger: logger.With().Str("component", "moderation").Logger(),
		now:    time.Now,
	}
}

// Submit evaluates a new review, stores it and updates the product rating.
func (m *Moderator) Submit(ctx context.Context, review *models.Review) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if review.CreatedAt.IsZero() {
			review.CreatedAt = m.now()
		}

		reason, err := m.evaluate(tx, review)
		if err != nil {
			return err
		}
		review.IsFake = reason != ""

		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}

		if review.IsFake {
			m.logger.Info().
				Str("review_id", review.ID).
				Str("product_id", review.ProductID).
				Str("user_id", review.UserID).
				Str("reason", reason).
				Msg("Review flagged as fake")
		}

		return RecomputeProduct(tx, review.ProductID)
	})
}

// Delete removes a review and updates the product rating. The deleted
// review is returned.
func (m *Moderator) Delete(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := models.FindByID(tx, id, &review); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("failed to find review: %w", err)
		}

		if err := tx.Delete(&review).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}

		return RecomputeProduct(tx, review.ProductID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Sweep re-evaluates every unflagged review against the reviews written
// before it and returns how many were newly flagged.
func (m *Moderator) Sweep(ctx context.Context) (int, error) {
	flagged := 0
	touched := map[string]bool{}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reviews []models.Review
		if err := tx.Where("is_fake = ?", false).Order("id ASC").Find(&reviews).Error; err != nil {
			return fmt.Errorf("failed to list reviews: %w", err)
		}

		for i := range reviews {
			review := &reviews[i]
			reason, err := m.evaluate(tx, review)
			if err != nil {
				return err
			}
			if reason == "" {
				continue
			}

			if err := tx.Model(review).Update("is_fake", true).Error; err != nil {
				return fmt.Errorf("failed to flag review: %w", err)
			}
			flagged++
			touched[review.ProductID] = true

			m.logger.Info().
				Str("review_id", review.ID).
				Str("reason", reason).
				Msg("Sweep flagged review as fake")
		}

		for productID := range touched {
			if err := RecomputeProduct(tx, productID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	m.logger.Debug().Int("flagged", flagged).Msg("Moderation sweep complete")
	return flagged, nil
}

// evaluate returns the reason the review is fake, or "" when it is genuine.
// Only reviews written before it are considered.
func (m *Moderator) evaluate(tx *gorm.DB, review *models.Review) (string, error) {
	earlier := func() *gorm.DB {
		q := tx.Model(&models.Review{}).Where("product_id = ?", review.ProductID)
		if review.ID != "" {
			q = q.Where("id < ?", review.ID)
		}
		return q
	}

	var duplicates int64
	if err := earlier().Where("user_id = ?", review.UserID).Count(&duplicates).Error; err != nil {
		return "", fmt.Errorf("failed to check duplicate reviews: %w", err)
	}
	if duplicates > 0 {
		return ReasonDuplicate, nil
	}

	if review.IPAddress == "" {
		return "", nil
	}

	var sameIP []models.Review
	if err := earlier().
		Where("user_id <> ? AND ip_address = ?", review.UserID, review.IPAddress).
		Find(&sameIP).Error; err != nil {
		return "", fmt.Errorf("failed to check reviews from the same address: %w", err)
	}
	for _, other := range sameIP {
		if review.CreatedAt.Sub(other.CreatedAt) < SharedIPWindow {
			return ReasonSharedIP, nil
		}
	}

	return "", nil
}

// RecomputeProduct refreshes a product's average rating and review count
// from its reviews that are not flagged as fake.
func RecomputeProduct(tx *gorm.DB, productID string) error {
	var agg struct {
		Total   int
		Average float64
	}
	if err := tx.Model(&models.Review{}).
		Select("COUNT(*) AS total, COALESCE(AVG(rating), 0) AS average").
		Where("product_id = ? AND is_fake = ?", productID, false).
		Scan(&agg).Error; err != nil {
		return fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"average_rating": math.Round(agg.Average*10) / 10,
			"total_reviews":  agg.Total,
		}).Error
}

// ParseSchedule validates a sweep schedule. Standard five-field cron
// expressions and descriptors such as "@every 10m" are accepted.
func ParseSchedule(spec string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid moderation schedule %q: %w", spec, err)
	}
	return schedule, nil
}

// Scheduler runs Sweep on a cron schedule. The caller starts and stops it.
func (m *Moderator) Scheduler(spec string) (*cron.Cron, error) {
	schedule, err := ParseSchedule(spec)
	if err != nil {
		return nil, err
	}

	c := cron.New()
	c.Schedule(schedule, cron.FuncJob(func() {
		if _, err := m.Sweep(context.Background()); err != nil {
			m.logger.Error().Err(err).Msg("Moderation sweep failed")
		}
	}))

	m.logger.Info().Str("schedule", spec).Msg("Moderation sweep scheduled")
	return c, nil
}
