package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User is a shopper or administrator account
type User struct {
	BaseModel
	FirstName    string    `json:"first_name" gorm:"not null"`
	LastName     string    `json:"last_name" gorm:"not null"`
	Email        string    `json:"email" gorm:"unique;not null"`
	Mobile       string    `json:"mobile"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         string    `json:"role" gorm:"not null;default:user"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Product is a catalog entry. Rating aggregates only count reviews that
// were not flagged as fake.
type Product struct {
	BaseModel
	Name          string    `json:"name" gorm:"not null"`
	Desc          string    `json:"desc" gorm:"column:description;type:text"`
	SKU           string    `json:"sku" gorm:"unique;not null"`
	SupplierID    string    `json:"supplier_id"`
	ImageURL      string    `json:"image_url"`
	AverageRating float64   `json:"average_rating" gorm:"not null;default:0"`
	TotalReviews  int       `json:"total_reviews" gorm:"not null;default:0"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Review is a shopper's rating of a product
type Review struct {
	BaseModel
	ProductID string `json:"product_id" gorm:"not null;index"`
	UserID    string `json:"user_id" gorm:"not null;index"`
	Rating    int    `json:"rating" gorm:"not null"`
	Text      string `json:"review" gorm:"type:text;not null"`
	IPAddress string `json:"ip_address" gorm:"index"`
	IsFake    bool   `json:"is_fake" gorm:"not null;default:false;index"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID;references:ID"`
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

// Banner is a carousel slide backed by an uploaded image
type Banner struct {
	BaseModel
	Title    string `json:"title" gorm:"not null"`
	ImageURL string `json:"image_url" gorm:"not null"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&User{}, &Product{}, &Review{}, &Banner{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// FindByIDWithPreload finds a record by ID with preloading
func FindByIDWithPreload[T any](db *gorm.DB, id string, model *T, preloads ...string) error {
	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	return query.Where("id = ?", id).First(model).Error
}
