// Package seed loads initial accounts and catalog entries into the database.
package seed

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/myshop-dev/myshop/internal/auth"
	"github.com/myshop-dev/myshop/internal/models"
)

// File is the YAML seed document.
type File struct {
	Admins   []Account `yaml:"admins"`
	Users    []Account `yaml:"users"`
	Products []Product `yaml:"products"`
}

// Account is a seeded login.
type Account struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Mobile    string `yaml:"mobile"`
	Password  string `yaml:"password"`
}

// Product is a seeded catalog entry.
type Product struct {
	Name       string `yaml:"name"`
	Desc       string `yaml:"desc"`
	SKU        string `yaml:"sku"`
	SupplierID string `yaml:"supplier_id"`
	ImageURL   string `yaml:"image_url"`
}

// Result counts the records created by Apply.
type Result struct {
	Users    int
	Products int
}

// Parse decodes a seed document
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for _, a := range append(append([]Account{}, f.Admins...), f.Users...) {
		if a.Email == "" || a.Password == "" {
			return nil, fmt.Errorf("seed account requires email and password")
		}
	}
	for _, p := range f.Products {
		if p.Name == "" || p.SKU == "" {
			return nil, fmt.Errorf("seed product requires name and sku")
		}
	}
	return &f, nil
}

// Load reads and parses the seed file at path
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Apply creates the seeded records that do not exist yet. Accounts are
// matched by email and products by SKU, so applying twice is harmless.
func Apply(db *gorm.DB, f *File, log zerolog.Logger) (Result, error) {
	var res Result

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, a := range f.Admins {
			created, err := ensureUser(tx, a, auth.RoleAdmin)
			if err != nil {
				return err
			}
			if created {
				res.Users++
			}
		}
		for _, a := range f.Users {
			created, err := ensureUser(tx, a, auth.RoleUser)
			if err != nil {
				return err
			}
			if created {
				res.Users++
			}
		}

		for _, p := range f.Products {
			var existing models.Product
			err := tx.Where("sku = ?", p.SKU).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to look up product %s: %w", p.SKU, err)
			}

			product := models.Product{
				Name:       p.Name,
				Desc:       p.Desc,
				SKU:        p.SKU,
				SupplierID: p.SupplierID,
				ImageURL:   p.ImageURL,
			}
			if err := tx.Create(&product).Error; err != nil {
				return fmt.Errorf("failed to create product %s: %w", p.SKU, err)
			}
			res.Products++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	log.Info().Int("users", res.Users).Int("products", res.Products).Msg("Seed data applied")
	return res, nil
}

// Admin ensures an administrator account with the given credentials exists.
func Admin(db *gorm.DB, email, password string) (bool, error) {
	return ensureUser(db, Account{FirstName: "Admin", LastName: "MyShop", Email: email, Password: password}, auth.RoleAdmin)
}

func ensureUser(tx *gorm.DB, a Account, role string) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(a.Email))

	var existing models.User
	err := tx.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to look up user %s: %w", email, err)
	}

	hash, err := auth.HashPassword(a.Password)
	if err != nil {
		return false, fmt.Errorf("failed to hash password for %s: %w", email, err)
	}

	user := models.User{
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Email:        email,
		Mobile:       a.Mobile,
		PasswordHash: hash,
		Role:         role,
	}
	if err := tx.Create(&user).Error; err != nil {
		return false, fmt.Errorf("failed to create user %s: %w", email, err)
	}
	return true, nil
}
