package repos

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/rackden/rackden/internal/db/models"
)

// TemplateRepository provides read access to the booking template catalog
type TemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new template repository instance
func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// GetByID retrieves a template by its ID
func (r *TemplateRepository) GetByID(ctx context.Context, id uint) (*models.Template, error) {
	var template models.Template
	err := r.db.WithContext(ctx).First(&template, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &template, nil
}

// GetByName retrieves a template by its name
func (r *TemplateRepository) GetByName(ctx context.Context, name string) (*models.Template, error) {
	var template models.Template
	err := r.db.WithContext(ctx).Where(&models.Template{Name: name}).First(&template).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &template, nil
}

// Create inserts a template row. Used by catalog import and tests.
func (r *TemplateRepository) Create(ctx context.Context, template *models.Template) error {
	return r.db.WithContext(ctx).Create(template).Error
}
