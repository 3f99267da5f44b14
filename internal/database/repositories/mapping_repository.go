package repositories

import (
	"context"

	"github.com/lucsky/cuid"
	"gorm.io/gorm"

	"github.com/markxbrooks/Mol-MiDial/internal/database/models"
)

// MappingRepository handles persisted control-mapping data access.
type MappingRepository struct {
	db *gorm.DB
}

// NewMappingRepository creates a new MappingRepository.
func NewMappingRepository(db *gorm.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// FindAll returns all persisted mappings in table order.
func (r *MappingRepository) FindAll(ctx context.Context) ([]models.ControlMapping, error) {
	var mappings []models.ControlMapping
	result := r.db.WithContext(ctx).
		Order("position ASC").
		Find(&mappings)
	return mappings, result.Error
}

// FindByName returns a mapping by name, or nil when absent.
func (r *MappingRepository) FindByName(ctx context.Context, name string) (*models.ControlMapping, error) {
	var mapping models.ControlMapping
	result := r.db.WithContext(ctx).First(&mapping, "name = ?", name)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &mapping, nil
}

// Upsert creates or updates a mapping by name. New mappings are appended
// at the end of the match order.
func (r *MappingRepository) Upsert(ctx context.Context, mapping *models.ControlMapping) error {
	existing, err := r.FindByName(ctx, mapping.Name)
	if err != nil {
		return err
	}

	if existing == nil {
		if mapping.ID == "" {
			mapping.ID = cuid.New()
		}
		var maxPos int
		row := r.db.WithContext(ctx).
			Model(&models.ControlMapping{}).
			Select("COALESCE(MAX(position), -1)").
			Row()
		if err := row.Scan(&maxPos); err != nil {
			return err
		}
		mapping.Position = maxPos + 1
		return r.db.WithContext(ctx).Create(mapping).Error
	}

	mapping.ID = existing.ID
	mapping.Position = existing.Position
	mapping.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(mapping).Error
}

// SetEnabled flips the enabled flag of a mapping by name.
func (r *MappingRepository) SetEnabled(ctx context.Context, name string, enabled bool) error {
	return r.db.WithContext(ctx).
		Model(&models.ControlMapping{}).
		Where("name = ?", name).
		Update("enabled", enabled).Error
}

// Delete deletes a mapping by name.
func (r *MappingRepository) Delete(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Delete(&models.ControlMapping{}, "name = ?", name).Error
}
