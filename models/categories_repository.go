package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrCategoryNotFound is returned when a category id is unknown.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryNameTaken is returned when a create or rename collides
	// with an existing category name.
	ErrCategoryNameTaken = errors.New("a category with that name already exists")
	// ErrCategoryInUse is returned when deleting a category that products
	// still reference.
	ErrCategoryInUse = errors.New("category cannot be deleted because it has associated products")
)

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

func (r *CategoriesRepository) GetAllCategories(ctx context.Context) ([]Category, error) {
	categories := []Category{}
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoriesRepository) GetCategory(ctx context.Context, id uint) (*Category, error) {
	var category Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoriesRepository) CreateCategory(ctx context.Context, category *Category) error {
	err := r.db.WithContext(ctx).Create(category).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrCategoryNameTaken
	}
	return err
}

// UpdateCategory renames the category and rewrites the display name on every
// product that references it. Either both happen or neither does.
func (r *CategoriesRepository) UpdateCategory(ctx context.Context, category *Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current Category
		if err := tx.First(&current, category.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}

		current.Name = category.Name
		current.Description = category.Description
		if err := tx.Save(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrCategoryNameTaken
			}
			return err
		}

		err := tx.Model(&Product{}).
			Where("category_id = ?", current.ID).
			Update("category_name", current.Name).Error
		if err != nil {
			return err
		}

		*category = current
		return nil
	})
}

func (r *CategoriesRepository) DeleteCategory(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Product{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrCategoryInUse
		}

		res := tx.Delete(&Category{}, id)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
				return ErrCategoryInUse
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
}
