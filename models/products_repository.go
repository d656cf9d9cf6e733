package models

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type ProductsRepository struct {
	db *gorm.DB
}

var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrUnknownCategory is returned when a product write references a
	// category that does not exist.
	ErrUnknownCategory = errors.New("category not found")
)

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

func (r *ProductsRepository) GetFilteredProducts(ctx context.Context, filters ProductFilters) ([]Product, error) {
	products := []Product{}

	query := r.db.WithContext(ctx).Model(&Product{})

	if filters.Name != "" {
		query = query.Where("products.name ILIKE ?", "%"+escapeLike(filters.Name)+"%")
	}
	switch {
	case filters.Category.ID != 0 && filters.Category.Name != "":
		query = query.Where("(products.category_id = ? OR products.category_name = ?)",
			filters.Category.ID, filters.Category.Name)
	case filters.Category.ID != 0:
		query = query.Where("products.category_id = ?", filters.Category.ID)
	case filters.Category.Name != "":
		query = query.
			Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.name = ?", filters.Category.Name)
	}
	if filters.PriceMin != nil {
		query = query.Where("products.price >= ?", *filters.PriceMin)
	}
	if filters.PriceMax != nil {
		query = query.Where("products.price <= ?", *filters.PriceMax)
	}

	if err := query.Order("products.name ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductsRepository) GetByID(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// CreateProduct resolves the category reference and inserts the product in
// one transaction.
func (r *ProductsRepository) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	var product Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cat, err := resolveCategory(tx, in.Category)
		if err != nil {
			return err
		}
		in.Apply(&product, cat)
		return translateProductWrite(tx.Create(&product).Error)
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct replaces every mutable field of the product.
func (r *ProductsRepository) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*Product, error) {
	var product Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		cat, err := resolveCategory(tx, in.Category)
		if err != nil {
			return err
		}
		in.Apply(&product, cat)
		return translateProductWrite(tx.Save(&product).Error)
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductsRepository) DeleteProduct(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// GetStatistics computes every figure in a single aggregate query.
func (r *ProductsRepository) GetStatistics(ctx context.Context) (Statistics, error) {
	var stats Statistics
	err := r.db.WithContext(ctx).
		Model(&Product{}).
		Select("COUNT(*) AS total_products, " +
			"COALESCE(SUM(stock), 0) AS stock_total, " +
			"AVG(price) AS price_average, " +
			"COUNT(DISTINCT category_id) AS total_categories").
		Scan(&stats).Error
	if err != nil {
		return Statistics{}, err
	}
	return stats, nil
}

func resolveCategory(tx *gorm.DB, ref CategoryRef) (*Category, error) {
	if ref.IsZero() {
		return nil, ErrUnknownCategory
	}
	var cat Category
	q := tx
	if ref.ID != 0 {
		q = q.Where("id = ?", ref.ID)
	} else {
		q = q.Where("name = ?", ref.Name)
	}
	if err := q.First(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownCategory
		}
		return nil, err
	}
	return &cat, nil
}

// A foreign key violation here means the category vanished between the
// lookup and the write.
func translateProductWrite(err error) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrUnknownCategory
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
