package repository

import (
	"context"
	"errors"
	"fmt"

	"product-catalog/internal/products"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type productRecord struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	Name        string          `gorm:"size:100;not null;index"`
	Description *string         `gorm:"size:500"`
	// Stored as text: SQLite would coerce a numeric column to REAL.
	Price decimal.Decimal `gorm:"type:text;not null"`
}

func (productRecord) TableName() string {
	return "products"
}

func toRecord(p products.Product) productRecord {
	return productRecord{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
	}
}

func (rec productRecord) toProduct() products.Product {
	return products.Product{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Price:       rec.Price,
	}
}

// GormRepository stores products through GORM. It backs the embedded
// SQLite mode.
type GormRepository struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// AutoMigrate creates or updates the products table.
func (r *GormRepository) AutoMigrate() error {
	if err := r.db.AutoMigrate(&productRecord{}); err != nil {
		return fmt.Errorf("auto-migrate products: %w", err)
	}
	return nil
}

func (r *GormRepository) Save(ctx context.Context, p products.Product) (products.Product, error) {
	rec := toRecord(p)
	rec.ID = 0
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return products.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return rec.toProduct(), nil
}

func (r *GormRepository) FindByID(ctx context.Context, id int64) (products.Product, error) {
	var rec productRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return products.Product{}, products.ErrNotFound
		}
		return products.Product{}, fmt.Errorf("select product %d: %w", id, err)
	}
	return rec.toProduct(), nil
}

func (r *GormRepository) FindByName(ctx context.Context, name string) (products.Product, error) {
	var rec productRecord
	if err := r.db.WithContext(ctx).Where("name = ?", name).Order("id").First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return products.Product{}, products.ErrNotFound
		}
		return products.Product{}, fmt.Errorf("select product by name: %w", err)
	}
	return rec.toProduct(), nil
}

func (r *GormRepository) FindAll(ctx context.Context) ([]products.Product, error) {
	var recs []productRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	list := make([]products.Product, 0, len(recs))
	for _, rec := range recs {
		list = append(list, rec.toProduct())
	}
	return list, nil
}

func (r *GormRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&productRecord{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check product %d: %w", id, err)
	}
	return n > 0, nil
}

func (r *GormRepository) Update(ctx context.Context, p products.Product) (products.Product, error) {
	res := r.db.WithContext(ctx).
		Model(&productRecord{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"name":        p.Name,
			"description": p.Description,
			"price":       p.Price,
		})
	if res.Error != nil {
		return products.Product{}, fmt.Errorf("update product %d: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return products.Product{}, products.ErrNotFound
	}
	return p, nil
}

func (r *GormRepository) DeleteByID(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&productRecord{}, id).Error; err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}

func (r *GormRepository) DeleteAll(ctx context.Context) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&productRecord{}).Error
	if err != nil {
		return fmt.Errorf("delete products: %w", err)
	}
	return nil
}

func (r *GormRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&productRecord{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

func (r *GormRepository) Health() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
