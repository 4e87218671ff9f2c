package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// firstOrNil loads one row matching query, or nil when none does.
func firstOrNil[T any](ctx context.Context, db *gorm.DB, query string, args ...any) (*T, error) {
	var row T
	err := db.WithContext(ctx).Where(query, args...).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// updateAll writes every column of row, zero values and NULLs included, and
// reports ErrNotFound instead of inserting when the row is gone.
func updateAll[T any](ctx context.Context, db *gorm.DB, row *T) error {
	result := db.WithContext(ctx).Model(row).Select("*").Updates(row)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteByID[T any](ctx context.Context, db *gorm.DB, id any) error {
	var row T
	result := db.WithContext(ctx).Delete(&row, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func paginate(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
