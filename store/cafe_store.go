package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cafefinder/model"

	"gorm.io/gorm"
)

const listOrder = "name ASC, id ASC"

// CafeStore persists cafe entries. Name uniqueness is enforced by the unique
// index on cafes.name, not by a read-before-write check.
type CafeStore struct {
	db *gorm.DB
}

func NewCafeStore(db *gorm.DB) *CafeStore {
	return &CafeStore{db: db}
}

func (s *CafeStore) Create(ctx context.Context, entry model.CafeEntry) (model.CafeEntry, error) {
	if err := checkRequired(entry); err != nil {
		return model.CafeEntry{}, err
	}

	entry.ID = 0
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if isUniqueViolation(err) {
			return model.CafeEntry{}, fmt.Errorf("create %q: %w", entry.Name, model.ErrDuplicateName)
		}
		return model.CafeEntry{}, fmt.Errorf("create cafe: %w", err)
	}
	return entry, nil
}

// Get returns nil without error when id is unknown.
func (s *CafeStore) Get(ctx context.Context, id uint) (*model.CafeEntry, error) {
	var entry model.CafeEntry
	err := s.db.WithContext(ctx).First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cafe %d: %w", id, err)
	}
	return &entry, nil
}

// Update applies the allow-listed patch fields to the entry with the given id.
func (s *CafeStore) Update(ctx context.Context, id uint, patch model.EntryPatch) (model.CafeEntry, error) {
	if patch.CoffeePrice != nil && !patch.CoffeePrice.Valid() {
		return model.CafeEntry{}, fmt.Errorf("coffee_price %q: %w", *patch.CoffeePrice, model.ErrInvalidValue)
	}

	var entry model.CafeEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&entry, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrNotFound
			}
			return err
		}
		if patch.Empty() {
			return nil
		}
		if err := tx.Model(&entry).Updates(patch.Columns()).Error; err != nil {
			return err
		}
		patch.Apply(&entry)
		return nil
	})
	if errors.Is(err, model.ErrNotFound) {
		return model.CafeEntry{}, fmt.Errorf("update cafe %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.CafeEntry{}, fmt.Errorf("update cafe %d: %w", id, err)
	}
	return entry, nil
}

// Delete reports whether a row was removed. Unknown ids are not an error.
func (s *CafeStore) Delete(ctx context.Context, id uint) (bool, error) {
	result := s.db.WithContext(ctx).Delete(&model.CafeEntry{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("delete cafe %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *CafeStore) ListAll(ctx context.Context) ([]model.CafeEntry, error) {
	var entries []model.CafeEntry
	if err := s.db.WithContext(ctx).Order(listOrder).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list cafes: %w", err)
	}
	return entries, nil
}

// FindByCity matches city with the database's LIKE operator, so % and _ in
// pattern act as wildcards.
func (s *CafeStore) FindByCity(ctx context.Context, pattern string) ([]model.CafeEntry, error) {
	return s.findLike(ctx, "city", pattern)
}

func (s *CafeStore) FindByZipcode(ctx context.Context, pattern string) ([]model.CafeEntry, error) {
	return s.findLike(ctx, "zipcode", pattern)
}

func (s *CafeStore) findLike(ctx context.Context, column, pattern string) ([]model.CafeEntry, error) {
	var entries []model.CafeEntry
	err := s.db.WithContext(ctx).
		Where(column+" LIKE ?", pattern).
		Order(listOrder).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("find cafes by %s: %w", column, err)
	}
	return entries, nil
}

func (s *CafeStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.CafeEntry{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count cafes: %w", err)
	}
	return n, nil
}

// Ping checks that the backing database is reachable.
func (s *CafeStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func checkRequired(e model.CafeEntry) error {
	required := []struct {
		field, value string
	}{
		{"name", e.Name},
		{"map_url", e.MapURL},
		{"zipcode", e.Zipcode},
		{"city", e.City},
		{"coffee_price", string(e.CoffeePrice)},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s: %w", r.field, model.ErrMissingField)
		}
	}
	if !e.CoffeePrice.Valid() {
		return fmt.Errorf("coffee_price %q: %w", e.CoffeePrice, model.ErrInvalidValue)
	}
	return nil
}

// isUniqueViolation covers drivers that do not translate constraint errors.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
