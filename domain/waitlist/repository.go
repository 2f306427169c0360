package waitlist

import (
	"context"
	"errors"
	"time"

	"github.com/tarslive/waitlist-api/internal/models"
	apperrors "github.com/tarslive/waitlist-api/pkg/errors"
	"gorm.io/gorm"
)

type WaitlistRepository interface {
	// FindEntryByEmail retrieves the entry for an email address, or a
	// NotFound error when no such entry exists.
	FindEntryByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error)
	// CreateEntry persists a new entry. The table's unique index on
	// email turns racing duplicate inserts into a Conflict error.
	CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error)
	// CountCreatedAtOrBefore returns how many entries were created at
	// or before t, which is the 1-based chronological position of an
	// entry created at t.
	CountCreatedAtOrBefore(ctx context.Context, t time.Time) (int64, error)
	// ListEntries returns a page of entries ordered by creation time
	// ascending, plus the total entry count.
	ListEntries(ctx context.Context, offset, limit int) ([]*models.WaitlistEntry, int64, error)
	// GetAllEntries returns every entry ordered by creation time ascending.
	GetAllEntries(ctx context.Context) ([]*models.WaitlistEntry, error)
	// ResetWithSeedEntries wipes the table and inserts the given
	// entries in one transaction. Development seeding only.
	ResetWithSeedEntries(ctx context.Context, entries []*models.WaitlistEntry) error
}

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

func (wr *waitlistRepository) FindEntryByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry

	if err := wr.db.WithContext(ctx).Where("email = ?", email).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("waitlist entry not found", err)
		}
		return nil, apperrors.NewDatabaseError("failed to fetch waitlist entry", err)
	}

	return &entry, nil
}

func (wr *waitlistRepository) CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
	if err := wr.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.NewConflictError("Email already registered", err)
		}
		return nil, apperrors.NewDatabaseError("unable to create waitlist entry", err)
	}

	return entry, nil
}

func (wr *waitlistRepository) CountCreatedAtOrBefore(ctx context.Context, t time.Time) (int64, error) {
	var count int64

	err := wr.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("created_at <= ?", t).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.NewDatabaseError("unable to compute waitlist position", err)
	}

	return count, nil
}

func (wr *waitlistRepository) ListEntries(ctx context.Context, offset, limit int) ([]*models.WaitlistEntry, int64, error) {
	var total int64

	if err := wr.db.WithContext(ctx).Model(&models.WaitlistEntry{}).Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewDatabaseError("unable to count waitlist entries", err)
	}

	var entries []*models.WaitlistEntry
	err := wr.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("unable to fetch waitlist entries", err)
	}

	return entries, total, nil
}

func (wr *waitlistRepository) GetAllEntries(ctx context.Context) ([]*models.WaitlistEntry, error) {
	var entries []*models.WaitlistEntry

	err := wr.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("unable to fetch waitlist entries", err)
	}

	return entries, nil
}

func (wr *waitlistRepository) ResetWithSeedEntries(ctx context.Context, entries []*models.WaitlistEntry) error {
	err := wr.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.WaitlistEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(entries).Error
	})
	if err != nil {
		return apperrors.NewDatabaseError("unable to reset waitlist entries", err)
	}

	return nil
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateKeyError(err)
}
