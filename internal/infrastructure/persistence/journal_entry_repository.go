package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/transitledger/backend/internal/domain/ledger"
	"github.com/transitledger/backend/internal/domain/shared"
	"github.com/transitledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormJournalEntryRepository implements JournalEntryRepository using GORM
type GormJournalEntryRepository struct {
	db *gorm.DB
}

// NewGormJournalEntryRepository creates a new GormJournalEntryRepository
func NewGormJournalEntryRepository(db *gorm.DB) *GormJournalEntryRepository {
	return &GormJournalEntryRepository{db: db}
}

func (r *GormJournalEntryRepository) preloadLines(db *gorm.DB) *gorm.DB {
	return db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("line_number ASC")
	})
}

// FindByID finds a journal entry with its lines
func (r *GormJournalEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.JournalEntry, error) {
	var model models.JournalEntryModel
	if err := r.preloadLines(r.db.WithContext(ctx)).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a journal entry by its document code
func (r *GormJournalEntryRepository) FindByCode(ctx context.Context, code string) (*ledger.JournalEntry, error) {
	var model models.JournalEntryModel
	if err := r.preloadLines(r.db.WithContext(ctx)).
		Where("code = ?", code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds journal entries matching the filter with pagination
func (r *GormJournalEntryRepository) FindAll(ctx context.Context, filter ledger.JournalEntryFilter) ([]ledger.JournalEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.JournalEntryModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.EntryType != nil {
		query = query.Where("entry_type = ?", string(*filter.EntryType))
	}
	if filter.SourceModule != "" {
		query = query.Where("source_module = ?", filter.SourceModule)
	}
	if filter.DateFrom != nil {
		query = query.Where("entry_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("entry_date <= ?", *filter.DateTo)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR description ILIKE ? OR source_reference ILIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := paginate(filter.Page, filter.PageSize)
	order := orderClause(journalEntrySortColumns, filter.OrderBy, filter.OrderDir, "entry_date")
	var entryModels []models.JournalEntryModel
	if err := r.preloadLines(query).Order(order).Limit(limit).Offset(offset).
		Find(&entryModels).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]ledger.JournalEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries, total, nil
}

// LastCodeForYear returns the lexicographically-last entry code for the
// year, or empty string when none exist. Sequence numbers are zero padded,
// so lexicographic max equals numeric max.
func (r *GormJournalEntryRepository) LastCodeForYear(ctx context.Context, year int) (string, error) {
	var code *string
	if err := r.db.WithContext(ctx).Model(&models.JournalEntryModel{}).
		Unscoped().
		Where("code LIKE ?", fmt.Sprintf("%s-%d-%%", ledger.EntryCodePrefix, year)).
		Select("MAX(code)").
		Scan(&code).Error; err != nil {
		return "", err
	}
	if code == nil {
		return "", nil
	}
	return *code, nil
}

// HasReversal reports whether a reversal entry referencing the original
// already exists.
func (r *GormJournalEntryRepository) HasReversal(ctx context.Context, originalID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.JournalEntryModel{}).
		Where("reversal_of = ?", originalID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the entry header and all lines
func (r *GormJournalEntryRepository) Create(ctx context.Context, entry *ledger.JournalEntry) error {
	model := models.JournalEntryModelFromDomain(entry)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err, "") {
			return shared.NewDomainError("DUPLICATE_ENTRY_CODE",
				fmt.Sprintf("Journal entry code %s already exists", entry.Code))
		}
		return err
	}
	return nil
}

// Update saves the entry header and replaces its lines
func (r *GormJournalEntryRepository) Update(ctx context.Context, entry *ledger.JournalEntry) error {
	model := models.JournalEntryModelFromDomain(entry)
	lines := model.Lines
	model.Lines = nil

	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Unscoped().
		Where("journal_entry_id = ?", entry.ID).
		Delete(&models.JournalEntryLineModel{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

// UpdateStatus persists a status transition on the entry header only
func (r *GormJournalEntryRepository) UpdateStatus(ctx context.Context, entry *ledger.JournalEntry) error {
	result := r.db.WithContext(ctx).Model(&models.JournalEntryModel{}).
		Where("id = ?", entry.ID).
		Updates(map[string]any{
			"status":     entry.Status.String(),
			"posted_by":  entry.PostedBy,
			"posted_at":  entry.PostedAt,
			"updated_at": entry.UpdatedAt,
			"version":    entry.Version,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete soft deletes an entry and its lines
func (r *GormJournalEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("journal_entry_id = ?", id).
			Delete(&models.JournalEntryLineModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.JournalEntryModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ ledger.JournalEntryRepository = (*GormJournalEntryRepository)(nil)
