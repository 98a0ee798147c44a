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

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds the active account with the given code
func (r *GormAccountRepository) FindByCode(ctx context.Context, code string) (*ledger.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("code = ? AND archived_at IS NULL", code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCodes finds all accounts matching the given codes, archived included.
// Callers decide whether archived accounts are acceptable.
func (r *GormAccountRepository) FindByCodes(ctx context.Context, codes []string) ([]ledger.Account, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var accountModels []models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("code IN ?", codes).
		Order("archived_at ASC NULLS FIRST").
		Find(&accountModels).Error; err != nil {
		return nil, err
	}
	accounts := make([]ledger.Account, len(accountModels))
	for i := range accountModels {
		accounts[i] = *accountModels[i].ToDomain()
	}
	return accounts, nil
}

// FindAll finds accounts matching the filter with pagination
func (r *GormAccountRepository) FindAll(ctx context.Context, filter ledger.AccountFilter) ([]ledger.Account, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AccountModel{})
	if filter.Type != nil {
		query = query.Where("type = ?", filter.Type.String())
	}
	if !filter.IncludeArchived {
		query = query.Where("archived_at IS NULL")
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := paginate(filter.Page, filter.PageSize)
	var accountModels []models.AccountModel
	if err := query.Order("code ASC").Limit(limit).Offset(offset).
		Find(&accountModels).Error; err != nil {
		return nil, 0, err
	}

	accounts := make([]ledger.Account, len(accountModels))
	for i := range accountModels {
		accounts[i] = *accountModels[i].ToDomain()
	}
	return accounts, total, nil
}

// MaxCodeForType returns the highest allocated code among non-archived
// accounts of a type, or empty string when none exist.
func (r *GormAccountRepository) MaxCodeForType(ctx context.Context, accountType ledger.AccountType) (string, error) {
	var code *string
	if err := r.db.WithContext(ctx).Model(&models.AccountModel{}).
		Where("type = ? AND archived_at IS NULL", accountType.String()).
		Select("MAX(code)").
		Scan(&code).Error; err != nil {
		return "", err
	}
	if code == nil {
		return "", nil
	}
	return *code, nil
}

// ExistsActiveByName reports whether a non-archived account with the given
// type and name exists.
func (r *GormAccountRepository) ExistsActiveByName(ctx context.Context, accountType ledger.AccountType, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AccountModel{}).
		Where("type = ? AND name = ? AND archived_at IS NULL", accountType.String(), name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsActiveByCode reports whether a non-archived account with the given
// type and code exists.
func (r *GormAccountRepository) ExistsActiveByCode(ctx context.Context, accountType ledger.AccountType, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AccountModel{}).
		Where("type = ? AND code = ? AND archived_at IS NULL", accountType.String(), code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts or updates the account. Racing inserts on the same active
// code or name surface as duplicate conflicts via the partial unique
// indexes.
func (r *GormAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	model := models.AccountModelFromDomain(account)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isUniqueViolation(err, "") {
			return shared.NewDomainError("DUPLICATE_ACCOUNT",
				fmt.Sprintf("An active account with code %s or the same name already exists", account.Code))
		}
		return err
	}
	return nil
}

var _ ledger.AccountRepository = (*GormAccountRepository)(nil)
