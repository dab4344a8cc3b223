package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// mainAttempts bounds how often an address write is re-run after the
// single-main index rejected it because another write of the same user won.
const mainAttempts = 3

func (r *GormRepo) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	addresses := make([]models.Address, 0)
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_main DESC").Order("created_at ASC").Order("id ASC").
		Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

func (r *GormRepo) GetAddress(ctx context.Context, userID uuid.UUID, id uint) (*models.Address, error) {
	var address models.Address
	if err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Take(&address).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

func demoteMain(tx *gorm.DB, userID uuid.UUID, exceptID uint) error {
	q := tx.Model(&models.Address{}).Where("user_id = ? AND is_main = ?", userID, true)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	return q.Update("is_main", false).Error
}

// lockAddresses takes row locks on the user's addresses and returns how many
// exist. SQLite ignores the lock; the single-main index still holds there.
func lockAddresses(tx *gorm.DB, userID uuid.UUID) (int, error) {
	var ids []uint
	err := tx.Model(&models.Address{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Pluck("id", &ids).Error
	return len(ids), err
}

func retryMainConflict(write func() error) error {
	var err error
	for range mainAttempts {
		if err = write(); !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return err
}

// CreateAddress makes the first address of a user main regardless of the
// flag, and demotes the previous main address when a new one claims it.
func (r *GormRepo) CreateAddress(ctx context.Context, address *models.Address) error {
	wantMain := address.IsMain
	return retryMainConflict(func() error {
		address.ID = 0
		address.IsMain = wantMain
		return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			count, err := lockAddresses(tx, address.UserID)
			if err != nil {
				return err
			}
			if address.IsMain {
				if err := demoteMain(tx, address.UserID, 0); err != nil {
					return err
				}
			} else {
				address.IsMain = count == 0
			}
			return tx.Create(address).Error
		})
	})
}

func (r *GormRepo) UpdateAddress(ctx context.Context, address *models.Address) error {
	return retryMainConflict(func() error {
		return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if _, err := lockAddresses(tx, address.UserID); err != nil {
				return err
			}
			var current models.Address
			if err := tx.Where("id = ? AND user_id = ?", address.ID, address.UserID).Take(&current).Error; err != nil {
				return err
			}
			if address.IsMain {
				if err := demoteMain(tx, address.UserID, address.ID); err != nil {
					return err
				}
			}
			address.CreatedAt = current.CreatedAt
			return tx.Model(&current).
				Select("Recipient", "Street", "Number", "Complement", "District", "City", "State", "ZipCode", "IsMain", "UpdatedAt").
				Updates(address).Error
		})
	})
}

func (r *GormRepo) DeleteAddress(ctx context.Context, userID uuid.UUID, id uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Address{})
	return res.RowsAffected, res.Error
}
