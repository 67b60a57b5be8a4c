package order

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sakuraessence/storefront/internal/domain"
	"gorm.io/gorm"
)

// GormRepository is the gorm-backed order repository.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

var _ Repository = (*GormRepository)(nil)

func (r *GormRepository) Create(ctx context.Context, o *domain.Order) error {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		return errors.Wrap(ErrPersistence, err.Error())
	}
	return nil
}

func (r *GormRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "order %d", id)
	}
	if err != nil {
		return nil, errors.Wrap(ErrPersistence, err.Error())
	}
	return &o, nil
}

func (r *GormRepository) List(ctx context.Context, status domain.OrderStatus, page, pageSize int) ([]domain.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 20
	}
	base := r.db.WithContext(ctx).Model(&domain.Order{})
	if status != "" {
		base = base.Where("status = ?", status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(ErrPersistence, err.Error())
	}

	var rows []domain.Order
	if err := base.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(ErrPersistence, err.Error())
	}
	return rows, total, nil
}

// UpdateStatusFromPending performs the guarded transition as one conditional
// UPDATE. The WHERE clause on the current status makes the guard atomic
// against racing admins; the loser matches zero rows.
func (r *GormRepository) UpdateStatusFromPending(ctx context.Context, id int64, to domain.OrderStatus) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, domain.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if tx.Error != nil {
		return false, errors.Wrap(ErrPersistence, tx.Error.Error())
	}
	return tx.RowsAffected == 1, nil
}

func (r *GormRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Order{})
	if tx.Error != nil {
		return false, errors.Wrap(ErrPersistence, tx.Error.Error())
	}
	return tx.RowsAffected > 0, nil
}
