package repository

import (
	"github.com/farhansajid/visamock/internal/model"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *model.Order) error
	FindByTranID(tranID string) (*model.Order, error)
	FindAll() ([]model.Order, error)
	SetSessionKey(tranID, sessionKey string) error
	SetStatus(tranID, status string, valID *string) error
	MarkPaid(tranID, valID string) (bool, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *model.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) FindByTranID(tranID string) (*model.Order, error) {
	var order model.Order
	if err := r.db.Where("tran_id = ?", tranID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindAll() ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) SetSessionKey(tranID, sessionKey string) error {
	return r.db.Model(&model.Order{}).Where("tran_id = ?", tranID).
		Update("session_key", sessionKey).Error
}

func (r *orderRepository) SetStatus(tranID, status string, valID *string) error {
	fields := map[string]interface{}{"status": status}
	if valID != nil {
		fields["val_id"] = *valID
	}
	return r.db.Model(&model.Order{}).Where("tran_id = ?", tranID).
		Updates(fields).Error
}

// MarkPaid performs the single-winner transition to paid. Duplicate IPN
// deliveries race here; only the caller that flipped the row may credit
// the ledger.
func (r *orderRepository) MarkPaid(tranID, valID string) (bool, error) {
	res := r.db.Model(&model.Order{}).
		Where("tran_id = ? AND status <> ?", tranID, model.OrderStatusPaid).
		Updates(map[string]interface{}{
			"status": model.OrderStatusPaid,
			"val_id": valID,
		})
	return res.RowsAffected > 0, res.Error
}
