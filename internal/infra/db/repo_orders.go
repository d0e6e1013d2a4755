package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"officine/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, actor domain.ActorContext, order domain.Order) (*domain.Order, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if len(order.Lines) == 0 {
		return nil, fmt.Errorf("%w: une commande requiert au moins une ligne", domain.ErrValidation)
	}
	now := time.Now().UTC()
	order.ID = uuid.NewString()
	order.TenantID = actor.TenantID
	order.Reference = domain.NewReference(domain.RefPrefixCommande, now)
	order.Statut = domain.OrderEnAttente
	order.Actif = true
	order.CreatedAt = now
	order.UpdatedAt = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if order.SupplierID != "" {
			if err := requireTenantRow(tx, &SupplierModel{}, order.SupplierID, actor.TenantID); err != nil {
				return err
			}
		}
		if err := requireTenantRow(tx, &EstablishmentModel{}, order.EstablishmentID, actor.TenantID); err != nil {
			return err
		}
		model := orderModelFromDomain(order)
		if err := tx.Create(&model).Error; err != nil {
			return translateErr(err)
		}
		for i := range order.Lines {
			if err := requireTenantRow(tx, &ProductModel{}, order.Lines[i].ProductID, actor.TenantID); err != nil {
				return err
			}
			order.Lines[i].ID = uuid.NewString()
			order.Lines[i].OrderID = order.ID
			line := orderLineModelFromDomain(order.Lines[i])
			if err := tx.Create(&line).Error; err != nil {
				return translateErr(err)
			}
		}
		return appendAudit(tx, actor, domain.ModuleCommandes, domain.ActionCreer,
			order.ID, order.Reference, nil, order)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, actor domain.ActorContext, id string) (*domain.Order, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model OrderModel
	err := r.db.WithContext(ctx).
		First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	lines, err := r.listLines(ctx, model.ID)
	if err != nil {
		return nil, err
	}
	order := orderFromModel(model)
	order.Lines = lines
	return &order, nil
}

func (r *OrderRepository) List(ctx context.Context, actor domain.ActorContext, statut string) ([]domain.Order, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND actif = TRUE", actor.TenantID)
	if statut != "" {
		q = q.Where("statut = ?", statut)
	}
	var models []OrderModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(models))
	for _, model := range models {
		out = append(out, orderFromModel(model))
	}
	return out, nil
}

// Transition advances an order's status. Delivering (validee -> livree)
// receives every line into the destination establishment's stock inside the
// same transaction.
func (r *OrderRepository) Transition(ctx context.Context, actor domain.ActorContext, id string, next domain.OrderStatus) (*domain.Order, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var updated domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model OrderModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		current := domain.OrderStatus(model.Statut)
		if !current.CanTransitionTo(next) {
			return fmt.Errorf("%w: transition %s -> %s interdite", domain.ErrValidation, current, next)
		}
		before := orderFromModel(model)
		if next == domain.OrderLivree {
			lines, err := listOrderLinesTx(tx, model.ID)
			if err != nil {
				return err
			}
			for _, line := range lines {
				if err := adjustStockForProductTx(tx, actor.TenantID, line.ProductID, model.EstablishmentID, line.Quantite); err != nil {
					return err
				}
			}
		}
		model.Statut = string(next)
		model.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&model).Error; err != nil {
			return err
		}
		updated = orderFromModel(model)
		return appendAudit(tx, actor, domain.ModuleCommandes, domain.ActionModifier,
			model.ID, model.Reference, before, updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *OrderRepository) SoftDelete(ctx context.Context, actor domain.ActorContext, id string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model OrderModel
		err := tx.First(&model, "id = ? AND tenant_id = ? AND actif = TRUE", id, actor.TenantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := tx.Model(&OrderModel{}).
			Where("id = ?", model.ID).
			Update("actif", false).Error; err != nil {
			return err
		}
		return appendAudit(tx, actor, domain.ModuleCommandes, domain.ActionSupprimer,
			model.ID, model.Reference, orderFromModel(model), nil)
	})
}

func (r *OrderRepository) listLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	return listOrderLinesTx(r.db.WithContext(ctx), orderID)
}

func listOrderLinesTx(tx *gorm.DB, orderID string) ([]domain.OrderLine, error) {
	var models []OrderLineModel
	if err := tx.Where("order_id = ?", orderID).Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.OrderLine, 0, len(models))
	for _, model := range models {
		out = append(out, domain.OrderLine{
			ID:           model.ID,
			OrderID:      model.OrderID,
			ProductID:    model.ProductID,
			Quantite:     model.Quantite,
			PrixUnitaire: model.PrixUnitaire,
		})
	}
	return out, nil
}

func orderModelFromDomain(order domain.Order) OrderModel {
	return OrderModel{
		ID:              order.ID,
		TenantID:        order.TenantID,
		Reference:       order.Reference,
		SupplierID:      stringPtrIfNotEmpty(order.SupplierID),
		EstablishmentID: order.EstablishmentID,
		Statut:          string(order.Statut),
		Actif:           order.Actif,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func orderLineModelFromDomain(line domain.OrderLine) OrderLineModel {
	return OrderLineModel{
		ID:           line.ID,
		OrderID:      line.OrderID,
		ProductID:    line.ProductID,
		Quantite:     line.Quantite,
		PrixUnitaire: line.PrixUnitaire,
	}
}

func orderFromModel(model OrderModel) domain.Order {
	return domain.Order{
		ID:              model.ID,
		TenantID:        model.TenantID,
		Reference:       model.Reference,
		SupplierID:      stringValue(model.SupplierID),
		EstablishmentID: model.EstablishmentID,
		Statut:          domain.OrderStatus(model.Statut),
		Actif:           model.Actif,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}
