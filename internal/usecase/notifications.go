package usecase

import (
	"context"
	"fmt"
	"time"

	"officine/internal/domain"

	"go.uber.org/zap"
)

// Sweeper scans every tenant for low stock and soon-to-expire products and
// records one unread notification per finding. Re-running the sweep does not
// duplicate notifications that are still unread.
type Sweeper struct {
	Stocks        StockSweepRepository
	Products      ProductSweepRepository
	Notifications NotificationRepository
	ExpiryHorizon time.Duration
	Logger        *zap.Logger
}

func NewSweeper(stocks StockSweepRepository, products ProductSweepRepository, notifications NotificationRepository, horizon time.Duration, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		Stocks:        stocks,
		Products:      products,
		Notifications: notifications,
		ExpiryHorizon: horizon,
		Logger:        logger,
	}
}

// Sweep runs the scan across all tenants. A failing tenant is logged and
// skipped so one broken dataset cannot starve the rest.
func (s *Sweeper) Sweep(ctx context.Context) error {
	tenants, err := s.Notifications.TenantIDs(ctx)
	if err != nil {
		return err
	}
	created := 0
	for _, tenantID := range tenants {
		n, err := s.sweepTenant(ctx, tenantID)
		if err != nil {
			s.Logger.Warn("notification sweep failed for tenant",
				zap.String("tenant_id", tenantID), zap.Error(err))
			continue
		}
		created += n
	}
	s.Logger.Info("notification sweep done",
		zap.Int("tenants", len(tenants)), zap.Int("created", created))
	return nil
}

func (s *Sweeper) sweepTenant(ctx context.Context, tenantID string) (int, error) {
	created := 0

	stocks, err := s.Stocks.ListBelowThreshold(ctx, tenantID)
	if err != nil {
		return created, err
	}
	productIDs := make([]string, 0, len(stocks))
	for _, stock := range stocks {
		productIDs = append(productIDs, stock.ProductID)
	}
	names, err := s.Products.NamesByID(ctx, tenantID, productIDs)
	if err != nil {
		return created, err
	}
	for _, stock := range stocks {
		name := names[stock.ProductID]
		if name == "" {
			name = stock.ProductID
		}
		ok, err := s.Notifications.CreateIfAbsent(ctx, domain.Notification{
			TenantID:  tenantID,
			Kind:      domain.NotificationStockBas,
			SubjectID: stock.ID,
			Message: fmt.Sprintf("Stock bas pour %s : %d restant(s), seuil %d",
				name, stock.Quantite, stock.SeuilAlerte),
		})
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	horizon := time.Now().UTC().Add(s.ExpiryHorizon)
	products, err := s.Products.ListExpiringBefore(ctx, tenantID, horizon)
	if err != nil {
		return created, err
	}
	for _, product := range products {
		if product.DatePeremption == nil {
			continue
		}
		ok, err := s.Notifications.CreateIfAbsent(ctx, domain.Notification{
			TenantID:  tenantID,
			Kind:      domain.NotificationPeremption,
			SubjectID: product.ID,
			Message: fmt.Sprintf("Péremption proche pour %s : expire le %s",
				product.Nom, product.DatePeremption.Format("2006-01-02")),
		})
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}
