package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"officine/internal/domain"
)

type fakeSweepStocks struct {
	byTenant map[string][]domain.Stock
}

func (f *fakeSweepStocks) ListBelowThreshold(_ context.Context, tenantID string) ([]domain.Stock, error) {
	return f.byTenant[tenantID], nil
}

type fakeSweepProducts struct {
	expiring map[string][]domain.Product
	names    map[string]string
}

func (f *fakeSweepProducts) ListExpiringBefore(_ context.Context, tenantID string, _ time.Time) ([]domain.Product, error) {
	return f.expiring[tenantID], nil
}

func (f *fakeSweepProducts) NamesByID(_ context.Context, _ string, ids []string) (map[string]string, error) {
	out := map[string]string{}
	for _, id := range ids {
		if name, ok := f.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

type fakeNotifications struct {
	tenants []string
	created []domain.Notification
}

func (f *fakeNotifications) CreateIfAbsent(_ context.Context, notification domain.Notification) (bool, error) {
	for _, existing := range f.created {
		if existing.TenantID == notification.TenantID &&
			existing.Kind == notification.Kind &&
			existing.SubjectID == notification.SubjectID {
			return false, nil
		}
	}
	f.created = append(f.created, notification)
	return true, nil
}

func (f *fakeNotifications) TenantIDs(_ context.Context) ([]string, error) {
	return f.tenants, nil
}

func TestSweepCreatesLowStockNotifications(t *testing.T) {
	expiry := time.Now().Add(5 * 24 * time.Hour)
	stocks := &fakeSweepStocks{byTenant: map[string][]domain.Stock{
		"tenant-1": {
			{ID: "stock-1", TenantID: "tenant-1", ProductID: "prod-1", Quantite: 2, SeuilAlerte: 10},
		},
	}}
	products := &fakeSweepProducts{
		names: map[string]string{"prod-1": "Paracétamol 500mg"},
		expiring: map[string][]domain.Product{
			"tenant-1": {
				{ID: "prod-2", TenantID: "tenant-1", Nom: "Amoxicilline", DatePeremption: &expiry},
			},
		},
	}
	notifications := &fakeNotifications{tenants: []string{"tenant-1"}}
	sweeper := NewSweeper(stocks, products, notifications, 30*24*time.Hour, nil)

	if err := sweeper.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(notifications.created) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifications.created))
	}

	var stockNote, expiryNote *domain.Notification
	for i := range notifications.created {
		switch notifications.created[i].Kind {
		case domain.NotificationStockBas:
			stockNote = &notifications.created[i]
		case domain.NotificationPeremption:
			expiryNote = &notifications.created[i]
		}
	}
	if stockNote == nil || expiryNote == nil {
		t.Fatalf("missing notification kinds: %+v", notifications.created)
	}
	if stockNote.SubjectID != "stock-1" {
		t.Fatalf("stock notification subject: %s", stockNote.SubjectID)
	}
	if !strings.Contains(stockNote.Message, "Paracétamol 500mg") {
		t.Fatalf("stock message misses product name: %s", stockNote.Message)
	}
	if expiryNote.SubjectID != "prod-2" {
		t.Fatalf("expiry notification subject: %s", expiryNote.SubjectID)
	}
	if !strings.Contains(expiryNote.Message, "Amoxicilline") {
		t.Fatalf("expiry message misses product name: %s", expiryNote.Message)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	stocks := &fakeSweepStocks{byTenant: map[string][]domain.Stock{
		"tenant-1": {
			{ID: "stock-1", TenantID: "tenant-1", ProductID: "prod-1", Quantite: 0, SeuilAlerte: 5},
		},
	}}
	products := &fakeSweepProducts{}
	notifications := &fakeNotifications{tenants: []string{"tenant-1"}}
	sweeper := NewSweeper(stocks, products, notifications, 30*24*time.Hour, nil)

	for i := 0; i < 3; i++ {
		if err := sweeper.Sweep(context.Background()); err != nil {
			t.Fatalf("sweep %d: %v", i, err)
		}
	}
	if len(notifications.created) != 1 {
		t.Fatalf("expected 1 notification after repeated sweeps, got %d", len(notifications.created))
	}
}

func TestSweepScopedPerTenant(t *testing.T) {
	stocks := &fakeSweepStocks{byTenant: map[string][]domain.Stock{
		"tenant-1": {{ID: "s1", TenantID: "tenant-1", ProductID: "p1", Quantite: 1, SeuilAlerte: 5}},
		"tenant-2": {{ID: "s2", TenantID: "tenant-2", ProductID: "p2", Quantite: 1, SeuilAlerte: 5}},
	}}
	notifications := &fakeNotifications{tenants: []string{"tenant-1", "tenant-2"}}
	sweeper := NewSweeper(stocks, &fakeSweepProducts{}, notifications, time.Hour, nil)

	if err := sweeper.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(notifications.created) != 2 {
		t.Fatalf("expected one notification per tenant, got %d", len(notifications.created))
	}
	for _, notification := range notifications.created {
		if notification.TenantID != "tenant-1" && notification.TenantID != "tenant-2" {
			t.Fatalf("unexpected tenant: %s", notification.TenantID)
		}
	}
}
