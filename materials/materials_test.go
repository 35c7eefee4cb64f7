package materials

import (
	"context"
	"sync"
	"testing"
	"time"

	"tattootime/apperr"
	"tattootime/models"
)

// memStore mirrors the conditional stock decrement in memory. WithTxn
// snapshots stock levels and rolls them back when fn fails.
type memStore struct {
	mu           sync.Mutex
	appointments map[string]*models.Appointment
	materials    map[string]*models.Material
	history      []*models.CustomerHistory
}

func newMemStore() *memStore {
	return &memStore{
		appointments: make(map[string]*models.Appointment),
		materials:    make(map[string]*models.Material),
	}
}

func (m *memStore) WithTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	stocks := make(map[string]float64, len(m.materials))
	for id, mat := range m.materials {
		stocks[id] = mat.CurrentStock
	}
	histLen := len(m.history)
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		for id, stock := range stocks {
			m.materials[id].CurrentStock = stock
		}
		m.history = m.history[:histLen]
		for _, appt := range m.appointments {
			appt.Materials = nil
		}
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) AppointmentByID(_ context.Context, id string) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.appointments[id]
	if !ok {
		return nil, apperr.E(apperr.NotFound, "The requested appointment does not exist")
	}
	cp := *appt
	return &cp, nil
}

func (m *memStore) MaterialByID(_ context.Context, id string) (*models.Material, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mat, ok := m.materials[id]
	if !ok {
		return nil, apperr.E(apperr.NotFound, "Material "+id+" does not exist")
	}
	cp := *mat
	return &cp, nil
}

func (m *memStore) DecrementStock(_ context.Context, id string, qty float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mat, ok := m.materials[id]
	if !ok || mat.CurrentStock < qty {
		return apperr.E(apperr.FailedPrecondition, "Not enough stock")
	}
	mat.CurrentStock -= qty
	return nil
}

func (m *memStore) SetAppointmentMaterials(_ context.Context, appointmentID string, usage models.MaterialsUsed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appointments[appointmentID].Materials = &usage
	return nil
}

func (m *memStore) InsertHistory(_ context.Context, entry *models.CustomerHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, entry)
	return nil
}

func (m *memStore) stock(id string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.materials[id].CurrentStock
}

func seededStore() *memStore {
	store := newMemStore()
	store.appointments["a1"] = &models.Appointment{ID: "a1", UserID: "u1"}
	store.materials["ink"] = &models.Material{ID: "ink", Name: "Black Ink", Unit: "ml", CurrentStock: 100, CostPerUnit: 0.5}
	store.materials["gloves"] = &models.Material{ID: "gloves", Name: "Gloves", Unit: "pairs", CurrentStock: 10, CostPerUnit: 0.15}
	return store
}

func TestRecordUsageDecrementsStock(t *testing.T) {
	store := seededStore()

	usage, err := recordUsage(context.Background(), store, "a1",
		[]usageLine{{MaterialID: "ink", QuantityUsed: 20}, {MaterialID: "gloves", QuantityUsed: 2}}, "admin1")
	if err != nil {
		t.Fatalf("recordUsage: %v", err)
	}
	if got := store.stock("ink"); got != 80 {
		t.Errorf("ink stock = %v, want 80", got)
	}
	if got := store.stock("gloves"); got != 8 {
		t.Errorf("gloves stock = %v, want 8", got)
	}
	if usage.TotalCost != 10.3 {
		t.Errorf("totalCost = %v, want 10.3", usage.TotalCost)
	}
	if len(store.history) != 1 {
		t.Errorf("history entries = %d, want 1", len(store.history))
	}
	if store.appointments["a1"].Materials == nil || len(store.appointments["a1"].Materials.Items) != 2 {
		t.Errorf("appointment materials not set: %+v", store.appointments["a1"].Materials)
	}
}

func TestRecordUsageFailsNotClampsOnInsufficientStock(t *testing.T) {
	store := seededStore()

	_, err := recordUsage(context.Background(), store, "a1",
		[]usageLine{{MaterialID: "gloves", QuantityUsed: 11}}, "admin1")
	if err == nil {
		t.Fatal("expected error for usage exceeding stock")
	}
	if kind := apperr.KindOf(err); kind != apperr.FailedPrecondition {
		t.Errorf("error kind = %q, want failed-precondition", kind)
	}
	if got := store.stock("gloves"); got != 10 {
		t.Errorf("gloves stock = %v, want 10 (unchanged)", got)
	}
	if len(store.history) != 0 {
		t.Errorf("history entries = %d, want 0", len(store.history))
	}
}

func TestRecordUsageRollsBackEarlierDecrements(t *testing.T) {
	store := seededStore()

	_, err := recordUsage(context.Background(), store, "a1",
		[]usageLine{{MaterialID: "ink", QuantityUsed: 20}, {MaterialID: "gloves", QuantityUsed: 999}}, "admin1")
	if err == nil {
		t.Fatal("expected error for second line exceeding stock")
	}
	if got := store.stock("ink"); got != 100 {
		t.Errorf("ink stock = %v, want 100 (rolled back)", got)
	}
}

func TestRecordUsageUnknownAppointment(t *testing.T) {
	store := seededStore()

	_, err := recordUsage(context.Background(), store, "nope",
		[]usageLine{{MaterialID: "ink", QuantityUsed: 1}}, "admin1")
	if kind := apperr.KindOf(err); kind != apperr.NotFound {
		t.Errorf("error kind = %q, want not-found", kind)
	}
}

func TestBuildUsageItem(t *testing.T) {
	mat := models.Material{
		ID:          "m1",
		Name:        "Black Ink",
		Unit:        "ml",
		CostPerUnit: 2.5,
	}
	at := time.Date(2026, 5, 2, 15, 30, 0, 0, time.UTC)

	item := buildUsageItem(mat, 12, at)
	if item.MaterialID != "m1" || item.MaterialName != "Black Ink" {
		t.Errorf("material identity not carried over: %+v", item)
	}
	if item.Unit != "ml" {
		t.Errorf("unit = %q, want ml", item.Unit)
	}
	if item.TotalCost != 30 {
		t.Errorf("totalCost = %v, want 30", item.TotalCost)
	}
	if !item.UsedAt.Equal(at) {
		t.Errorf("usedAt = %v, want %v", item.UsedAt, at)
	}
}

func TestBuildUsageItemFractionalQuantities(t *testing.T) {
	mat := models.Material{ID: "m2", Name: "Needles", Unit: "pieces", CostPerUnit: 0.75}
	item := buildUsageItem(mat, 3, time.Now())
	if item.TotalCost != 2.25 {
		t.Errorf("totalCost = %v, want 2.25", item.TotalCost)
	}
}
