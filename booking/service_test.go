package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tattootime/apperr"
	"tattootime/models"
	"tattootime/mq"
)

// memStore is an in-memory Store. WithTxn serializes callers and rolls the
// primary writes back when fn fails, mirroring the document store's
// transaction semantics.
type memStore struct {
	mu      sync.Mutex
	slots   map[string]*models.Slot
	rule    *models.PricingRule
	ruleErr error

	appointments  []*models.Appointment
	history       []*models.CustomerHistory
	notifications []*models.Notification

	failAppointment  bool
	failHistory      bool
	failNotification bool
}

func newMemStore(slots ...*models.Slot) *memStore {
	m := &memStore{slots: make(map[string]*models.Slot)}
	for _, s := range slots {
		copied := *s
		m.slots[s.ID] = &copied
	}
	return m
}

func (m *memStore) WithTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[string]models.Slot, len(m.slots))
	for id, s := range m.slots {
		snapshot[id] = *s
	}
	apptLen, histLen := len(m.appointments), len(m.history)

	if err := fn(ctx); err != nil {
		for id := range m.slots {
			prev := snapshot[id]
			*m.slots[id] = prev
		}
		m.appointments = m.appointments[:apptLen]
		m.history = m.history[:histLen]
		return err
	}
	return nil
}

func (m *memStore) SlotByID(ctx context.Context, id string) (*models.Slot, error) {
	slot, ok := m.slots[id]
	if !ok {
		return nil, apperr.E(apperr.NotFound, "The requested slot does not exist")
	}
	copied := *slot
	return &copied, nil
}

func (m *memStore) MarkSlotBooked(ctx context.Context, id string, by models.BookedBy) error {
	slot, ok := m.slots[id]
	if !ok {
		return apperr.E(apperr.NotFound, "The requested slot does not exist")
	}
	if slot.IsBooked {
		return apperr.E(apperr.AlreadyExists, "This slot is already booked")
	}
	slot.IsBooked = true
	slot.BookedByUserID = by.UserID
	slot.BookedByUserName = by.UserName
	slot.BookedByEmail = by.Email
	return nil
}

func (m *memStore) ActivePricingRule(ctx context.Context) (*models.PricingRule, error) {
	return m.rule, m.ruleErr
}

func (m *memStore) InsertAppointment(ctx context.Context, appt *models.Appointment) error {
	if m.failAppointment {
		return errors.New("appointment insert refused")
	}
	m.appointments = append(m.appointments, appt)
	return nil
}

func (m *memStore) InsertHistory(ctx context.Context, entry *models.CustomerHistory) error {
	if m.failHistory {
		return errors.New("history insert refused")
	}
	m.history = append(m.history, entry)
	return nil
}

func (m *memStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	if m.failNotification {
		return errors.New("notification insert refused")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
	return nil
}

type fakeOutbox struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (f *fakeOutbox) Enqueue(ctx context.Context, to, subject, html string) error {
	if f.fail {
		return errors.New("outbox unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	return nil
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []mq.SlotEvent
}

func (f *fakeEmitter) Emit(ctx context.Context, event mq.SlotEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func testSlot() *models.Slot {
	return &models.Slot{
		ID:          "slot-1",
		Date:        "2026-10-02",
		StartTime:   "14:00",
		EndTime:     "16:00",
		ServiceType: ServiceTypeTattoo,
	}
}

func testService(store Store) (*BookingService, *fakeOutbox, *fakeEmitter) {
	outbox := &fakeOutbox{}
	emitter := &fakeEmitter{}
	return NewBookingService(store, outbox, emitter, "admin@studio.test", "TestStudio"), outbox, emitter
}

func tattooRequest() BookRequest {
	return BookRequest{
		SlotID:            "slot-1",
		ServiceType:       ServiceTypeTattoo,
		ClientName:        "Mara",
		ClientEmail:       "mara@example.com",
		BodyPart:          "arm",
		TattooStyle:       "realistic",
		Size:              &models.Size{Width: 10, Height: 10},
		Complexity:        "complex",
		EstimatedDuration: 120,
		Colors:            []string{"black"},
	}
}

func activeRule() *models.PricingRule {
	return &models.PricingRule{
		ID:        "pricing-rule-default",
		BasePrice: 120,
		BodyPartMultipliers: map[string]float64{"arm": 1.0},
		SizeMultipliers: map[string]float64{
			"small": 0.8, "medium": 1.0, "large": 1.3, "extra_large": 1.6,
		},
		StyleMultipliers:      map[string]float64{"realistic": 1.4},
		ComplexityMultipliers: map[string]float64{"complex": 1.3},
		DepositPercentage:     30,
		IsActive:              true,
	}
}

func TestBookSuccess(t *testing.T) {
	store := newMemStore(testSlot())
	store.rule = activeRule()
	svc, outbox, emitter := testService(store)

	appt, err := svc.Book(context.Background(), "user-1", "mara@example.com", tattooRequest())
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if appt.ID == "" || appt.ID == "slot-1" {
		t.Errorf("appointment id must be set and independent of slot id, got %q", appt.ID)
	}
	if appt.Date != "2026-10-02" || appt.Time != "14:00" {
		t.Errorf("date/time must come from the slot, got %s %s", appt.Date, appt.Time)
	}
	if appt.Pricing == nil {
		t.Fatal("expected pricing on a complete tattoo request")
	}
	// 120 * 2h = 240; area 100 -> medium; * 1.0 * 1.0 * 1.4 * 1.3 = 436.8
	if appt.Pricing.TotalPrice != 436.80 {
		t.Errorf("totalPrice = %v, want 436.80", appt.Pricing.TotalPrice)
	}
	if appt.Pricing.DepositAmount != 131.04 {
		t.Errorf("depositAmount = %v, want 131.04", appt.Pricing.DepositAmount)
	}

	slot := store.slots["slot-1"]
	if !slot.IsBooked || slot.BookedByUserID != "user-1" {
		t.Errorf("slot not marked booked correctly: %+v", slot)
	}
	if len(store.history) != 1 {
		t.Errorf("expected one history row, got %d", len(store.history))
	}
	if len(store.notifications) != 2 {
		t.Fatalf("expected reminder + aftercare notifications, got %d", len(store.notifications))
	}

	start, _ := appointmentStart("2026-10-02", "14:00")
	if !store.notifications[0].ScheduledFor.Equal(start.Add(-24 * time.Hour)) {
		t.Errorf("reminder scheduledFor = %v, want 24h before %v", store.notifications[0].ScheduledFor, start)
	}
	if !store.notifications[1].ScheduledFor.Equal(start.Add(24 * time.Hour)) {
		t.Errorf("aftercare scheduledFor = %v, want 24h after %v", store.notifications[1].ScheduledFor, start)
	}

	if len(outbox.sent) != 2 {
		t.Errorf("expected customer + admin mail, got %v", outbox.sent)
	}
	if len(emitter.events) != 1 || emitter.events[0].Type != "slot_booked" {
		t.Errorf("expected one slot_booked event, got %+v", emitter.events)
	}
}

func TestBookValidation(t *testing.T) {
	store := newMemStore(testSlot())
	svc, _, _ := testService(store)

	if _, err := svc.Book(context.Background(), "", "", tattooRequest()); apperr.KindOf(err) != apperr.Unauthenticated {
		t.Errorf("missing user: kind = %v, want unauthenticated", apperr.KindOf(err))
	}

	req := tattooRequest()
	req.ClientName = ""
	if _, err := svc.Book(context.Background(), "user-1", "", req); apperr.KindOf(err) != apperr.InvalidArgument {
		t.Errorf("missing clientName: kind = %v, want invalid-argument", apperr.KindOf(err))
	}
	if len(store.appointments) != 0 {
		t.Error("validation failures must not write anything")
	}
}

func TestBookSlotNotFound(t *testing.T) {
	svc, _, _ := testService(newMemStore())
	_, err := svc.Book(context.Background(), "user-1", "", tattooRequest())
	if apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("kind = %v, want not-found", apperr.KindOf(err))
	}
}

func TestBookSlotAlreadyBooked(t *testing.T) {
	slot := testSlot()
	slot.IsBooked = true
	store := newMemStore(slot)
	svc, _, _ := testService(store)

	_, err := svc.Book(context.Background(), "user-2", "", tattooRequest())
	if apperr.KindOf(err) != apperr.AlreadyExists {
		t.Errorf("kind = %v, want already-exists", apperr.KindOf(err))
	}
	if len(store.appointments) != 0 {
		t.Error("no appointment may be created for a taken slot")
	}
}

func TestNoDoubleBooking(t *testing.T) {
	store := newMemStore(testSlot())
	svc, _, _ := testService(store)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Book(context.Background(), "user-1", "", tattooRequest())
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else if apperr.KindOf(err) != apperr.AlreadyExists {
			t.Errorf("loser got kind %v, want already-exists", apperr.KindOf(err))
		}
	}
	if successes != 1 {
		t.Fatalf("%d bookings succeeded, want exactly 1", successes)
	}
	if len(store.appointments) != 1 {
		t.Fatalf("%d appointments created, want exactly 1", len(store.appointments))
	}
	if !store.slots["slot-1"].IsBooked {
		t.Error("slot must end booked")
	}
}

func TestBookWithoutPricingRule(t *testing.T) {
	store := newMemStore(testSlot()) // no active rule
	svc, _, _ := testService(store)

	appt, err := svc.Book(context.Background(), "user-1", "", tattooRequest())
	if err != nil {
		t.Fatalf("booking must succeed without a pricing rule: %v", err)
	}
	if appt.Pricing != nil {
		t.Error("appointment must have no pricing without an active rule")
	}
}

func TestBookWithIncompletePricingInputs(t *testing.T) {
	store := newMemStore(testSlot())
	store.rule = activeRule()
	svc, _, _ := testService(store)

	req := tattooRequest()
	req.Size = nil
	appt, err := svc.Book(context.Background(), "user-1", "", req)
	if err != nil {
		t.Fatalf("booking must succeed with incomplete pricing inputs: %v", err)
	}
	if appt.Pricing != nil {
		t.Error("incomplete tattoo inputs must not produce pricing")
	}
}

func TestBookPricingLookupErrorDegrades(t *testing.T) {
	store := newMemStore(testSlot())
	store.ruleErr = errors.New("rules collection unavailable")
	svc, _, _ := testService(store)

	appt, err := svc.Book(context.Background(), "user-1", "", tattooRequest())
	if err != nil {
		t.Fatalf("pricing lookup failure must not fail the booking: %v", err)
	}
	if appt.Pricing != nil {
		t.Error("failed pricing lookup must leave pricing empty")
	}
}

func TestBookAppointmentInsertFailureRollsBack(t *testing.T) {
	store := newMemStore(testSlot())
	store.failAppointment = true
	svc, _, _ := testService(store)

	_, err := svc.Book(context.Background(), "user-1", "", tattooRequest())
	if apperr.KindOf(err) != apperr.Internal {
		t.Errorf("kind = %v, want internal", apperr.KindOf(err))
	}
	if store.slots["slot-1"].IsBooked {
		t.Error("slot must not stay booked when the appointment write fails")
	}
}

func TestBookBestEffortSideEffects(t *testing.T) {
	store := newMemStore(testSlot())
	store.failHistory = true
	store.failNotification = true
	svc, outbox, _ := testService(store)
	outbox.fail = true

	appt, err := svc.Book(context.Background(), "user-1", "", tattooRequest())
	if err != nil {
		t.Fatalf("side effect failures must not fail the booking: %v", err)
	}
	if appt == nil || !store.slots["slot-1"].IsBooked {
		t.Error("booking must complete despite failing side effects")
	}
}
