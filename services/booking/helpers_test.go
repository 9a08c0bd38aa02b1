package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	memoryRepo "github.com/Pushkar2103/parkezy-new/database/repository/memory"
	"github.com/Pushkar2103/parkezy-new/models"
	"github.com/Pushkar2103/parkezy-new/services/events"
	"github.com/Pushkar2103/parkezy-new/services/payment"

	"go.uber.org/zap"
)

const (
	testOwner         = "owner-1"
	testRenter        = "renter-1"
	testArea          = "area-1"
	testWebhookSecret = "whsec_engine"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeGateway answers orders from memory and verifies webhooks with the real Stripe parser.
type fakeGateway struct {
	mu        sync.Mutex
	createErr error
	queryErr  error
	outcomes  map[string]models.PaymentOutcome
	created   int
	parser    *payment.StripeGateway
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		outcomes: make(map[string]models.PaymentOutcome),
		parser:   payment.NewStripeGateway(payment.StripeConfig{WebhookSecret: testWebhookSecret}, zap.NewNop()),
	}
}

func (g *fakeGateway) CreateOrder(_ context.Context, req models.OrderRequest) (*models.OrderSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created++
	return &models.OrderSession{SessionID: "cs_" + req.OrderID, CheckoutURL: "https://pay.test/" + req.OrderID}, nil
}

func (g *fakeGateway) QueryOrder(_ context.Context, orderID, _ string) (models.PaymentOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.queryErr != nil {
		return models.OutcomePending, g.queryErr
	}
	if outcome, ok := g.outcomes[orderID]; ok {
		return outcome, nil
	}
	return models.OutcomePending, nil
}

func (g *fakeGateway) ParseWebhook(payload []byte, signature string) (*models.WebhookEvent, error) {
	return g.parser.ParseWebhook(payload, signature)
}

func (g *fakeGateway) setOutcome(orderID string, outcome models.PaymentOutcome) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.outcomes[orderID] = outcome
}

func (g *fakeGateway) setCreateErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createErr = err
}

type stubRegistry map[string]string

func (r stubRegistry) OwnerOf(_ context.Context, areaID string) (string, error) {
	owner, ok := r[areaID]
	if !ok {
		return "", ErrNotFound
	}
	return owner, nil
}

func (r stubRegistry) AreaIDsOf(_ context.Context, ownerID string) ([]string, error) {
	var ids []string
	for area, owner := range r {
		if owner == ownerID {
			ids = append(ids, area)
		}
	}
	return ids, nil
}

// failingInserts makes every ledger write fail.
type failingInserts struct {
	*memoryRepo.BookingStore
}

func (failingInserts) Insert(context.Context, *models.Booking) error {
	return errors.New("ledger unavailable")
}

// lostAckInserts persists the booking and still reports the write as failed.
type lostAckInserts struct {
	*memoryRepo.BookingStore
}

func (s lostAckInserts) Insert(ctx context.Context, b *models.Booking) error {
	if err := s.BookingStore.Insert(ctx, b); err != nil {
		return err
	}
	return errors.New("write timeout")
}

// flakySlots fails the next n releases.
type flakySlots struct {
	*memoryRepo.SlotStore
	mu       sync.Mutex
	failures int
}

func (s *flakySlots) Release(ctx context.Context, slotID, bookingID string) (bool, error) {
	s.mu.Lock()
	if s.failures > 0 {
		s.failures--
		s.mu.Unlock()
		return false, errors.New("slot store unavailable")
	}
	s.mu.Unlock()
	return s.SlotStore.Release(ctx, slotID, bookingID)
}

type harness struct {
	engine   *DefaultReservationEngine
	slots    *memoryRepo.SlotStore
	bookings *memoryRepo.BookingStore
	gateway  *fakeGateway
	events   *events.Recorder
	clock    *testClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	slots := memoryRepo.NewSlotStore()
	var seed []models.Slot
	for i := 1; i <= 3; i++ {
		seed = append(seed, models.Slot{ID: fmt.Sprintf("s%d", i), AreaID: testArea, Label: fmt.Sprintf("S%d", i)})
	}
	if err := slots.CreateMany(context.Background(), seed); err != nil {
		t.Fatalf("seed slots: %v", err)
	}

	h := &harness{
		slots:    slots,
		bookings: memoryRepo.NewBookingStore(),
		gateway:  newFakeGateway(),
		events:   &events.Recorder{},
		clock:    &testClock{now: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)},
	}
	h.engine = &DefaultReservationEngine{
		Slots:    h.slots,
		Bookings: h.bookings,
		Registry: stubRegistry{testArea: testOwner},
		Gateway:  h.gateway,
		Events:   h.events,
		Logger:   zap.NewNop(),
		Config: EngineConfig{
			HoldGracePeriod:      10 * time.Minute,
			CompensationAttempts: 3,
			CompensationBackoff:  time.Millisecond,
			Currency:             "inr",
		},
		Now: h.clock.Now,
	}
	return h
}

func (h *harness) request(slotID string, amount int64) models.ReservationRequest {
	now := h.clock.Now()
	return models.ReservationRequest{
		SlotID:      slotID,
		VehicleTag:  "MH12AB1234",
		WindowStart: now.Add(time.Hour),
		WindowEnd:   now.Add(3 * time.Hour),
		AmountDue:   amount,
	}
}

func (h *harness) reserve(t *testing.T, slotID string, amount int64) *models.Booking {
	t.Helper()
	b, err := h.engine.ClaimAndReserve(context.Background(), testRenter, h.request(slotID, amount))
	if err != nil {
		t.Fatalf("ClaimAndReserve() error = %v", err)
	}
	return b
}

// activeFree reserves a free booking, which is active right away.
func (h *harness) activeFree(t *testing.T, slotID string) *models.Booking {
	t.Helper()
	b := h.reserve(t, slotID, 0)
	if b.Status != models.BookingActive {
		t.Fatalf("free booking status = %s, want active", b.Status)
	}
	return b
}

// activePaid reserves a priced booking and confirms it through the poll.
func (h *harness) activePaid(t *testing.T, slotID string) *models.Booking {
	t.Helper()
	b := h.reserve(t, slotID, 5000)
	h.gateway.setOutcome(b.ExternalOrderID, models.OutcomePaid)
	paid, err := h.engine.ConfirmPayment(context.Background(), b.ExternalOrderID)
	if err != nil {
		t.Fatalf("ConfirmPayment() error = %v", err)
	}
	return paid
}

func (h *harness) slot(t *testing.T, slotID string) *models.Slot {
	t.Helper()
	s, err := h.slots.GetByID(context.Background(), slotID)
	if err != nil {
		t.Fatalf("GetByID(%s) error = %v", slotID, err)
	}
	return s
}

func (h *harness) booking(t *testing.T, id string) *models.Booking {
	t.Helper()
	b, err := h.bookings.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID(%s) error = %v", id, err)
	}
	return b
}

func checkoutWebhook(eventType, orderID, paymentStatus string) ([]byte, string) {
	payload := []byte(fmt.Sprintf(`{"id":"evt_%s","object":"event","type":%q,"data":{"object":{"id":"cs_%s","object":"checkout.session","status":"complete","payment_status":%q,"client_reference_id":%q}}}`,
		orderID, eventType, orderID, paymentStatus, orderID))
	return payload, payment.SignWebhookPayload(testWebhookSecret, payload, time.Now())
}
