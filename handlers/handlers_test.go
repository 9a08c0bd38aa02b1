package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	memoryRepo "github.com/Pushkar2103/parkezy-new/database/repository/memory"
	"github.com/Pushkar2103/parkezy-new/handlers"
	"github.com/Pushkar2103/parkezy-new/models"
	"github.com/Pushkar2103/parkezy-new/routes"
	"github.com/Pushkar2103/parkezy-new/services/area"
	"github.com/Pushkar2103/parkezy-new/services/booking"
	"github.com/Pushkar2103/parkezy-new/services/events"
	"github.com/Pushkar2103/parkezy-new/services/payment"
	"github.com/Pushkar2103/parkezy-new/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const webhookSecret = "whsec_http"

// stripeStub answers checkout session calls the way the Stripe API does.
type stripeStub struct {
	mu     sync.Mutex
	down   bool
	status map[string]string
}

func (s *stripeStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if s.down {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":{"type":"api_error","message":"unavailable"}}`)
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/checkout/sessions":
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		order := form.Get("client_reference_id")
		fmt.Fprintf(w, `{"id":"cs_%s","object":"checkout.session","url":"https://checkout.test/cs_%s","status":"open","payment_status":"unpaid","client_reference_id":%q}`, order, order, order)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/checkout/sessions/cs_"):
		order := strings.TrimPrefix(r.URL.Path, "/v1/checkout/sessions/cs_")
		paid := s.status[order]
		if paid == "" {
			paid = "unpaid"
		}
		fmt.Fprintf(w, `{"id":"cs_%s","object":"checkout.session","status":"complete","payment_status":%q,"client_reference_id":%q}`, order, paid, order)
	default:
		http.NotFound(w, r)
	}
}

func (s *stripeStub) setDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

func (s *stripeStub) markPaid(order string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[order] = "paid"
}

type testServer struct {
	router *gin.Engine
	stripe *stripeStub
	events *events.Recorder
	slots  *memoryRepo.SlotStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stub := &stripeStub{status: map[string]string{}}
	backend := httptest.NewServer(stub)
	t.Cleanup(backend.Close)

	slots := memoryRepo.NewSlotStore()
	areas, err := area.NewDefaultAreaService(memoryRepo.NewAreaStore(), slots, nil, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	recorder := &events.Recorder{}
	engine := &booking.DefaultReservationEngine{
		Slots:    slots,
		Bookings: memoryRepo.NewBookingStore(),
		Registry: areas,
		Gateway: payment.NewStripeGateway(payment.StripeConfig{
			SecretKey:     "sk_test_http",
			WebhookSecret: webhookSecret,
			SuccessURL:    "http://localhost/ok?order_id={order_id}",
			CancelURL:     "http://localhost/fail?order_id={order_id}",
			BackendURL:    backend.URL,
		}, zap.NewNop()),
		Events: recorder,
		Logger: zap.NewNop(),
		Config: booking.EngineConfig{HoldGracePeriod: 10 * time.Minute, CompensationAttempts: 1, Currency: "inr"},
	}

	hb := handlers.NewHandlerBundle(
		handlers.NewAreaHandler(areas),
		handlers.NewBookingHandler(engine, zap.NewNop()),
		handlers.NewOwnerHandler(engine),
		handlers.NewPaymentHandler(engine, zap.NewNop()),
		handlers.HealthHandler,
	)
	r := gin.New()
	r.Use(utils.ErrorHandler())
	routes.RegisterRoutes(r, hb)
	return &testServer{router: r, stripe: stub, events: recorder, slots: slots}
}

func token(t *testing.T, subject, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken(subject, role, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return tok
}

func (s *testServer) do(t *testing.T, method, path, tok string, body any) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	out := map[string]json.RawMessage{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

// createArea lists an area with n slots as owner-1 and returns its slots.
func (s *testServer) createArea(t *testing.T, n int) (models.Area, []models.Slot) {
	t.Helper()
	w, body := s.do(t, http.MethodPost, "/api/areas", token(t, "owner-1", utils.RoleOwner),
		models.AreaInput{Name: "Station Lot", TotalSlots: n, PricePerHour: 40})
	if w.Code != http.StatusCreated {
		t.Fatalf("create area status = %d: %s", w.Code, w.Body.String())
	}
	return decode[models.Area](t, body["area"]), decode[[]models.Slot](t, body["slots"])
}

func claimBody(slotID string, amount int64) models.ReservationRequest {
	start := time.Now().Add(time.Hour).UTC()
	return models.ReservationRequest{
		SlotID:      slotID,
		VehicleTag:  "KA01AB1234",
		WindowStart: start,
		WindowEnd:   start.Add(2 * time.Hour),
		AmountDue:   amount,
	}
}

func TestClaimFlow(t *testing.T) {
	s := newTestServer(t)
	_, slots := s.createArea(t, 2)
	alice := token(t, "alice", utils.RoleUser)
	bob := token(t, "bob", utils.RoleUser)

	w, body := s.do(t, http.MethodPost, "/api/bookings", alice, claimBody(slots[0].ID, 0))
	if w.Code != http.StatusCreated {
		t.Fatalf("claim status = %d: %s", w.Code, w.Body.String())
	}
	b := decode[models.Booking](t, body["booking"])
	if b.Status != models.BookingActive {
		t.Errorf("free booking status = %s", b.Status)
	}

	w, body = s.do(t, http.MethodPost, "/api/bookings", bob, claimBody(slots[0].ID, 0))
	if w.Code != http.StatusConflict {
		t.Fatalf("second claim status = %d, want 409", w.Code)
	}
	if code := decode[string](t, body["code"]); code != "slot_unavailable" {
		t.Errorf("error code = %q", code)
	}

	w, _ = s.do(t, http.MethodGet, "/api/bookings/"+b.ID, bob, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("stranger GET status = %d, want 403", w.Code)
	}

	w, body = s.do(t, http.MethodGet, "/api/bookings", alice, nil)
	if w.Code != http.StatusOK || len(decode[[]models.Booking](t, body["bookings"])) != 1 {
		t.Errorf("list current = %d %s", w.Code, w.Body.String())
	}

	w, body = s.do(t, http.MethodGet, "/api/areas/"+slots[0].AreaID+"/slots", bob, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list slots status = %d", w.Code)
	}
	listed := decode[[]models.Slot](t, body["slots"])
	if listed[0].State != models.SlotOccupied || listed[1].State != models.SlotAvailable {
		t.Errorf("slot states = %s, %s", listed[0].State, listed[1].State)
	}
}

func TestClaimErrors(t *testing.T) {
	s := newTestServer(t)
	_, slots := s.createArea(t, 1)
	alice := token(t, "alice", utils.RoleUser)

	past := claimBody(slots[0].ID, 0)
	past.WindowStart = time.Now().Add(-time.Hour)

	tests := []struct {
		name string
		tok  string
		body any
		want int
	}{
		{name: "no token", body: claimBody(slots[0].ID, 0), want: http.StatusUnauthorized},
		{name: "malformed body", tok: alice, body: map[string]any{"slotId": 7}, want: http.StatusBadRequest},
		{name: "window in the past", tok: alice, body: past, want: http.StatusBadRequest},
		{name: "unknown slot", tok: alice, body: claimBody("ghost", 0), want: http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := s.do(t, http.MethodPost, "/api/bookings", tc.tok, tc.body)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestPaidFlowWithPollAndWebhook(t *testing.T) {
	s := newTestServer(t)
	_, slots := s.createArea(t, 1)
	alice := token(t, "alice", utils.RoleUser)

	w, body := s.do(t, http.MethodPost, "/api/bookings", alice, claimBody(slots[0].ID, 8000))
	if w.Code != http.StatusCreated {
		t.Fatalf("claim status = %d: %s", w.Code, w.Body.String())
	}
	b := decode[models.Booking](t, body["booking"])
	if b.Status != models.BookingHeld || b.CheckoutURL == "" {
		t.Fatalf("booking = %+v", b)
	}

	w, body = s.do(t, http.MethodPost, "/api/payment/verify", alice, models.VerifyPaymentInput{OrderID: b.ExternalOrderID})
	if w.Code != http.StatusOK || decode[models.Booking](t, body["booking"]).PaymentStatus != models.PaymentPending {
		t.Fatalf("verify before payment = %d %s", w.Code, w.Body.String())
	}

	bob := token(t, "bob", utils.RoleUser)
	w, body = s.do(t, http.MethodPost, "/api/payment/verify", bob, models.VerifyPaymentInput{OrderID: b.ExternalOrderID})
	if w.Code != http.StatusForbidden || body["booking"] != nil {
		t.Fatalf("stranger verify = %d %s, want 403 without the booking", w.Code, w.Body.String())
	}

	// Webhook with a forged signature is refused.
	payload := []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_%s","object":"checkout.session","status":"complete","payment_status":"paid","client_reference_id":%q}}}`,
		b.ExternalOrderID, b.ExternalOrderID))
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", payment.SignWebhookPayload("whsec_wrong", payload, time.Now()))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("forged webhook status = %d, want 400", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", payment.SignWebhookPayload(webhookSecret, payload, time.Now()))
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("webhook status = %d: %s", rec.Code, rec.Body.String())
	}

	s.stripe.markPaid(b.ExternalOrderID)
	w, body = s.do(t, http.MethodPost, "/api/payment/verify", alice, models.VerifyPaymentInput{OrderID: b.ExternalOrderID})
	got := decode[models.Booking](t, body["booking"])
	if w.Code != http.StatusOK || got.Status != models.BookingActive || got.PaymentStatus != models.PaymentPaid {
		t.Fatalf("verify after payment = %d %+v", w.Code, got)
	}
	if n := s.events.Count(events.TopicBookingActivated); n != 1 {
		t.Errorf("activated events = %d, want 1", n)
	}
}

func TestGatewayOutageAnswersAccepted(t *testing.T) {
	s := newTestServer(t)
	_, slots := s.createArea(t, 1)
	alice := token(t, "alice", utils.RoleUser)

	s.stripe.setDown(true)
	w, body := s.do(t, http.MethodPost, "/api/bookings", alice, claimBody(slots[0].ID, 8000))
	if w.Code != http.StatusAccepted {
		t.Fatalf("claim status = %d, want 202: %s", w.Code, w.Body.String())
	}
	b := decode[models.Booking](t, body["booking"])

	w, _ = s.do(t, http.MethodPost, "/api/bookings/"+b.ID+"/checkout", alice, nil)
	if w.Code != http.StatusBadGateway {
		t.Errorf("checkout during outage status = %d, want 502", w.Code)
	}

	s.stripe.setDown(false)
	w, body = s.do(t, http.MethodPost, "/api/bookings/"+b.ID+"/checkout", alice, nil)
	if w.Code != http.StatusOK || decode[models.Booking](t, body["booking"]).CheckoutURL == "" {
		t.Errorf("checkout after outage = %d %s", w.Code, w.Body.String())
	}
}

func TestOwnerDecisionFlow(t *testing.T) {
	s := newTestServer(t)
	_, slots := s.createArea(t, 1)
	alice := token(t, "alice", utils.RoleUser)
	owner := token(t, "owner-1", utils.RoleOwner)
	otherOwner := token(t, "owner-2", utils.RoleOwner)

	_, body := s.do(t, http.MethodPost, "/api/bookings", alice, claimBody(slots[0].ID, 0))
	b := decode[models.Booking](t, body["booking"])

	if w, _ := s.do(t, http.MethodPost, "/api/bookings/"+b.ID+"/cancel-request", alice, nil); w.Code != http.StatusOK {
		t.Fatalf("cancel request status = %d: %s", w.Code, w.Body.String())
	}

	w, body := s.do(t, http.MethodGet, "/api/owner/requests", owner, nil)
	if w.Code != http.StatusOK || len(decode[[]models.Booking](t, body["requests"])) != 1 {
		t.Fatalf("requests = %d %s", w.Code, w.Body.String())
	}

	decision := map[string]string{"decision": "approve"}
	if w, _ := s.do(t, http.MethodPost, "/api/owner/bookings/"+b.ID+"/cancel-decision", alice, decision); w.Code != http.StatusForbidden {
		t.Errorf("renter decision status = %d, want 403", w.Code)
	}
	if w, _ := s.do(t, http.MethodPost, "/api/owner/bookings/"+b.ID+"/cancel-decision", otherOwner, decision); w.Code != http.StatusForbidden {
		t.Errorf("other owner decision status = %d, want 403", w.Code)
	}
	if w, _ := s.do(t, http.MethodPost, "/api/owner/bookings/"+b.ID+"/cancel-decision", owner, map[string]string{"decision": "later"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad decision status = %d, want 400", w.Code)
	}

	w, body = s.do(t, http.MethodPost, "/api/owner/bookings/"+b.ID+"/cancel-decision", owner, decision)
	if w.Code != http.StatusOK || decode[models.Booking](t, body["booking"]).Status != models.BookingCancelled {
		t.Fatalf("approve = %d %s", w.Code, w.Body.String())
	}
	if w, _ := s.do(t, http.MethodPost, "/api/owner/bookings/"+b.ID+"/cancel-decision", owner, decision); w.Code != http.StatusConflict {
		t.Errorf("repeat decision status = %d, want 409", w.Code)
	}

	w, body = s.do(t, http.MethodGet, "/api/bookings/history", alice, nil)
	if w.Code != http.StatusOK || len(decode[[]models.Booking](t, body["bookings"])) != 1 {
		t.Errorf("history = %d %s", w.Code, w.Body.String())
	}
}

func TestAreaRoutes(t *testing.T) {
	s := newTestServer(t)
	renter := token(t, "alice", utils.RoleUser)

	if w, _ := s.do(t, http.MethodPost, "/api/areas", renter, models.AreaInput{Name: "x", TotalSlots: 1}); w.Code != http.StatusForbidden {
		t.Errorf("renter create area status = %d, want 403", w.Code)
	}

	a, slots := s.createArea(t, 2)
	if len(slots) != 2 || slots[0].Label != "S1" {
		t.Errorf("slots = %+v", slots)
	}

	owner := token(t, "owner-1", utils.RoleOwner)
	w, body := s.do(t, http.MethodPut, "/api/areas/"+a.ID, owner, map[string]any{"pricePerHour": 60})
	if w.Code != http.StatusOK || decode[models.Area](t, body["area"]).PricePerHour != 60 {
		t.Errorf("update area = %d %s", w.Code, w.Body.String())
	}
	if w, _ := s.do(t, http.MethodPut, "/api/areas/"+a.ID, token(t, "owner-2", utils.RoleOwner), map[string]any{"name": "Mine"}); w.Code != http.StatusForbidden {
		t.Errorf("other owner update status = %d, want 403", w.Code)
	}

	if w, _ := s.do(t, http.MethodPost, "/api/bookings", token(t, "carol", utils.RoleUser), claimBody(slots[1].ID, 0)); w.Code != http.StatusCreated {
		t.Fatalf("claim status = %d: %s", w.Code, w.Body.String())
	}
	if w, _ := s.do(t, http.MethodDelete, "/api/areas/"+a.ID, owner, nil); w.Code != http.StatusConflict {
		t.Errorf("delete busy area status = %d, want 409", w.Code)
	}
}

func TestOpsRoutes(t *testing.T) {
	s := newTestServer(t)

	if w, _ := s.do(t, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Errorf("/health status = %d", w.Code)
	}
	w, _ := s.do(t, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Errorf("/metrics status = %d", w.Code)
	}
}
