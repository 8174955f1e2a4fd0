package orderControllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/itzkennedydev/Gruby-Web-sub003/auth"
	"github.com/itzkennedydev/Gruby-Web-sub003/cache"
	cartControllers "github.com/itzkennedydev/Gruby-Web-sub003/controllers/cart"
	orderControllers "github.com/itzkennedydev/Gruby-Web-sub003/controllers/order"
	"github.com/itzkennedydev/Gruby-Web-sub003/models"
	"github.com/itzkennedydev/Gruby-Web-sub003/payments"
	"github.com/itzkennedydev/Gruby-Web-sub003/routes"
)

// stubProvider serves checkout sessions the way the payment provider would.
type stubProvider struct {
	sessions map[string]payments.CheckoutSession
}

func (s *stubProvider) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "/v1/checkout/sessions/"
		if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, prefix) {
			sess, ok := s.sessions[strings.TrimPrefix(r.URL.Path, prefix)]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error": map[string]string{"code": "not_found", "message": "no such session"},
				})
				return
			}
			json.NewEncoder(w).Encode(sess)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupOrderTest(t *testing.T, provider *stubProvider) (*gin.Engine, *gorm.DB) {
	t.Helper()
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("PAYMENT_WEBHOOK_SECRET", "test-webhook-secret")
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.HomeCook{}, &models.Product{},
		&models.Order{}, &models.OrderItem{}, &models.WebhookEvent{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	srv := provider.server(t)
	r := gin.New()
	routes.SetupRoutes(r, db, routes.Deps{
		Payments: payments.New(srv.URL, "test-key"),
		Sessions: cache.NewMemory(),
		Hub:      orderControllers.NewHub(),
	})
	return r, db
}

func createUser(t *testing.T, db *gorm.DB, id string) string {
	t.Helper()
	user := models.User{ID: id, Email: id + "@example.com", Name: "Test User"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, err := auth.MintSessionToken(user.ID, user.Email)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func finalize(t *testing.T, r *gin.Engine, token, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	body := fmt.Sprintf(`{"session_id":%q}`, sessionID)
	req := httptest.NewRequest(http.MethodPost, "/orders/", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func paidSession(id, userID string) payments.CheckoutSession {
	return payments.CheckoutSession{
		ID:                id,
		PaymentStatus:     payments.SessionPaid,
		ClientReferenceID: userID,
		Currency:          "usd",
		AmountTotal:       1998,
		LineItems: []payments.SessionLineItem{
			{ProductID: 1, Name: "Tamales", UnitAmount: 999, Quantity: 2},
		},
	}
}

func TestFinalizePromotesCartOrder(t *testing.T) {
	provider := &stubProvider{sessions: map[string]payments.CheckoutSession{
		"sess_1": paidSession("sess_1", "buyer-1"),
	}}
	r, db := setupOrderTest(t, provider)
	token := createUser(t, db, "buyer-1")

	if _, err := cartControllers.SyncCart(db, "buyer-1", []cartControllers.SyncItemInput{
		{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("9.99")},
	}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	w := finalize(t, r, token, "sess_1")
	if w.Code != http.StatusOK {
		t.Fatalf("finalize failed: %d %s", w.Code, w.Body.String())
	}

	var orders []models.Order
	if err := db.Preload("Items").Where("user_id = ?", "buyer-1").Find(&orders).Error; err != nil {
		t.Fatalf("load orders: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected the cart order to be promoted in place, got %d orders", len(orders))
	}
	order := orders[0]
	if order.Status != models.OrderStatusCompleted {
		t.Fatalf("status = %s, want completed", order.Status)
	}
	if order.CartKey != nil {
		t.Fatalf("cart key should be cleared on finalize")
	}
	if order.PaymentRef == nil || *order.PaymentRef != "sess_1" {
		t.Fatalf("payment ref not recorded: %v", order.PaymentRef)
	}
	if !order.Total.Equal(decimal.RequireFromString("19.98")) {
		t.Fatalf("total = %s, want 19.98", order.Total)
	}

	// The cart is gone; a follow-up sync starts fresh.
	var n int64
	db.Model(&models.Order{}).Where("user_id = ? AND status = ?", "buyer-1", models.OrderStatusCart).Count(&n)
	if n != 0 {
		t.Fatalf("cart order survived finalization")
	}
}

func TestFinalizeTwiceCreatesOneOrder(t *testing.T) {
	provider := &stubProvider{sessions: map[string]payments.CheckoutSession{
		"sess_dup": paidSession("sess_dup", "buyer-2"),
	}}
	r, db := setupOrderTest(t, provider)
	token := createUser(t, db, "buyer-2")

	if _, err := cartControllers.SyncCart(db, "buyer-2", []cartControllers.SyncItemInput{
		{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("9.99")},
	}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	for i := 0; i < 2; i++ {
		if w := finalize(t, r, token, "sess_dup"); w.Code != http.StatusOK {
			t.Fatalf("finalize %d failed: %d %s", i, w.Code, w.Body.String())
		}
	}

	var n int64
	if err := db.Model(&models.Order{}).
		Where("user_id = ? AND status = ?", "buyer-2", models.OrderStatusCompleted).
		Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("duplicate finalize produced %d completed orders, want 1", n)
	}
}

func TestFinalizeWithoutCartInsertsFromSession(t *testing.T) {
	provider := &stubProvider{sessions: map[string]payments.CheckoutSession{
		"sess_replay": paidSession("sess_replay", "buyer-3"),
	}}
	r, db := setupOrderTest(t, provider)
	token := createUser(t, db, "buyer-3")

	w := finalize(t, r, token, "sess_replay")
	if w.Code != http.StatusOK {
		t.Fatalf("finalize failed: %d %s", w.Code, w.Body.String())
	}

	var order models.Order
	if err := db.Preload("Items").Where("payment_ref = ?", "sess_replay").First(&order).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if order.Status != models.OrderStatusCompleted {
		t.Fatalf("status = %s, want completed", order.Status)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("items not taken from session: %+v", order.Items)
	}
	if !order.Items[0].Price.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("item price = %s, want 9.99 from 999 cents", order.Items[0].Price)
	}
}

func TestFinalizeRejectsUnpaidSession(t *testing.T) {
	unpaid := paidSession("sess_unpaid", "buyer-4")
	unpaid.PaymentStatus = payments.SessionUnpaid
	provider := &stubProvider{sessions: map[string]payments.CheckoutSession{
		"sess_unpaid": unpaid,
	}}
	r, db := setupOrderTest(t, provider)
	token := createUser(t, db, "buyer-4")

	w := finalize(t, r, token, "sess_unpaid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unpaid session, got %d", w.Code)
	}

	var n int64
	db.Model(&models.Order{}).Where("user_id = ?", "buyer-4").Count(&n)
	if n != 0 {
		t.Fatalf("unpaid session wrote %d orders", n)
	}
}

func TestFinalizeProviderFailureIsRetryable(t *testing.T) {
	provider := &stubProvider{sessions: map[string]payments.CheckoutSession{}}
	r, db := setupOrderTest(t, provider)
	token := createUser(t, db, "buyer-5")

	w := finalize(t, r, token, "sess_missing")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for provider failure, got %d %s", w.Code, w.Body.String())
	}

	// Retry after the provider learns about the session.
	provider.sessions["sess_missing"] = paidSession("sess_missing", "buyer-5")
	if w := finalize(t, r, token, "sess_missing"); w.Code != http.StatusOK {
		t.Fatalf("retry failed: %d %s", w.Code, w.Body.String())
	}
}

func TestGetUserOrdersListsOnlyCompleted(t *testing.T) {
	provider := &stubProvider{sessions: map[string]payments.CheckoutSession{
		"sess_list": paidSession("sess_list", "buyer-6"),
	}}
	r, db := setupOrderTest(t, provider)
	token := createUser(t, db, "buyer-6")

	if _, err := cartControllers.SyncCart(db, "buyer-6", []cartControllers.SyncItemInput{
		{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("9.99")},
	}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	if w := finalize(t, r, token, "sess_list"); w.Code != http.StatusOK {
		t.Fatalf("finalize failed: %d", w.Code)
	}
	// Leave a fresh cart behind; it must not show up in the listing.
	if _, err := cartControllers.SyncCart(db, "buyer-6", []cartControllers.SyncItemInput{
		{ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("4.00")},
	}); err != nil {
		t.Fatalf("second cart: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/orders/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list failed: %d %s", w.Code, w.Body.String())
	}

	var resp []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected 1 completed order in listing, got %d", len(resp))
	}
	if resp[0]["status"] != string(models.OrderStatusCompleted) {
		t.Fatalf("listed order status = %v", resp[0]["status"])
	}
}
