package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/waichatt/console/internal/db"
	"github.com/waichatt/console/internal/exchange"
	"github.com/waichatt/console/internal/models"
	"gorm.io/gorm"
)

func openHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, errOpen := db.Open(":memory:")
	if errOpen != nil {
		t.Fatalf("open: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func seedLedgers(t *testing.T, conn *gorm.DB) {
	t.Helper()
	payments := []models.Payment{
		{ClientID: 1, PlanID: 1, Amount: 45000, Status: models.PaymentStatusPaid, Date: time.Now().UTC()},
		{ClientID: 1, PlanID: 1, Amount: 45000, Status: models.PaymentStatusPending, Date: time.Now().UTC()},
		{ClientID: 1, PlanID: 1, Amount: 45000, Status: models.PaymentStatusFailed, Date: time.Now().UTC()},
	}
	if errCreate := conn.Create(&payments).Error; errCreate != nil {
		t.Fatalf("seed payments: %v", errCreate)
	}
	expenses := []models.Expense{
		{Amount: 10000, Status: models.ExpenseStatusPaid, Currency: models.CurrencyARS, Date: time.Now().UTC()},
		{Amount: 5000, Status: models.ExpenseStatusPending, Currency: models.CurrencyARS, Date: time.Now().UTC()},
	}
	if errCreate := conn.Create(&expenses).Error; errCreate != nil {
		t.Fatalf("seed expenses: %v", errCreate)
	}
}

func TestBalanceCountsPaidIncomeAndAllExpenses(t *testing.T) {
	conn := openHandlerDB(t)
	seedLedgers(t, conn)

	quote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"venta":1000}`))
	}))
	defer quote.Close()

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/balance", NewFinanceHandler(conn, exchange.New(quote.URL)).Balance)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/balance", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		TotalIngresos float64  `json:"totalIngresos"`
		TotalEgresos  float64  `json:"totalEgresos"`
		Balance       float64  `json:"balance"`
		BalanceUSD    *float64 `json:"balanceUsd"`
	}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &body); errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if body.TotalIngresos != 45000 {
		t.Fatalf("totalIngresos = %v, want 45000 (only pagado)", body.TotalIngresos)
	}
	if body.TotalEgresos != 15000 {
		t.Fatalf("totalEgresos = %v, want 15000 (all statuses)", body.TotalEgresos)
	}
	if body.Balance != 30000 {
		t.Fatalf("balance = %v, want 30000", body.Balance)
	}
	if body.BalanceUSD == nil || *body.BalanceUSD != 30 {
		t.Fatalf("balanceUsd = %v, want 30", body.BalanceUSD)
	}
}

func TestBalanceOmitsUSDWhenQuoteUnavailable(t *testing.T) {
	conn := openHandlerDB(t)
	seedLedgers(t, conn)

	quote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer quote.Close()

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/balance", NewFinanceHandler(conn, exchange.New(quote.URL)).Balance)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/balance", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even without quote", rec.Code)
	}

	var body map[string]any
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &body); errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if _, ok := body["balanceUsd"]; ok {
		t.Fatal("balanceUsd present, want omitted when quote fails")
	}
	if body["balance"] != float64(30000) {
		t.Fatalf("balance = %v, want 30000", body["balance"])
	}
}

func TestOverviewRendersDanglingServiceReference(t *testing.T) {
	conn := openHandlerDB(t)

	missing := uint64(404)
	expense := models.Expense{Amount: 100, Status: models.ExpenseStatusPending, Currency: models.CurrencyARS, Date: time.Now().UTC(), ServiceID: &missing}
	if errCreate := conn.Create(&expense).Error; errCreate != nil {
		t.Fatalf("seed expense: %v", errCreate)
	}

	quote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"venta":1000}`))
	}))
	defer quote.Close()

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/finances", NewFinanceHandler(conn, exchange.New(quote.URL)).Overview)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/finances", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Expenses []map[string]any `json:"expenses"`
	}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &body); errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if len(body.Expenses) != 1 {
		t.Fatalf("expenses = %d, want 1", len(body.Expenses))
	}
	if body.Expenses[0]["service_name"] != "service not found" {
		t.Fatalf("service_name = %v, want placeholder", body.Expenses[0]["service_name"])
	}
}

func TestOverviewTotalsIgnoreRowFilters(t *testing.T) {
	conn := openHandlerDB(t)
	seedLedgers(t, conn)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/finances", NewFinanceHandler(conn, exchange.New("http://unused")).Overview)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/finances?status=pendiente", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Expenses      []map[string]any `json:"expenses"`
		TotalIngresos float64          `json:"totalIngresos"`
		TotalEgresos  float64          `json:"totalEgresos"`
		Balance       float64          `json:"balance"`
	}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &body); errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if len(body.Expenses) != 1 {
		t.Fatalf("filtered expenses = %d, want 1 pendiente row", len(body.Expenses))
	}
	// The totals still reconcile the whole ledgers, not the filtered view.
	if body.TotalIngresos != 45000 || body.TotalEgresos != 15000 || body.Balance != 30000 {
		t.Fatalf("totals = %v/%v/%v, want 45000/15000/30000", body.TotalIngresos, body.TotalEgresos, body.Balance)
	}
}

func TestOverviewRejectsInvalidFilter(t *testing.T) {
	conn := openHandlerDB(t)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/finances", NewFinanceHandler(conn, exchange.New("http://unused")).Overview)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/finances?status=bogus", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
