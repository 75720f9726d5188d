package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/waichatt/console/internal/exchange"
	"github.com/waichatt/console/internal/models"
)

func TestCreateExpenseConvertsUSDOnce(t *testing.T) {
	conn := openHandlerDB(t)

	var quoteCalls int
	quote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		quoteCalls++
		_, _ = w.Write([]byte(`{"venta":1200}`))
	}))
	defer quote.Close()

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler := NewExpenseHandler(conn, exchange.New(quote.URL))
	engine.POST("/expenses", handler.Create)
	engine.GET("/expenses", handler.List)

	payload := `{"amount":50,"currency":"USD","description":"hosting","status":"pendiente"}`
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(payload)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var created map[string]any
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &created); errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if created["amount"] != float64(60000) {
		t.Fatalf("amount = %v, want 60000 ARS", created["amount"])
	}
	if created["currency"] != "USD" {
		t.Fatalf("currency = %v, want USD preserved", created["currency"])
	}
	if quoteCalls != 1 {
		t.Fatalf("quote calls = %d, want 1", quoteCalls)
	}

	// Listing must serve the stored amount without requoting.
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/expenses", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if quoteCalls != 1 {
		t.Fatalf("quote calls after list = %d, want still 1", quoteCalls)
	}
}

func TestCreateExpenseStoresUnconvertedWhenQuoteFails(t *testing.T) {
	conn := openHandlerDB(t)

	quote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer quote.Close()

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/expenses", NewExpenseHandler(conn, exchange.New(quote.URL)).Create)

	payload := `{"amount":80,"currency":"USD"}`
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(payload)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 despite quote outage", rec.Code)
	}

	var expense models.Expense
	if errFind := conn.First(&expense).Error; errFind != nil {
		t.Fatalf("load expense: %v", errFind)
	}
	if expense.Amount != 80 {
		t.Fatalf("amount = %v, want unconverted 80", expense.Amount)
	}
}

func TestCreateExpenseRejectsUnknownCurrency(t *testing.T) {
	conn := openHandlerDB(t)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/expenses", NewExpenseHandler(conn, exchange.New("http://unused")).Create)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(`{"amount":1,"currency":"EUR"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
