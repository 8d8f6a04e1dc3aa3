package tiny

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mercantil-app/mercantilgo/internal/models"
	"gorm.io/datatypes"
)

// fakeMarketplace serves the two Tiny endpoints with canned payloads
type fakeMarketplace struct {
	headerIDs []string
	details   map[string]string // id -> pedido JSON; missing id answers 500
}

func (f *fakeMarketplace) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/"+searchEndpoint, func(w http.ResponseWriter, r *http.Request) {
		body := `{"retorno":{"status":"OK","pedidos":[`
		for i, id := range f.headerIDs {
			if i > 0 {
				body += ","
			}
			body += fmt.Sprintf(`{"pedido":{"id":"%s"}}`, id)
		}
		body += `]}}`
		w.Write([]byte(body))
	})
	mux.HandleFunc("/"+detailEndpoint, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		pedido, ok := f.details[r.PostFormValue("id")]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `{"retorno":{"status":"OK","pedido":%s}}`, pedido)
	})
	return mux
}

func detailJSON(id, code string) string {
	return fmt.Sprintf(`{
		"id": "%s",
		"numero": "n-%s",
		"numero_ecommerce": "e-%s",
		"nome_ecommerce": "Loja XPTO",
		"forma_pagamento": "pix",
		"situacao": "aprovado",
		"cliente": {"nome": "Ana", "fone": "4199999", "endereco": "Rua A", "numero": "1", "cidade": "Curitiba", "uf": "PR"},
		"itens": [{"item": {"codigo": "%s", "descricao": "Camiseta", "quantidade": "2", "valor_unitario": "10.00"}}]
	}`, id, id, id, code)
}

func newTestService(t *testing.T, market *fakeMarketplace, store *fakeStore) (*SyncService, func()) {
	t.Helper()
	server := httptest.NewServer(market.handler())
	svc := NewSyncService(store, Config{
		APIToken:  "tok",
		APIURL:    server.URL,
		RateLimit: 30,
	}, nil)
	return svc, server.Close
}

func TestRunSyncPersistsOrders(t *testing.T) {
	market := &fakeMarketplace{
		headerIDs: []string{"100"},
		details:   map[string]string{"100": detailJSON("100", "X1")},
	}
	store := newFakeStore()
	svc, done := newTestService(t, market, store)
	defer done()

	report, err := svc.RunSync(context.Background(), "13/11/2025", "13/11/2025", "")
	if err != nil {
		t.Fatalf("RunSync failed: %v", err)
	}
	if report.Found != 1 || report.Synced != 1 || report.Skipped != 0 {
		t.Fatalf("Unexpected report: %+v", report)
	}

	order, ok := store.orders["100"]
	if !ok {
		t.Fatal("Order 100 was not persisted")
	}
	if order.TotalAmount != 20 || order.TotalQuantity != 2 {
		t.Errorf("Expected totals 20/2, got %v/%v", order.TotalAmount, order.TotalQuantity)
	}
	if order.Status != models.OrderStatusPaid {
		t.Errorf("Expected status paid, got %q", order.Status)
	}
	if order.Source != models.OrderSourceOlist {
		t.Errorf("Expected source olist, got %q", order.Source)
	}
	if store.userCreates != 1 || store.productCreates != 1 {
		t.Errorf("Expected one user and one product created, got %d/%d", store.userCreates, store.productCreates)
	}

	y, m, d := order.OrderDate.Date()
	if y != 2025 || int(m) != 11 || d != 13 {
		t.Errorf("Order date not pinned to the run's logical date: %v", order.OrderDate)
	}
}

func TestRunSyncIdempotentUpsert(t *testing.T) {
	market := &fakeMarketplace{
		headerIDs: []string{"100"},
		details:   map[string]string{"100": detailJSON("100", "X1")},
	}
	store := newFakeStore()
	svc, done := newTestService(t, market, store)
	defer done()

	if _, err := svc.RunSync(context.Background(), "13/11/2025", "13/11/2025", ""); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	firstTotal := store.orders["100"].TotalAmount

	if _, err := svc.RunSync(context.Background(), "13/11/2025", "13/11/2025", ""); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if len(store.orders) != 1 {
		t.Fatalf("Expected exactly one order after re-sync, got %d", len(store.orders))
	}
	if store.orderCreates != 1 || store.orderUpdates != 1 {
		t.Errorf("Expected one create and one update, got %d/%d", store.orderCreates, store.orderUpdates)
	}
	if store.orders["100"].TotalAmount != firstTotal {
		t.Errorf("Totals changed across identical runs: %v != %v", store.orders["100"].TotalAmount, firstTotal)
	}
}

func TestRunSyncSkipsFailedOrderAndContinues(t *testing.T) {
	market := &fakeMarketplace{
		headerIDs: []string{"1", "2", "3"},
		details: map[string]string{
			"1": detailJSON("1", "A1"),
			// detail for order 2 answers 500
			"3": detailJSON("3", "A3"),
		},
	}
	store := newFakeStore()
	svc, done := newTestService(t, market, store)
	defer done()

	report, err := svc.RunSync(context.Background(), "13/11/2025", "13/11/2025", "")
	if err != nil {
		t.Fatalf("RunSync failed: %v", err)
	}

	if report.Synced != 2 || report.Skipped != 1 {
		t.Errorf("Expected 2 synced / 1 skipped, got %+v", report)
	}
	if _, ok := store.orders["1"]; !ok {
		t.Error("Order 1 should have been persisted")
	}
	if _, ok := store.orders["3"]; !ok {
		t.Error("Order 3 should have been persisted despite order 2 failing")
	}
	if _, ok := store.orders["2"]; ok {
		t.Error("Order 2 should not have been persisted")
	}
}

func TestRunSyncFatalOnSearchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewSyncService(newFakeStore(), Config{APIToken: "tok", APIURL: server.URL, RateLimit: 30}, nil)
	if _, err := svc.RunSync(context.Background(), "13/11/2025", "13/11/2025", ""); !errors.Is(err, ErrRemoteUnavailable) {
		t.Errorf("Expected ErrRemoteUnavailable, got %v", err)
	}
}

func TestRunSyncEmptyItemsNotPersisted(t *testing.T) {
	market := &fakeMarketplace{
		headerIDs: []string{"100"},
		details: map[string]string{
			"100": `{"id":"100","numero":"1","nome_ecommerce":"Loja","situacao":"aprovado","itens":[]}`,
		},
	}
	store := newFakeStore()
	svc, done := newTestService(t, market, store)
	defer done()

	report, err := svc.RunSync(context.Background(), "13/11/2025", "13/11/2025", "")
	if err != nil {
		t.Fatalf("RunSync failed: %v", err)
	}
	if report.Synced != 0 || report.Skipped != 1 {
		t.Errorf("Expected the empty order skipped, got %+v", report)
	}
	if len(store.orders) != 0 {
		t.Error("Empty order must not be persisted")
	}
}

func TestRunSyncItemsWithoutInnerDataNotPersisted(t *testing.T) {
	market := &fakeMarketplace{
		headerIDs: []string{"100"},
		details: map[string]string{
			"100": `{"id":"100","numero":"1","nome_ecommerce":"Loja","situacao":"aprovado","itens":[{"item":{}},{"item":{}}]}`,
		},
	}
	store := newFakeStore()
	svc, done := newTestService(t, market, store)
	defer done()

	report, err := svc.RunSync(context.Background(), "13/11/2025", "13/11/2025", "")
	if err != nil {
		t.Fatalf("RunSync failed: %v", err)
	}
	if report.Synced != 0 {
		t.Errorf("Expected nothing synced, got %+v", report)
	}
	if len(store.orders) != 0 {
		t.Error("Order whose items all lack inner data must not be persisted")
	}
}

func TestRunSyncCatalogEditReflectedOnResync(t *testing.T) {
	market := &fakeMarketplace{
		headerIDs: []string{"100"},
		details:   map[string]string{"100": detailJSON("100", "X1")},
	}
	store := newFakeStore()
	store.addProduct("p1", "X1", "image-a.png", 5)
	svc, done := newTestService(t, market, store)
	defer done()

	if _, err := svc.RunSync(context.Background(), "13/11/2025", "13/11/2025", ""); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	items := store.orders["100"].Items.Data()
	if items[0].ImageURL != "image-a.png" {
		t.Fatalf("Expected image-a.png on first sync, got %q", items[0].ImageURL)
	}

	// Staff updates the product image between runs
	store.products["p1"].Images = datatypes.NewJSONType([]models.ProductImage{{URL: "image-b.png"}})

	if _, err := svc.RunSync(context.Background(), "13/11/2025", "13/11/2025", ""); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	items = store.orders["100"].Items.Data()
	if items[0].ImageURL != "image-b.png" {
		t.Errorf("Expected current image image-b.png after re-sync, got %q", items[0].ImageURL)
	}
}

func TestRunSyncRejectsOverlappingRuns(t *testing.T) {
	svc := NewSyncService(newFakeStore(), Config{APIToken: "tok", APIURL: "http://127.0.0.1:0", RateLimit: 30}, nil)

	svc.running.Store(true)
	defer svc.running.Store(false)

	if _, err := svc.RunSync(context.Background(), "13/11/2025", "13/11/2025", ""); !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("Expected ErrSyncInProgress, got %v", err)
	}
}

func TestRunSyncUnrecognizedStatusCounted(t *testing.T) {
	market := &fakeMarketplace{
		headerIDs: []string{"100"},
		details: map[string]string{
			"100": `{"id":"100","numero":"1","nome_ecommerce":"Loja","situacao":"status novo do vendor",
				"itens":[{"item":{"codigo":"X1","descricao":"Camiseta","quantidade":1,"valor_unitario":10}}]}`,
		},
	}
	store := newFakeStore()
	svc, done := newTestService(t, market, store)
	defer done()

	report, err := svc.RunSync(context.Background(), "13/11/2025", "13/11/2025", "")
	if err != nil {
		t.Fatalf("RunSync failed: %v", err)
	}
	if report.Unrecognized != 1 {
		t.Errorf("Expected 1 unrecognized status, got %d", report.Unrecognized)
	}
	if store.orders["100"].Status != models.OrderStatusPending {
		t.Errorf("Unknown status should fall back to pending, got %q", store.orders["100"].Status)
	}
}

// detailJSON items with remote image: image URL wins the fallback chain all
// the way into the persisted order
func TestRunSyncRemoteImagePreferred(t *testing.T) {
	market := &fakeMarketplace{
		headerIDs: []string{"100"},
		details: map[string]string{
			"100": `{"id":"100","numero":"1","nome_ecommerce":"Loja","situacao":"aprovado",
				"itens":[{"item":{"codigo":"X1","descricao":"Camiseta","quantidade":1,"valor_unitario":10,"url_imagem":"remote.png"}}]}`,
		},
	}
	store := newFakeStore()
	svc, done := newTestService(t, market, store)
	defer done()

	if _, err := svc.RunSync(context.Background(), "13/11/2025", "13/11/2025", ""); err != nil {
		t.Fatalf("RunSync failed: %v", err)
	}
	items := store.orders["100"].Items.Data()
	if items[0].ImageURL != "remote.png" {
		t.Errorf("Expected remote image, got %q", items[0].ImageURL)
	}
}
