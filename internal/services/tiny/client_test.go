package tiny

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchOrdersSendsFormEncodedRequest(t *testing.T) {
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Expected form content type, got %q", ct)
		}
		r.ParseForm()
		gotForm = map[string]string{
			"token":       r.PostFormValue("token"),
			"formato":     r.PostFormValue("formato"),
			"dataInicial": r.PostFormValue("dataInicial"),
			"dataFinal":   r.PostFormValue("dataFinal"),
			"situacao":    r.PostFormValue("situacao"),
		}
		w.Write([]byte(`{"retorno":{"status":"OK","pedidos":[{"pedido":{"id":101}},{"pedido":{"id":"102"}}]}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok-123", NewPacer(30))
	headers, err := client.SearchOrders(context.Background(), "13/11/2025", "13/11/2025", "aprovado")
	if err != nil {
		t.Fatalf("SearchOrders failed: %v", err)
	}

	if gotForm["token"] != "tok-123" || gotForm["formato"] != "JSON" {
		t.Errorf("Unexpected auth/format fields: %v", gotForm)
	}
	if gotForm["dataInicial"] != "13/11/2025" || gotForm["dataFinal"] != "13/11/2025" || gotForm["situacao"] != "aprovado" {
		t.Errorf("Unexpected range fields: %v", gotForm)
	}

	// Numeric and string ids both decode
	if len(headers) != 2 || headers[0].ID != "101" || headers[1].ID != "102" {
		t.Errorf("Unexpected headers: %+v", headers)
	}
}

func TestSearchOrdersRemoteUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", NewPacer(30))
	if _, err := client.SearchOrders(context.Background(), "01/01/2025", "01/01/2025", ""); !errors.Is(err, ErrRemoteUnavailable) {
		t.Errorf("Expected ErrRemoteUnavailable, got %v", err)
	}
}

func TestFetchOrderDetailSoftFailures(t *testing.T) {
	// Server error is not fatal for the run, just this order
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", NewPacer(30))
	if _, err := client.FetchOrderDetail(context.Background(), "1"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("Expected ErrOrderNotFound on server error, got %v", err)
	}

	// A success response with no payload is treated the same way
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retorno":{"status":"Erro"}}`))
	}))
	defer empty.Close()

	client = NewClient(empty.URL, "tok", NewPacer(30))
	if _, err := client.FetchOrderDetail(context.Background(), "1"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("Expected ErrOrderNotFound on empty payload, got %v", err)
	}
}

func TestClientCountsCallsAgainstPacer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retorno":{"status":"OK","pedidos":[]}}`))
	}))
	defer server.Close()

	pacer := NewPacer(30)
	client := NewClient(server.URL, "tok", pacer)

	for i := 0; i < 3; i++ {
		if _, err := client.SearchOrders(context.Background(), "01/01/2025", "01/01/2025", ""); err != nil {
			t.Fatalf("SearchOrders failed: %v", err)
		}
	}
	if pacer.Calls() != 3 {
		t.Errorf("Expected 3 calls recorded, got %d", pacer.Calls())
	}
}
