package tiny

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	searchEndpoint = "pedidos.pesquisa.php"
	detailEndpoint = "pedido.obter.php"
)

// ErrRemoteUnavailable means the search call failed; the whole run must abort
var ErrRemoteUnavailable = errors.New("marketplace API unavailable")

// ErrOrderNotFound means one order's detail could not be fetched; the run
// skips that order and continues
var ErrOrderNotFound = errors.New("marketplace order not found")

// Client talks to the Tiny/Olist order API. Both endpoints are form-encoded
// POSTs; every call is counted against the pacer's window.
type Client struct {
	BaseURL    string
	Token      string
	HttpClient *http.Client
	pacer      *Pacer
}

// NewClient creates a new marketplace API client
func NewClient(baseURL, token string, pacer *Pacer) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		Token:      token,
		HttpClient: &http.Client{Timeout: 30 * time.Second},
		pacer:      pacer,
	}
}

// SearchOrders queries order headers in a date range. Dates are DD/MM/YYYY.
// Any transport failure or non-success status yields ErrRemoteUnavailable.
func (c *Client) SearchOrders(ctx context.Context, dateFrom, dateTo, statusFilter string) ([]OrderHeader, error) {
	form := url.Values{
		"token":       {c.Token},
		"formato":     {"JSON"},
		"dataInicial": {dateFrom},
		"dataFinal":   {dateTo},
		"situacao":    {statusFilter},
	}

	var envelope searchEnvelope
	if err := c.postForm(ctx, searchEndpoint, form, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	headers := make([]OrderHeader, 0, len(envelope.Retorno.Pedidos))
	for _, p := range envelope.Retorno.Pedidos {
		if p.Pedido.ID == "" {
			continue
		}
		headers = append(headers, p.Pedido)
	}
	return headers, nil
}

// FetchOrderDetail loads the full payload of one order. Failures are soft:
// any transport error or missing payload yields ErrOrderNotFound.
func (c *Client) FetchOrderDetail(ctx context.Context, remoteID string) (*OrderDetail, error) {
	form := url.Values{
		"token":   {c.Token},
		"formato": {"JSON"},
		"id":      {remoteID},
	}

	var envelope detailEnvelope
	if err := c.postForm(ctx, detailEndpoint, form, &envelope); err != nil {
		return nil, fmt.Errorf("%w: order %s: %v", ErrOrderNotFound, remoteID, err)
	}

	if envelope.Retorno.Pedido == nil {
		return nil, fmt.Errorf("%w: order %s: empty payload", ErrOrderNotFound, remoteID)
	}
	return envelope.Retorno.Pedido, nil
}

// postForm issues one counted, form-encoded POST and decodes the response
func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values, out interface{}) error {
	c.pacer.Record()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/"+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
