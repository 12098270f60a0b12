//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/wms-orders/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type orderPayload struct {
	PedidoID int64  `json:"pedido_id"`
	Estado   string `json:"estado"`
	VIP      bool   `json:"vip"`
}

type invoicePayload struct {
	FacturaID int64  `json:"factura_id"`
	Total     string `json:"total"`
	PedidoID  int64  `json:"pedido_id"`
}

type pendingInvoicePayload struct {
	ID         int64  `json:"id"`
	RubroTotal string `json:"rubro_total"`
	PedidoID   int64  `json:"pedido_id"`
}

type problemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail"`
	Extensions map[string]any `json:"extensions"`
}

type apiError struct {
	status int
	kind   string
	detail string
}

func (e apiError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.kind, e.detail, e.status)
}

func TestWarehousePortalContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	problemBody := func(status int, kind string) matchers.Map {
		return matchers.Map{
			"status":     matchers.Like(status),
			"title":      matchers.Like("Conflict"),
			"extensions": matchers.Map{"kind": matchers.S(kind)},
		}
	}
	orderRef := matchers.Map{"pedido_id": matchers.Like(pacttest.ExistingOrderID)}

	pact.AddInteraction().
		Given(pacttest.StateCatalogSeeded).
		UponReceiving("a warehouse manager creating an order").
		WithRequest("POST", "/crear-pedido", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("X-Auth-Subject", matchers.Like("portal-user"))
			b.Header("X-Auth-Role", matchers.S(pacttest.WarehouseRole))
			b.JSONBody(pacttest.ExampleCreateOrderPayload())
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"pedido_id": matchers.Like(pacttest.ExistingOrderID),
				"estado":    matchers.S("Verificado"),
				"vip":       matchers.Like(false),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateOrdersBaseline).
		UponReceiving("an order without lines").
		WithRequest("POST", "/crear-pedido", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("X-Auth-Subject", matchers.Like("portal-user"))
			b.Header("X-Auth-Role", matchers.S(pacttest.WarehouseRole))
			b.JSONBody(map[string]any{"productos_cantidades": []any{}, "vip": false})
		}).
		WillRespondWith(http.StatusBadRequest, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(problemBody(http.StatusBadRequest, "validation"))
		})

	pact.AddInteraction().
		Given(pacttest.StateVerifiedOrder).
		UponReceiving("a request to invoice a verified order").
		WithRequest("POST", "/crear-factura", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(orderRef)
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"factura_id": matchers.Like(int64(1)),
				"total":      matchers.Like("51000"),
				"pedido_id":  matchers.Like(pacttest.ExistingOrderID),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateInvoicedOrder).
		UponReceiving("a request to invoice an already invoiced order").
		WithRequest("POST", "/crear-factura", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(orderRef)
		}).
		WillRespondWith(http.StatusConflict, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(problemBody(http.StatusConflict, "conflict"))
		})

	pact.AddInteraction().
		Given(pacttest.StateInvoicedOrder).
		UponReceiving("a request for the pending invoices").
		WithRequest("GET", "/facturas-pendientes").
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.EachLike(matchers.Map{
				"id":          matchers.Like(int64(1)),
				"rubro_total": matchers.Like("51000"),
				"pedido_id":   matchers.Like(pacttest.ExistingOrderID),
			}, 1))
		})

	pact.AddInteraction().
		Given(pacttest.StateInvoicedOrder).
		UponReceiving("a request to dispatch an invoiced order").
		WithRequest("POST", "/marcar-despachado", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(orderRef)
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"pedido_id": matchers.Like(pacttest.ExistingOrderID),
				"estado":    matchers.S("Despachado"),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newPortalClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		created, err := client.CreateOrder(ctx, pacttest.ExampleCreateOrderPayload())
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if created.PedidoID == 0 || created.Estado != "Verificado" {
			return fmt.Errorf("unexpected created order %+v", created)
		}

		if _, err := client.CreateOrder(ctx, map[string]any{"productos_cantidades": []any{}, "vip": false}); err == nil {
			return fmt.Errorf("expected empty order to be rejected")
		} else if apiErr, ok := err.(apiError); !ok || apiErr.status != http.StatusBadRequest {
			return fmt.Errorf("expected 400, got %v", err)
		}

		var invoice invoicePayload
		if err := client.post(ctx, "/crear-factura", map[string]any{"pedido_id": pacttest.ExistingOrderID}, &invoice); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		if invoice.PedidoID != pacttest.ExistingOrderID {
			return fmt.Errorf("unexpected invoice %+v", invoice)
		}

		if err := client.post(ctx, "/crear-factura", map[string]any{"pedido_id": pacttest.ExistingOrderID}, nil); err == nil {
			return fmt.Errorf("expected duplicate invoice to conflict")
		} else if apiErr, ok := err.(apiError); !ok || apiErr.kind != "conflict" {
			return fmt.Errorf("expected conflict, got %v", err)
		}

		var pending []pendingInvoicePayload
		if err := client.get(ctx, "/facturas-pendientes", &pending); err != nil {
			return fmt.Errorf("list pending invoices: %w", err)
		}
		if len(pending) == 0 {
			return fmt.Errorf("expected pending invoices")
		}

		var dispatched orderPayload
		if err := client.post(ctx, "/marcar-despachado", map[string]any{"pedido_id": pacttest.ExistingOrderID}, &dispatched); err != nil {
			return fmt.Errorf("dispatch order: %w", err)
		}
		if dispatched.Estado != "Despachado" {
			return fmt.Errorf("unexpected dispatched order %+v", dispatched)
		}
		return nil
	})
	require.NoError(t, err)
}

type portalClient struct {
	baseURL    string
	httpClient *http.Client
}

func newPortalClient(config pactconsumer.MockServerConfig) *portalClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &portalClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *portalClient) CreateOrder(ctx context.Context, payload map[string]any) (*orderPayload, error) {
	var order orderPayload
	headers := map[string]string{"X-Auth-Subject": "portal-user", "X-Auth-Role": pacttest.WarehouseRole}
	if err := c.do(ctx, http.MethodPost, "/crear-pedido", payload, headers, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *portalClient) post(ctx context.Context, path string, payload any, out any) error {
	return c.do(ctx, http.MethodPost, path, payload, nil, out)
}

func (c *portalClient) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, nil, out)
}

func (c *portalClient) do(ctx context.Context, method, path string, payload any, headers map[string]string, out any) error {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var problem problemDetail
		_ = json.NewDecoder(res.Body).Decode(&problem)
		kind, _ := problem.Extensions["kind"].(string)
		return apiError{status: res.StatusCode, kind: kind, detail: problem.Detail}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
