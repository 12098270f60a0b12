package wmsserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/wms-orders/internal/domains/orders/adapters/external/inventory"
	ordermapper "github.com/Apurer/wms-orders/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/wms-orders/internal/domains/orders/adapters/memory"
	"github.com/Apurer/wms-orders/internal/domains/orders/application"
	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
	"github.com/Apurer/wms-orders/internal/shared/auth"
	apierrors "github.com/Apurer/wms-orders/internal/shared/errors"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	resolver := inventory.NewStaticResolver(
		domain.ProductSnapshot{Code: 50123, Name: "Camiseta Deportiva", UnitPrice: decimal.RequireFromString("25500.00")},
		domain.ProductSnapshot{Code: 60001, Name: "Pantaloneta", UnitPrice: decimal.RequireFromString("10999.99")},
	)
	service := application.NewService(memory.NewRepository(), resolver,
		application.WithIdempotencyStore(memory.NewIdempotencyStore()))
	handlers := ApiHandleFunctions{
		OrdersAPI:   NewOrdersAPI(service),
		InvoicesAPI: NewInvoicesAPI(service, nil),
	}
	return NewRouterWithGinEngine(gin.New(), handlers)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

var managerHeaders = map[string]string{
	auth.HeaderSubject: "bodega-1",
	auth.HeaderRole:    auth.RoleWarehouseManager,
}

func createOrderBody(lines ...ordermapper.LineRequest) ordermapper.CreateOrderRequest {
	return ordermapper.CreateOrderRequest{ProductosCantidades: lines}
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) apierrors.ProblemDetail {
	t.Helper()
	assert.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	var problem apierrors.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestOrderToDispatchFlow(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/crear-pedido",
		createOrderBody(ordermapper.LineRequest{Codigo: 50123, Unidades: 2}), managerHeaders)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order ordermapper.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "Verificado", order.Estado)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Camiseta Deportiva", order.Items[0].NombreProducto)
	assert.True(t, order.Items[0].Subtotal.Equal(decimal.RequireFromString("51000")))
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))

	rec = doJSON(t, router, http.MethodPost, "/crear-factura", map[string]int64{"pedido_id": order.PedidoID}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var invoice ordermapper.CreatedInvoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invoice))
	assert.Equal(t, order.PedidoID, invoice.PedidoID)
	assert.True(t, invoice.Total.Equal(decimal.RequireFromString("51000")))

	rec = doJSON(t, router, http.MethodPost, "/crear-factura", map[string]int64{"pedido_id": order.PedidoID}, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeProblem(t, rec).Extensions["kind"])

	rec = doJSON(t, router, http.MethodPost, "/marcar-despachado", map[string]int64{"pedido_id": order.PedidoID}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "Despachado", order.Estado)

	rec = doJSON(t, router, http.MethodPost, "/marcar-despachado", map[string]int64{"pedido_id": order.PedidoID}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/facturas-pendientes", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []ordermapper.PendingInvoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, invoice.FacturaID, pending[0].ID)
}

func TestCreateOrderErrors(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name    string
		body    any
		headers map[string]string
		status  int
		kind    string
	}{
		{"empty lines", createOrderBody(), managerHeaders, http.StatusBadRequest, "validation"},
		{"zero quantity", createOrderBody(ordermapper.LineRequest{Codigo: 50123, Unidades: 0}), managerHeaders, http.StatusBadRequest, "validation"},
		{"unknown product", createOrderBody(ordermapper.LineRequest{Codigo: 99999, Unidades: 1}), managerHeaders, http.StatusNotFound, "not_found"},
		{"no principal", createOrderBody(ordermapper.LineRequest{Codigo: 50123, Unidades: 1}), nil, http.StatusForbidden, "forbidden"},
		{"wrong role", createOrderBody(ordermapper.LineRequest{Codigo: 50123, Unidades: 1}),
			map[string]string{auth.HeaderSubject: "x", auth.HeaderRole: "Ventas"}, http.StatusForbidden, "forbidden"},
		{"malformed body", "not-an-object", managerHeaders, http.StatusBadRequest, "validation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/crear-pedido", tt.body, tt.headers)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.kind, decodeProblem(t, rec).Extensions["kind"])
		})
	}

	rec := doJSON(t, router, http.MethodGet, "/pedidos", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCreateOrderIdempotencyKey(t *testing.T) {
	router := newTestRouter(t)
	headers := map[string]string{HeaderIdempotencyKey: "pedido-42"}
	for k, v := range managerHeaders {
		headers[k] = v
	}
	body := createOrderBody(ordermapper.LineRequest{Codigo: 60001, Unidades: 3})

	first := doJSON(t, router, http.MethodPost, "/crear-pedido", body, headers)
	require.Equal(t, http.StatusCreated, first.Code)
	replay := doJSON(t, router, http.MethodPost, "/crear-pedido", body, headers)
	require.Equal(t, http.StatusOK, replay.Code)
	assert.JSONEq(t, first.Body.String(), replay.Body.String())

	changed := doJSON(t, router, http.MethodPost, "/crear-pedido",
		createOrderBody(ordermapper.LineRequest{Codigo: 60001, Unidades: 4}), headers)
	assert.Equal(t, http.StatusConflict, changed.Code)
}

func TestOrderReferenceValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/crear-factura", map[string]any{}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeProblem(t, rec).Detail, "pedido_id")

	rec = doJSON(t, router, http.MethodPost, "/crear-factura", map[string]int64{"pedido_id": 404}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/marcar-despachado", map[string]int64{"pedido_id": 404}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/pedidos/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/pedidos?estado=Perdido", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/no-such-route", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "/no-such-route", decodeProblem(t, rec).Instance)
}

func TestDeleteSemantics(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/crear-pedido",
		createOrderBody(ordermapper.LineRequest{Codigo: 50123, Unidades: 1}), managerHeaders)
	require.Equal(t, http.StatusCreated, rec.Code)
	var order ordermapper.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))

	rec = doJSON(t, router, http.MethodPost, "/crear-factura", map[string]int64{"pedido_id": order.PedidoID}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var invoice ordermapper.CreatedInvoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invoice))

	orderPath := "/pedidos/" + strconv.FormatInt(order.PedidoID, 10)
	invoicePath := "/facturas/" + strconv.FormatInt(invoice.FacturaID, 10)

	rec = doJSON(t, router, http.MethodDelete, orderPath, nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodGet, invoicePath, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, invoicePath, nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, orderPath, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "Empacado x despachar", order.Estado)

	rec = doJSON(t, router, http.MethodDelete, orderPath, nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, router, http.MethodGet, orderPath, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
