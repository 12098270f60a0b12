package wmsserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	ordermapper "github.com/Apurer/wms-orders/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
	"github.com/Apurer/wms-orders/internal/domains/orders/ports"
	"github.com/Apurer/wms-orders/internal/shared/auth"
)

// HeaderIdempotencyKey makes POST /crear-pedido safe to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

// OrdersAPI wires HTTP transport with the orders service.
type OrdersAPI struct {
	service ports.Service
}

// NewOrdersAPI creates an OrdersAPI backed by the provided service.
func NewOrdersAPI(service ports.Service) OrdersAPI {
	return OrdersAPI{service: service}
}

// Post /crear-pedido
// Creates an order from product codes and quantities
func (api *OrdersAPI) CreateOrder(c *gin.Context) {
	var payload ordermapper.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	input := ports.CreateOrderInput{
		Principal:      auth.PrincipalFrom(c),
		Lines:          ordermapper.ToLineRequests(payload.ProductosCantidades),
		VIP:            payload.VIP,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey)),
	}
	result, err := api.service.CreateOrder(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, ordermapper.FromDomainOrder(result.Order))
}

// Get /pedidos
// Lists orders, optionally filtered by ?estado=
func (api *OrdersAPI) ListOrders(c *gin.Context) {
	filter := ports.OrderFilter{Status: domain.Status(strings.TrimSpace(c.Query("estado")))}
	orders, err := api.service.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrders(orders))
}

// Get /pedidos/:pedidoId
// Finds an order with its lines
func (api *OrdersAPI) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "pedidoId")
	if !ok {
		return
	}
	order, err := api.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}

// Delete /pedidos/:pedidoId
// Deletes an order that has not been invoiced
func (api *OrdersAPI) DeleteOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "pedidoId")
	if !ok {
		return
	}
	if err := api.service.DeleteOrder(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /marcar-despachado
// Moves an invoiced order to Despachado
func (api *OrdersAPI) MarkDispatched(c *gin.Context) {
	orderID, ok := bindOrderReference(c)
	if !ok {
		return
	}
	order, err := api.service.MarkDispatched(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}

func bindOrderReference(c *gin.Context) (int64, bool) {
	var payload ordermapper.OrderReference
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return 0, false
	}
	if payload.PedidoID == nil {
		respondBadRequest(c, errMissingOrderID)
		return 0, false
	}
	return *payload.PedidoID, true
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	value := c.Param(name)
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, invalidIDError(name, value))
		return 0, false
	}
	return id, true
}
