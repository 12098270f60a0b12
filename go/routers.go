package wmsserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/wms-orders/internal/shared/auth"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers of every API surface.
type ApiHandleFunctions struct {
	// Routes for the orders part of the workflow API
	OrdersAPI OrdersAPI
	// Routes for the invoices part of the workflow API
	InvoicesAPI InvoicesAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the workflow routes and their middlewares to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	router.Use(RequestID(), auth.Middleware())
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			router.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	router.NoRoute(func(c *gin.Context) {
		respondProblem(c, notFoundRoute(c.Request.URL.Path))
	})
	return router
}

// DefaultHandleFunc answers routes whose handler is not wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			"CreateOrder",
			http.MethodPost,
			"/crear-pedido",
			handleFunctions.OrdersAPI.CreateOrder,
		},
		{
			"ListOrders",
			http.MethodGet,
			"/pedidos",
			handleFunctions.OrdersAPI.ListOrders,
		},
		{
			"GetOrder",
			http.MethodGet,
			"/pedidos/:pedidoId",
			handleFunctions.OrdersAPI.GetOrder,
		},
		{
			"DeleteOrder",
			http.MethodDelete,
			"/pedidos/:pedidoId",
			handleFunctions.OrdersAPI.DeleteOrder,
		},
		{
			"MarkDispatched",
			http.MethodPost,
			"/marcar-despachado",
			handleFunctions.OrdersAPI.MarkDispatched,
		},
		{
			"GenerateInvoice",
			http.MethodPost,
			"/crear-factura",
			handleFunctions.InvoicesAPI.GenerateInvoice,
		},
		{
			"ListPendingInvoices",
			http.MethodGet,
			"/facturas-pendientes",
			handleFunctions.InvoicesAPI.ListPendingInvoices,
		},
		{
			"GetInvoice",
			http.MethodGet,
			"/facturas/:facturaId",
			handleFunctions.InvoicesAPI.GetInvoice,
		},
		{
			"DeleteInvoice",
			http.MethodDelete,
			"/facturas/:facturaId",
			handleFunctions.InvoicesAPI.DeleteInvoice,
		},
	}
}
