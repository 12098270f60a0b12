package wmsserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	ordermapper "github.com/Apurer/wms-orders/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
	"github.com/Apurer/wms-orders/internal/domains/orders/ports"
)

// InvoicesAPI wires HTTP transport with invoice generation and lookups.
type InvoicesAPI struct {
	service   ports.Service
	workflows ports.WorkflowOrchestrator
}

// NewInvoicesAPI creates an InvoicesAPI. A nil orchestrator invokes the service directly.
func NewInvoicesAPI(service ports.Service, workflows ports.WorkflowOrchestrator) InvoicesAPI {
	return InvoicesAPI{service: service, workflows: workflows}
}

// Post /crear-factura
// Issues the invoice of an order and moves it to Empacado x despachar
func (api *InvoicesAPI) GenerateInvoice(c *gin.Context) {
	orderID, ok := bindOrderReference(c)
	if !ok {
		return
	}
	invoice, err := api.generateInvoice(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordermapper.FromCreatedInvoice(invoice))
}

func (api *InvoicesAPI) generateInvoice(ctx context.Context, orderID int64) (*domain.Invoice, error) {
	if api.workflows != nil {
		return api.workflows.GenerateInvoice(ctx, orderID)
	}
	return api.service.GenerateInvoice(ctx, orderID)
}

// Get /facturas-pendientes
// Lists every invoice
func (api *InvoicesAPI) ListPendingInvoices(c *gin.Context) {
	invoices, err := api.service.ListPendingInvoices(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromPendingInvoices(invoices))
}

// Get /facturas/:facturaId
// Finds an invoice by id
func (api *InvoicesAPI) GetInvoice(c *gin.Context) {
	id, ok := parseIDParam(c, "facturaId")
	if !ok {
		return
	}
	invoice, err := api.service.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainInvoice(invoice))
}

// Delete /facturas/:facturaId
// Deletes an invoice, leaving its order untouched
func (api *InvoicesAPI) DeleteInvoice(c *gin.Context) {
	id, ok := parseIDParam(c, "facturaId")
	if !ok {
		return
	}
	if err := api.service.DeleteInvoice(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
