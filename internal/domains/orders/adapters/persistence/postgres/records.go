package postgres

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
)

// orderRecord maps the order aggregate root. Lines cascade with the order;
// an invoice blocks deleting it.
type orderRecord struct {
	ID        int64             `gorm:"primaryKey;autoIncrement;column:id"`
	CreatedOn time.Time         `gorm:"column:created_on;type:date"`
	VIP       bool              `gorm:"column:vip"`
	Status    string            `gorm:"column:status;type:varchar(32);index"`
	Lines     []orderLineRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Invoice   *invoiceRecord    `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT"`
	CreatedAt time.Time         `gorm:"column:created_at;index"`
	UpdatedAt time.Time         `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// orderLineRecord stores the product snapshot of one line.
type orderLineRecord struct {
	ID          int64           `gorm:"primaryKey;autoIncrement;column:id"`
	OrderID     int64           `gorm:"column:order_id;not null;index:idx_order_lines_order_position,priority:1"`
	Position    int             `gorm:"column:position;not null;index:idx_order_lines_order_position,priority:2"`
	ProductCode int64           `gorm:"column:product_code;not null;index"`
	Name        string          `gorm:"column:product_name;size:255"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity    int32           `gorm:"column:quantity;not null"`
}

func (orderLineRecord) TableName() string { return "order_lines" }

// invoiceRecord stores the billing snapshot; order_id is unique so an order is invoiced at most once.
type invoiceRecord struct {
	ID              int64           `gorm:"primaryKey;autoIncrement;column:id"`
	OrderID         int64           `gorm:"column:order_id;not null;uniqueIndex"`
	Total           decimal.Decimal `gorm:"column:total;type:numeric(14,2);not null"`
	ProductionOrder bool            `gorm:"column:production_order;not null;default:false"`
	IssuedAt        time.Time       `gorm:"column:issued_at;index"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
}

func (invoiceRecord) TableName() string { return "invoices" }

func toOrderRecord(order *domain.Order) orderRecord {
	rec := orderRecord{
		ID:        order.ID,
		CreatedOn: order.CreatedOn,
		VIP:       order.VIP,
		Status:    string(order.Status),
		Lines:     make([]orderLineRecord, 0, len(order.Lines)),
	}
	for i, line := range order.Lines {
		rec.Lines = append(rec.Lines, orderLineRecord{
			OrderID:     order.ID,
			Position:    i,
			ProductCode: line.ProductCode,
			Name:        line.Name,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
		})
	}
	return rec
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:        r.ID,
		CreatedOn: r.CreatedOn.UTC(),
		VIP:       r.VIP,
		Status:    domain.Status(r.Status),
		Lines:     make([]domain.Line, 0, len(r.Lines)),
	}
	for _, line := range r.Lines {
		order.Lines = append(order.Lines, domain.Line{
			ProductCode: line.ProductCode,
			Name:        line.Name,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
		})
	}
	return order
}

func toInvoiceRecord(invoice *domain.Invoice) invoiceRecord {
	return invoiceRecord{
		ID:              invoice.ID,
		OrderID:         invoice.OrderID,
		Total:           invoice.Total,
		ProductionOrder: invoice.ProductionOrder,
		IssuedAt:        invoice.IssuedAt,
	}
}

func (r invoiceRecord) toDomain() *domain.Invoice {
	return &domain.Invoice{
		ID:              r.ID,
		OrderID:         r.OrderID,
		Total:           r.Total,
		ProductionOrder: r.ProductionOrder,
		IssuedAt:        r.IssuedAt.UTC(),
	}
}
