package migrations

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the orders bounded context: orders own their lines
// (cascade), invoices reference orders (restrict, unique per order).
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
		&orderLineRecord{},
		&invoiceRecord{},
		&idempotencyRecord{},
	)
}

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

type orderLineRecord struct {
	ID          int64           `gorm:"primaryKey;autoIncrement;column:id"`
	OrderID     int64           `gorm:"column:order_id;not null;index:idx_order_lines_order_position,priority:1"`
	Position    int             `gorm:"column:position;not null;index:idx_order_lines_order_position,priority:2"`
	ProductCode int64           `gorm:"column:product_code;not null;index"`
	Name        string          `gorm:"column:product_name;size:255"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity    int32           `gorm:"column:quantity;not null;check:chk_order_lines_quantity,quantity > 0"`
}

func (orderLineRecord) TableName() string { return "order_lines" }

type invoiceRecord struct {
	ID              int64           `gorm:"primaryKey;autoIncrement;column:id"`
	OrderID         int64           `gorm:"column:order_id;not null;uniqueIndex"`
	Total           decimal.Decimal `gorm:"column:total;type:numeric(14,2);not null"`
	ProductionOrder bool            `gorm:"column:production_order;not null;default:false"`
	IssuedAt        time.Time       `gorm:"column:issued_at;index"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
}

func (invoiceRecord) TableName() string { return "invoices" }

type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderID     int64     `gorm:"column:order_id;index"`
	CreatedAt   time.Time `gorm:"column:created_at;index"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }
