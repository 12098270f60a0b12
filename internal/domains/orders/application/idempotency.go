package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/Apurer/wms-orders/internal/domains/orders/ports"
)

type normalizedCreateOrderInput struct {
	Lines []normalizedLine `json:"lines"`
	VIP   bool             `json:"vip"`
}

type normalizedLine struct {
	ProductCode int64 `json:"productCode"`
	Quantity    int32 `json:"quantity"`
}

// FingerprintCreateOrder builds a deterministic hash of the order request, excluding
// the idempotency key and the principal. Line order is significant.
func FingerprintCreateOrder(input ports.CreateOrderInput) (string, error) {
	normalized := normalizedCreateOrderInput{
		Lines: make([]normalizedLine, 0, len(input.Lines)),
		VIP:   input.VIP,
	}
	for _, line := range input.Lines {
		normalized.Lines = append(normalized.Lines, normalizedLine{ProductCode: line.ProductCode, Quantity: line.Quantity})
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
