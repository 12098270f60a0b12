package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/Apurer/wms-orders/internal/shared/auth"
)

// Config carries environment-driven settings for the API, worker and purger processes.
type Config struct {
	Port               string
	PostgresDSN        string
	InventoryBaseURL   string
	InventoryTimeout   time.Duration
	ResolveConcurrency int
	CreatorRole        string
	StrictInvoicing    bool
	IdempotencyTTL     time.Duration
	TemporalAddress    string
	TemporalNamespace  string
	TemporalDisabled   bool
	OTLPEndpoint       string
	Environment        string
	LogLevel           string
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		InventoryBaseURL:  strings.TrimSpace(os.Getenv("INVENTORY_BASE_URL")),
		CreatorRole:       envDefault("ORDER_CREATOR_ROLE", auth.RoleWarehouseManager),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		OTLPEndpoint:      strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		Environment:       envDefault("ENVIRONMENT", "local"),
		LogLevel:          envDefault("LOG_LEVEL", "info"),
	}

	timeoutMS, err := positiveInt("INVENTORY_TIMEOUT_MS", 3000)
	if err != nil {
		return Config{}, err
	}
	cfg.InventoryTimeout = time.Duration(timeoutMS) * time.Millisecond

	if cfg.ResolveConcurrency, err = positiveInt("INVENTORY_MAX_CONCURRENCY", 4); err != nil {
		return Config{}, err
	}

	ttlHours, err := positiveInt("IDEMPOTENCY_TTL_HOURS", 24)
	if err != nil {
		return Config{}, err
	}
	cfg.IdempotencyTTL = time.Duration(ttlHours) * time.Hour

	cfg.StrictInvoicing = true
	if raw := strings.TrimSpace(os.Getenv("STRICT_INVOICE_STATUS")); raw != "" {
		strict, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("STRICT_INVOICE_STATUS must be a boolean")
		}
		cfg.StrictInvoicing = strict
	}
	return cfg, nil
}

func positiveInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return value, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
