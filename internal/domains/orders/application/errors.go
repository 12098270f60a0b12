package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/wms-orders/internal/domains/orders/domain"
	"github.com/Apurer/wms-orders/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrNotFound signals a referenced order, invoice or product does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals a state-machine violation.
	ErrConflict = errors.New("conflict")
	// ErrForbidden signals the principal may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrUnavailable signals a collaborator could not be reached.
	ErrUnavailable = errors.New("dependency unavailable")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case isKind(err):
		return err
	case errors.Is(err, domain.ErrNoLines),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidProductCode),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidStatus):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, ports.ErrOrderNotFound),
		errors.Is(err, ports.ErrInvoiceNotFound),
		errors.Is(err, ports.ErrProductNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, ports.ErrInvoiceExists),
		errors.Is(err, ports.ErrOrderProtected),
		errors.Is(err, ports.ErrIdempotencyConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, ports.ErrInventoryUnavailable):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

func isKind(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrUnavailable)
}

// Kind names the error category for transports and workflow boundaries.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindConflict    Kind = "conflict"
	KindForbidden   Kind = "forbidden"
	KindUnavailable Kind = "unavailable"
	KindInternal    Kind = "internal"
)

// KindOf classifies err.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	default:
		return KindInternal
	}
}

// ErrorForKind rebuilds a classified error from a kind and message, e.g. after
// crossing a workflow boundary.
func ErrorForKind(kind Kind, msg string) error {
	var base error
	switch kind {
	case KindValidation:
		base = ErrInvalidInput
	case KindNotFound:
		base = ErrNotFound
	case KindConflict:
		base = ErrConflict
	case KindForbidden:
		base = ErrForbidden
	case KindUnavailable:
		base = ErrUnavailable
	default:
		return errors.New(msg)
	}
	return fmt.Errorf("%w: %s", base, msg)
}
