package wmsserver

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/wms-orders/internal/domains/orders/application"
	apierrors "github.com/Apurer/wms-orders/internal/shared/errors"
)

var responder = apierrors.NewChainedResponder("", applicationProblem)

// applicationProblem maps application error kinds onto problem templates.
func applicationProblem(err error) (apierrors.ProblemDetail, bool) {
	kind := application.KindOf(err)
	var template apierrors.ProblemDetail
	switch kind {
	case application.KindValidation:
		template = apierrors.ErrValidation
	case application.KindNotFound:
		template = apierrors.ErrNotFound
	case application.KindConflict:
		template = apierrors.ErrConflict
	case application.KindForbidden:
		template = apierrors.ErrForbidden
	case application.KindUnavailable:
		template = apierrors.ErrUnavailable
	default:
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.NewKindProblem(template, string(kind), err.Error()), true
}

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

// respondServiceError turns a service or workflow error into a problem response.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	responder.RespondError(c, err)
}

// respondBadRequest reports a malformed request body or parameter.
func respondBadRequest(c *gin.Context, err error) {
	respondProblem(c, apierrors.NewKindProblem(apierrors.ErrBadRequest, string(application.KindValidation), err.Error()))
}

func notFoundRoute(path string) apierrors.ProblemDetail {
	return apierrors.NewNotFoundProblem("route", path).WithExtension("kind", string(application.KindNotFound))
}

var errMissingOrderID = errors.New("pedido_id is required")

func invalidIDError(name, value string) error {
	return fmt.Errorf("%s must be a positive integer, got %q", name, value)
}
