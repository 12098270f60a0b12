package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var errOutOfStock = errors.New("out of stock")

func newProblemContext(path string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, path, nil)
	return c, rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetail {
	t.Helper()
	require.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestChainedResponderUsesFirstMatchingMapper(t *testing.T) {
	responder := NewChainedResponder("https://wms.example",
		func(err error) (ProblemDetail, bool) {
			if errors.Is(err, errOutOfStock) {
				return NewKindProblem(ErrConflict, "conflict", err.Error()), true
			}
			return ProblemDetail{}, false
		},
	)
	c, rec := newProblemContext("/crear-factura")

	responder.RespondError(c, fmt.Errorf("invoice order 7: %w", errOutOfStock))

	require.Equal(t, http.StatusConflict, rec.Code)
	problem := decodeProblem(t, rec)
	require.Equal(t, "https://wms.example"+TypeConflict, problem.Type)
	require.Equal(t, "/crear-factura", problem.Instance)
	require.Equal(t, "invoice order 7: out of stock", problem.Detail)
	require.Equal(t, "conflict", problem.Extensions["kind"])
}

func TestResponderHidesUnknownErrors(t *testing.T) {
	responder := NewChainedResponder("")
	c, rec := newProblemContext("/pedidos/3")

	responder.RespondError(c, errors.New("pq: connection reset by peer"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	problem := decodeProblem(t, rec)
	require.Equal(t, TypeInternal, problem.Type)
	require.Equal(t, "unexpected error", problem.Detail)
	require.Equal(t, "internal", problem.Extensions["kind"])
}

func TestResponderPassesProblemErrorsThrough(t *testing.T) {
	responder := NewChainedResponder("")
	c, rec := newProblemContext("/facturas/9")

	responder.RespondError(c, NewNotFoundProblem("invoice", 9))

	require.Equal(t, http.StatusNotFound, rec.Code)
	problem := decodeProblem(t, rec)
	require.Equal(t, "invoice with identifier '9' not found", problem.Detail)
	require.Equal(t, "invoice", problem.Extensions["resourceType"])
}

func TestWithExtensionDoesNotShareTemplateMap(t *testing.T) {
	tagged := NewKindProblem(ErrUnavailable, "unavailable", "inventory down")

	require.Equal(t, http.StatusServiceUnavailable, tagged.Status)
	require.Nil(t, ErrUnavailable.Extensions)
	require.Equal(t, "Dependency Unavailable: inventory down", tagged.Error())
}
