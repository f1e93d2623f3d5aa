package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	foremandomain "github.com/groundworklabs/groundwork/internal/foreman/domain"
	payrolldomain "github.com/groundworklabs/groundwork/internal/payroll/domain"
	ratecarddomain "github.com/groundworklabs/groundwork/internal/ratecard/domain"
	ratingdomain "github.com/groundworklabs/groundwork/internal/rating/domain"
	redlinedomain "github.com/groundworklabs/groundwork/internal/redline/domain"
	"github.com/groundworklabs/groundwork/internal/taskqueue"
)

var ErrInvalidRequest = errors.New("invalid request")

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// AbortWithError maps domain errors onto HTTP statuses: lookup misses
// to 404, unresolvable inputs to 422, workflow state conflicts to 409,
// malformed requests to 400, everything else 500.
func AbortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	body := errorBody{Error: err.Error()}

	var unknownCodes *ratingdomain.UnknownRateCodeError
	var invalidTransition *redlinedomain.InvalidTransitionError
	var statusErr *payrolldomain.StatusError

	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ratingdomain.ErrNoLineItems),
		errors.Is(err, ratingdomain.ErrNegativeQuantity),
		errors.Is(err, ratecarddomain.ErrNegativeRate),
		errors.Is(err, ratecarddomain.ErrEmptyImport),
		errors.Is(err, foremandomain.ErrNegativeFootage),
		errors.Is(err, foremandomain.ErrConflictingDayFlags),
		errors.Is(err, redlinedomain.ErrUnknownField),
		errors.Is(err, redlinedomain.ErrUnknownAction):
		status = http.StatusBadRequest

	case errors.Is(err, ratecarddomain.ErrGroupNotFound),
		errors.Is(err, ratecarddomain.ErrProfileNotFound),
		errors.Is(err, ratecarddomain.ErrItemNotFound),
		errors.Is(err, redlinedomain.ErrRedlineNotFound),
		errors.Is(err, ratingdomain.ErrCalculationNotFound),
		errors.Is(err, payrolldomain.ErrRecordNotFound),
		errors.Is(err, payrolldomain.ErrReturnNotFound):
		status = http.StatusNotFound

	case errors.Is(err, ratingdomain.ErrNoRateCardFound):
		status = http.StatusUnprocessableEntity

	case errors.As(err, &unknownCodes):
		status = http.StatusUnprocessableEntity
		body.Details = gin.H{"unknown_codes": unknownCodes.Codes}

	case errors.Is(err, ratecarddomain.ErrGroupConflict),
		errors.Is(err, ratecarddomain.ErrDuplicateCode),
		errors.Is(err, redlinedomain.ErrEmptyRedline),
		errors.Is(err, redlinedomain.ErrChainConflict),
		errors.As(err, &invalidTransition),
		errors.As(err, &statusErr):
		status = http.StatusConflict

	case errors.Is(err, taskqueue.ErrQueueFull),
		errors.Is(err, taskqueue.ErrQueueClosed):
		status = http.StatusServiceUnavailable
	}

	c.AbortWithStatusJSON(status, body)
}

func invalidRequestError() error { return ErrInvalidRequest }
