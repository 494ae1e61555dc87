package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "poolfund.backend/internal/domain/errors"
)

// Success sends a success response with ok=true merged into the payload.
func Success(c *gin.Context, status int, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["ok"] = true
	c.JSON(status, data)
}

// Error renders an error as {ok:false, code, error}. Domain sentinels
// are mapped to their HTTP status; anything unrecognized renders as a
// generic 500 so dependency failures never leak details to the caller.
func Error(c *gin.Context, err error) {
	appErr := asAppError(err)
	c.JSON(appErr.Status, gin.H{
		"ok":    false,
		"code":  appErr.Code,
		"error": appErr.Message,
	})
}

func asAppError(err error) *domainerrors.AppError {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return domainerrors.NotFound(err.Error())
	case errors.Is(err, domainerrors.ErrInvalidCredentials):
		return domainerrors.Unauthorized("invalid email or password")
	case errors.Is(err, domainerrors.ErrUnauthorized):
		return domainerrors.Unauthorized(err.Error())
	case errors.Is(err, domainerrors.ErrForbidden):
		return domainerrors.Forbidden(err.Error())
	case errors.Is(err, domainerrors.ErrAlreadyExists):
		return domainerrors.Conflict(err.Error())
	case errors.Is(err, domainerrors.ErrAlreadyProcessed),
		errors.Is(err, domainerrors.ErrAlreadySettled):
		return domainerrors.NewAppError(http.StatusConflict, domainerrors.CodeConflict, err.Error(), err)
	case errors.Is(err, domainerrors.ErrNoActiveCycle),
		errors.Is(err, domainerrors.ErrNoActiveBalance),
		errors.Is(err, domainerrors.ErrInsufficientBalance),
		errors.Is(err, domainerrors.ErrInvalidAmount),
		errors.Is(err, domainerrors.ErrInvalidProfit),
		errors.Is(err, domainerrors.ErrInvalidInput),
		errors.Is(err, domainerrors.ErrBadRequest):
		return domainerrors.NewError(err.Error(), err)
	default:
		return domainerrors.InternalError(err)
	}
}
