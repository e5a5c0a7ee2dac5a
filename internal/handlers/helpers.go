package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ticketera/internal/services"
)

// accepts int, int64, float64 or string values
func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}

func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func queryInt(c *gin.Context, key string, def int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

var purchaseStatus = map[services.ErrorKind]int{
	services.KindValidation:  http.StatusBadRequest,
	services.KindPhase:       http.StatusBadRequest,
	services.KindRateLimited: http.StatusTooManyRequests,
	services.KindDuplicate:   http.StatusConflict,
	services.KindInvalidCode: http.StatusUnprocessableEntity,
	services.KindExpired:     http.StatusUnprocessableEntity,
	services.KindLockedOut:   http.StatusUnprocessableEntity,
	services.KindDelivery:    http.StatusBadGateway,
	services.KindStorage:     http.StatusServiceUnavailable,
}

// writeError maps service errors to status codes. Unknown errors are logged
// and reported as 500 without details.
func writeError(c *gin.Context, tag string, err error) {
	var pe *services.PurchaseError
	if errors.As(err, &pe) {
		status, ok := purchaseStatus[pe.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		if pe.Err != nil && status >= http.StatusInternalServerError {
			log.Printf("[%s] %s: %v", tag, pe.Kind, pe.Err)
		}
		body := gin.H{"error": pe.Message, "kind": pe.Kind}
		if pe.Field != "" {
			body["field"] = pe.Field
		}
		c.JSON(status, body)
		return
	}

	switch {
	case errors.Is(err, services.ErrCheckoutNotFound),
		errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrTicketTypeNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrItemNotInCart):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrOrderNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidAction),
		errors.Is(err, services.ErrUnknownStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		log.Printf("[%s] internal error: %v", tag, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
