package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/coursesync/internal/events"
	"go.uber.org/zap"
)

type orderCompletedRequest struct {
	OrderID int64 `json:"order_id"`
}

type subscriptionStatusRequest struct {
	SubscriptionID int64  `json:"subscription_id"`
	NewStatus      string `json:"new_status"`
	OldStatus      string `json:"old_status"`
}

type userLoginRequest struct {
	UserID int64 `json:"user_id"`
}

type downloadRequest struct {
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
}

// dispatchEvent runs the event through the registry. An event that only
// references unknown entities is accepted and ignored; any other handler
// failure is surfaced.
func (s *Server) dispatchEvent(c *gin.Context, event events.Event) (applied bool, ok bool) {
	errs := s.dispatcher.Dispatch(c.Request.Context(), event)
	ignored := false
	for _, err := range errs {
		if isNotFoundError(err) {
			ignored = true
			s.log.Warn("event referenced unknown entity",
				zap.String("event", string(event.Kind)),
				zap.Error(err),
			)
			continue
		}
		AbortWithError(c, err)
		return false, false
	}
	return !ignored, true
}

func (s *Server) OrderCompletedEvent(c *gin.Context) {
	var req orderCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.OrderID <= 0 {
		AbortWithError(c, newValidationError("order_id", "invalid_order_id", "invalid order id"))
		return
	}

	applied, ok := s.dispatchEvent(c, events.Event{
		Kind:    events.KindOrderCompleted,
		OrderID: req.OrderID,
	})
	if !ok {
		return
	}

	status := http.StatusOK
	if !applied {
		status = http.StatusAccepted
	}
	c.JSON(status, gin.H{"data": gin.H{"order_id": req.OrderID, "applied": applied}})
}

func (s *Server) SubscriptionStatusEvent(c *gin.Context) {
	var req subscriptionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.SubscriptionID <= 0 {
		AbortWithError(c, newValidationError("subscription_id", "invalid_subscription_id", "invalid subscription id"))
		return
	}
	status := strings.TrimSpace(req.NewStatus)
	if status == "" {
		AbortWithError(c, newValidationError("new_status", "invalid_status", "invalid status"))
		return
	}

	applied, ok := s.dispatchEvent(c, events.Event{
		Kind:           events.KindSubscriptionStatusChanged,
		SubscriptionID: req.SubscriptionID,
		Status:         status,
	})
	if !ok {
		return
	}

	code := http.StatusOK
	if !applied {
		code = http.StatusAccepted
	}
	c.JSON(code, gin.H{"data": gin.H{"subscription_id": req.SubscriptionID, "new_status": status, "applied": applied}})
}

func (s *Server) UserLoginEvent(c *gin.Context) {
	var req userLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.UserID <= 0 {
		AbortWithError(c, newValidationError("user_id", "invalid_user_id", "invalid user id"))
		return
	}

	applied, ok := s.dispatchEvent(c, events.Event{
		Kind:   events.KindUserLoggedIn,
		UserID: req.UserID,
	})
	if !ok {
		return
	}

	code := http.StatusOK
	if !applied {
		code = http.StatusAccepted
	}
	c.JSON(code, gin.H{"data": gin.H{"user_id": req.UserID, "applied": applied}})
}

func (s *Server) DownloadEvent(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	perm, err := s.downloadSvc.RecordDownload(c.Request.Context(), req.UserID, req.ProductID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": perm})
}
