package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	synclogdomain "github.com/smallbiznis/coursesync/internal/synclog/domain"
	"github.com/smallbiznis/coursesync/pkg/db/pagination"
)

func (s *Server) ListSyncLogs(c *gin.Context) {
	var query struct {
		UserID    string `form:"user_id"`
		Action    string `form:"action"`
		StartAt   string `form:"start_at"`
		EndAt     string `form:"end_at"`
		PageToken string `form:"page_token"`
		PageSize  int    `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	userID, err := parseOptionalInt64(query.UserID)
	if err != nil {
		AbortWithError(c, newValidationError("user_id", "invalid_user_id", "invalid user id"))
		return
	}
	startAt, err := parseOptionalTime(query.StartAt, false)
	if err != nil {
		AbortWithError(c, newValidationError("start_at", "invalid_start_at", "invalid start time"))
		return
	}
	endAt, err := parseOptionalTime(query.EndAt, true)
	if err != nil {
		AbortWithError(c, newValidationError("end_at", "invalid_end_at", "invalid end time"))
		return
	}

	resp, err := s.synclogSvc.List(c.Request.Context(), synclogdomain.ListSyncLogRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		UserID:  userID,
		Action:  strings.TrimSpace(query.Action),
		StartAt: startAt,
		EndAt:   endAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
