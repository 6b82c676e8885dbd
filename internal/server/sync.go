package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) SyncUser(c *gin.Context) {
	userID, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || userID <= 0 {
		AbortWithError(c, newValidationError("id", "invalid_user_id", "invalid user id"))
		return
	}

	result, err := s.enrollmentSvc.SyncUser(c.Request.Context(), userID, "manual")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
