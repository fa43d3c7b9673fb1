package controller

import (
	"errors"
	"net/http"
	"strings"

	"cafefinder/auth"
	"cafefinder/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AccessController struct {
	Gate   *auth.Gate
	Logger *zap.Logger
}

func NewAccessController(gate *auth.Gate, logger *zap.Logger) *AccessController {
	return &AccessController{Gate: gate, Logger: logger}
}

// CheckAccess unlocks editing for the caller. The gate keeps no session; the
// returned token is the only record that the password was accepted.
func (ctl *AccessController) CheckAccess(c *gin.Context) {
	type Request struct {
		Password string `form:"password" json:"password"`
	}

	var req Request
	if err := c.ShouldBind(&req); err != nil || strings.TrimSpace(req.Password) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"granted": false,
			"error":   "Enter Password",
			"code":    "missing_field",
		})
		return
	}

	grant, err := ctl.Gate.Open(req.Password)
	if err != nil {
		if errors.Is(err, model.ErrAccessDenied) {
			ctl.Logger.Warn("access password rejected", zap.String("client_ip", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{
				"granted": false,
				"error":   "ERROR: Enter Correct Password",
			})
			return
		}
		ctl.Logger.Error("failed to open access gate", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"granted": false,
			"error":   "Failed to check password",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"granted":    true,
		"message":    `Click "Delete" to remove a place`,
		"token":      grant.Token,
		"expires_at": grant.ExpiresAt,
	})
}
