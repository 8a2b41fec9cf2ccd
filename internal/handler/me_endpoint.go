package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *AuthHandler) getMe(c *gin.Context) {
	c.JSON(http.StatusOK, newMeResponse(currentUser(c)))
}

func (h *AuthHandler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	user, err := h.accounts.UpdateProfile(c.Request.Context(), currentUser(c).ID, req.Name)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMeResponse(user))
}
