package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/six-app/six-backend/internal/errordata"
	"github.com/six-app/six-backend/internal/services"
)

type MeHandler struct {
	meService services.MeService
}

func NewMeHandler(meService services.MeService) *MeHandler {
	return &MeHandler{meService: meService}
}

func (mh *MeHandler) GetMe(c *gin.Context) {
	user, err := mh.meService.GetMe(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			fail(c, errordata.CodeNotFound, "user not found")
			return
		}
		fail(c, errordata.CodeServerError, "could not load profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (mh *MeHandler) UpdateDisplayName(c *gin.Context) {
	var req struct {
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.DisplayName == "" {
		fail(c, errordata.CodeBadRequest, "display_name is required")
		return
	}
	user, err := mh.meService.UpdateDisplayName(c.Request.Context(), req.DisplayName)
	if err != nil {
		fail(c, errordata.CodeServerError, "could not update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
