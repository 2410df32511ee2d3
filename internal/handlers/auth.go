package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/six-app/six-backend/internal/errordata"
	"github.com/six-app/six-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) SendOtp(c *gin.Context) {
	var req struct {
		Email   string `json:"email"`
		Channel string `json:"channel,omitempty"`
		Force   bool   `json:"force,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errordata.CodeBadRequest, "invalid request body")
		return
	}
	result, err := ah.authService.SendOneTimeCode(c.Request.Context(), req.Email, req.Channel, req.Force)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBadEmail):
			fail(c, errordata.CodeBadRequest, "invalid email address")
		case errors.Is(err, services.ErrDeliveryFail):
			fail(c, errordata.CodeUpstreamFail, "could not deliver the code, try again")
		default:
			fail(c, errordata.CodeServerError, "could not issue a code")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "resent": result.Sent, "channel": result.Channel})
}

func (ah *AuthHandler) VerifyOtp(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errordata.CodeBadRequest, "invalid request body")
		return
	}
	result, err := ah.authService.VerifyOneTimeCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBadEmail), errors.Is(err, services.ErrBadCode):
			fail(c, errordata.CodeBadRequest, err.Error())
		case errors.Is(err, services.ErrInvalidOrExpired):
			fail(c, errordata.CodeUnauthorized, "invalid_or_expired")
		default:
			fail(c, errordata.CodeServerError, "could not verify the code")
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
	accessToken, refreshToken, err := ah.authService.Refresh(c.Request.Context())
	if err != nil {
		fail(c, errordata.CodeUnauthorized, "could not refresh session")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    int(ah.authService.GetAccessTTL().Seconds()),
	})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(c.Request.Context()); err != nil {
		fail(c, errordata.CodeServerError, "could not log out")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
