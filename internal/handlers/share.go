package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/six-app/six-backend/internal/errordata"
	"github.com/six-app/six-backend/internal/services"
)

type ShareHandler struct {
	shareService services.ShareService
}

func NewShareHandler(shareService services.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

func (sh *ShareHandler) Create(c *gin.Context) {
	var req struct {
		TargetURL  string `json:"target_url"`
		Kind       string `json:"kind"`
		TTLSeconds int64  `json:"ttl_seconds,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errordata.CodeBadRequest, "invalid request body")
		return
	}
	link, err := sh.shareService.CreateLink(c.Request.Context(), req.TargetURL, req.Kind, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		if errors.Is(err, services.ErrBadTargetURL) {
			fail(c, errordata.CodeBadRequest, "target_url must be an absolute http(s) URL")
			return
		}
		fail(c, errordata.CodeBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": link.Token, "url": "/s/" + link.Token})
}

// Resolve records the hit and 302s to the stored target.
func (sh *ShareHandler) Resolve(c *gin.Context) {
	token := c.Param("token")
	link, err := sh.shareService.Resolve(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, services.ErrShareLinkNotFound) {
			fail(c, errordata.CodeNotFound, "share link not found")
			return
		}
		fail(c, errordata.CodeServerError, "could not resolve share link")
		return
	}
	c.Redirect(http.StatusFound, link.TargetURL)
}
