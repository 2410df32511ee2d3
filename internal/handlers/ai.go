package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/six-app/six-backend/internal/errordata"
	"github.com/six-app/six-backend/internal/requestdata"
	"github.com/six-app/six-backend/internal/services"
)

type AIHandler struct {
	openAIService services.OpenAIService
}

func NewAIHandler(openAIService services.OpenAIService) *AIHandler {
	return &AIHandler{openAIService: openAIService}
}

func (aih *AIHandler) GenerateImage(c *gin.Context) {
	if aih.openAIService == nil {
		notConfigured(c, "image generation")
		return
	}
	var req struct {
		Prompt string `json:"prompt"`
		Size   string `json:"size,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Prompt == "" {
		fail(c, errordata.CodeBadRequest, "prompt is required")
		return
	}

	plan := ""
	if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
		plan = rd.Plan
	}
	model, maxSize := services.ImageModelForPlan(plan)
	size := req.Size
	if size == "" || !sizeAllowed(size, maxSize) {
		size = maxSize
	}

	url, err := aih.openAIService.GenerateImage(c.Request.Context(), model, req.Prompt, size)
	if err != nil {
		fail(c, errordata.CodeUpstreamFail, "image generation failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "model": model, "size": size})
}

func (aih *AIHandler) DescribeImage(c *gin.Context) {
	if aih.openAIService == nil {
		notConfigured(c, "image description")
		return
	}
	var req struct {
		ImageURL string `json:"image_url"`
		Prompt   string `json:"prompt,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ImageURL == "" {
		fail(c, errordata.CodeBadRequest, "image_url is required")
		return
	}
	description, err := aih.openAIService.DescribeImage(c.Request.Context(), req.ImageURL, req.Prompt)
	if err != nil {
		fail(c, errordata.CodeUpstreamFail, "image description failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": description})
}

// sizeAllowed accepts a requested size only when it does not exceed the
// plan's ceiling in either dimension.
func sizeAllowed(requested, ceiling string) bool {
	rw, rh, ok := parseSize(requested)
	if !ok {
		return false
	}
	cw, chh, ok := parseSize(ceiling)
	if !ok {
		return false
	}
	return rw <= cw && rh <= chh
}

func parseSize(s string) (w, h int, ok bool) {
	var width, height int
	n, err := fmt.Sscanf(s, "%dx%d", &width, &height)
	if err != nil || n != 2 || width <= 0 || height <= 0 {
		return 0, 0, false
	}
	return width, height, true
}
