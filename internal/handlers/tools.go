package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/six-app/six-backend/internal/errordata"
	"github.com/six-app/six-backend/internal/services"
)

// ToolsHandler fronts the thin upstream clients the assistant UI calls
// directly: weather, stock quotes and web search.
type ToolsHandler struct {
	weatherService services.WeatherService
	financeService services.FinanceService
	searchService  services.SearchService
}

func NewToolsHandler(
	weatherService services.WeatherService,
	financeService services.FinanceService,
	searchService services.SearchService,
) *ToolsHandler {
	return &ToolsHandler{
		weatherService: weatherService,
		financeService: financeService,
		searchService:  searchService,
	}
}

func (th *ToolsHandler) Weather(c *gin.Context) {
	if th.weatherService == nil {
		notConfigured(c, "weather")
		return
	}
	lat := c.Query("lat")
	lon := c.Query("lon")
	if lat == "" || lon == "" {
		fail(c, errordata.CodeBadRequest, "lat and lon are required")
		return
	}
	report, err := th.weatherService.Current(c.Request.Context(), lat, lon)
	if err != nil {
		fail(c, errordata.CodeUpstreamFail, "weather lookup failed")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (th *ToolsHandler) Finance(c *gin.Context) {
	if th.financeService == nil {
		notConfigured(c, "finance")
		return
	}
	symbol := c.Query("symbol")
	if symbol == "" {
		fail(c, errordata.CodeBadRequest, "symbol is required")
		return
	}
	quote, err := th.financeService.Quote(c.Request.Context(), symbol)
	if err != nil {
		fail(c, errordata.CodeUpstreamFail, "quote lookup failed")
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (th *ToolsHandler) Search(c *gin.Context) {
	if th.searchService == nil {
		notConfigured(c, "search")
		return
	}
	var req struct {
		Query      string `json:"query"`
		MaxResults int    `json:"max_results,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		fail(c, errordata.CodeBadRequest, "query is required")
		return
	}
	results, err := th.searchService.Search(c.Request.Context(), req.Query, req.MaxResults)
	if err != nil {
		fail(c, errordata.CodeUpstreamFail, "search failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
