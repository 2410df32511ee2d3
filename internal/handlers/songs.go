package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/six-app/six-backend/internal/errordata"
	"github.com/six-app/six-backend/internal/services"
)

type SongHandler struct {
	musicService services.MusicService
}

func NewSongHandler(musicService services.MusicService) *SongHandler {
	return &SongHandler{musicService: musicService}
}

func (sh *SongHandler) List(c *gin.Context) {
	songs, err := sh.musicService.ListSongs(c.Request.Context())
	if err != nil {
		fail(c, errordata.CodeServerError, "could not list songs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"songs": songs})
}

func (sh *SongHandler) Play(c *gin.Context) {
	sh.bump(c, sh.musicService.Play, "play_count")
}

func (sh *SongHandler) Like(c *gin.Context) {
	sh.bump(c, sh.musicService.Like, "like_count")
}

func (sh *SongHandler) bump(c *gin.Context, fn func(ctx context.Context, songID uuid.UUID) (int64, error), field string) {
	songID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, errordata.CodeBadRequest, "invalid song id")
		return
	}
	count, err := fn(c.Request.Context(), songID)
	if err != nil {
		if errors.Is(err, services.ErrSongNotFound) {
			fail(c, errordata.CodeNotFound, "song not found")
			return
		}
		fail(c, errordata.CodeServerError, "could not record engagement")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, field: count})
}

// Create is gated behind the max plan; there is no separate admin role.
func (sh *SongHandler) Create(c *gin.Context) {
	var req struct {
		Title           string `json:"title"`
		Artist          string `json:"artist"`
		AudioURL        string `json:"audio_url"`
		CoverURL        string `json:"cover_url,omitempty"`
		DurationSeconds int    `json:"duration_seconds,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errordata.CodeBadRequest, "invalid request body")
		return
	}
	song, err := sh.musicService.AddSong(c.Request.Context(), req.Title, req.Artist, req.AudioURL, req.CoverURL, req.DurationSeconds)
	if err != nil {
		fail(c, errordata.CodeBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"song": song})
}
