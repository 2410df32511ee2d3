package handlers

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/six-app/six-backend/internal/errordata"
	"github.com/six-app/six-backend/internal/services"
)

type FileHandler struct {
	fileService services.FileService
}

func NewFileHandler(fileService services.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// Ingest accepts either a multipart upload (field "file") or a JSON
// body with base64 content.
func (fh *FileHandler) Ingest(c *gin.Context) {
	if fh.fileService == nil {
		notConfigured(c, "file storage")
		return
	}

	var name, mime string
	var content []byte

	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			fail(c, errordata.CodeBadRequest, "missing file field")
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			fail(c, errordata.CodeServerError, "could not read upload")
			return
		}
		defer f.Close()
		content, err = io.ReadAll(f)
		if err != nil {
			fail(c, errordata.CodeServerError, "could not read upload")
			return
		}
		name = fileHeader.Filename
		mime = fileHeader.Header.Get("Content-Type")
		if mime == "" {
			mime = "application/octet-stream"
		}
	} else {
		var req struct {
			Name          string `json:"name"`
			Mime          string `json:"mime"`
			ContentBase64 string `json:"content_base64"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.ContentBase64 == "" {
			fail(c, errordata.CodeBadRequest, "invalid request body")
			return
		}
		decoded, err := base64.StdEncoding.DecodeString(req.ContentBase64)
		if err != nil {
			fail(c, errordata.CodeBadRequest, "content_base64 is not valid base64")
			return
		}
		name = req.Name
		mime = req.Mime
		content = decoded
	}

	obj, err := fh.fileService.Ingest(c.Request.Context(), name, mime, content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFileTooLarge):
			fail(c, errordata.CodeBadRequest, "file exceeds the plan size limit")
		case errors.Is(err, services.ErrUnsupportedMime):
			fail(c, errordata.CodeBadRequest, "unsupported file type")
		default:
			fail(c, errordata.CodeUpstreamFail, "could not store file")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": obj})
}

// Analyze runs the heuristic scanner over a stored file (file_id) or
// inline text (content).
func (fh *FileHandler) Analyze(c *gin.Context) {
	if fh.fileService == nil {
		notConfigured(c, "file storage")
		return
	}
	var req struct {
		FileID  string `json:"file_id,omitempty"`
		Content string `json:"content,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errordata.CodeBadRequest, "invalid request body")
		return
	}

	if req.FileID == "" {
		if req.Content == "" {
			fail(c, errordata.CodeBadRequest, "file_id or content is required")
			return
		}
		report := fh.fileService.AnalyzeInline(c.Request.Context(), req.Content)
		c.JSON(http.StatusOK, gin.H{"analysis": report})
		return
	}

	fileID, err := uuid.Parse(req.FileID)
	if err != nil {
		fail(c, errordata.CodeBadRequest, "invalid file_id")
		return
	}
	obj, report, err := fh.fileService.Analyze(c.Request.Context(), fileID)
	if err != nil {
		if errors.Is(err, services.ErrFileObjectNotFound) {
			fail(c, errordata.CodeNotFound, "file not found")
			return
		}
		fail(c, errordata.CodeUpstreamFail, "could not analyze file")
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": obj, "analysis": report})
}

func (fh *FileHandler) List(c *gin.Context) {
	if fh.fileService == nil {
		notConfigured(c, "file storage")
		return
	}
	files, err := fh.fileService.List(c.Request.Context())
	if err != nil {
		fail(c, errordata.CodeServerError, "could not list files")
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}
