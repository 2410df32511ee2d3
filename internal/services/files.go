package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/six-app/six-backend/internal/logger"
	"github.com/six-app/six-backend/internal/repos"
	"github.com/six-app/six-backend/internal/requestdata"
	"github.com/six-app/six-backend/internal/types"
)

// Per-plan upload ceilings.
const (
	FreeMaxFileBytes = 5 << 20
	ProMaxFileBytes  = 25 << 20
	MaxMaxFileBytes  = 100 << 20
)

var (
	ErrFileTooLarge       = errors.New("file exceeds the plan size limit")
	ErrUnsupportedMime    = errors.New("unsupported file type")
	ErrFileObjectNotFound = errors.New("file not found")
)

var allowedMimes = map[string]bool{
	"text/plain":       true,
	"text/csv":         true,
	"text/markdown":    true,
	"application/json": true,
	"application/pdf":  true,
	"image/png":        true,
	"image/jpeg":       true,
}

// MaxFileBytesForPlan returns the upload ceiling for a plan.
func MaxFileBytesForPlan(plan string) int64 {
	switch plan {
	case types.PlanMax:
		return MaxMaxFileBytes
	case types.PlanPro:
		return ProMaxFileBytes
	default:
		return FreeMaxFileBytes
	}
}

type FileService interface {
	Ingest(ctx context.Context, name, mime string, content []byte) (*types.FileObject, error)
	Analyze(ctx context.Context, fileID uuid.UUID) (*types.FileObject, AnalysisReport, error)
	AnalyzeInline(ctx context.Context, content string) AnalysisReport
	List(ctx context.Context) ([]*types.FileObject, error)
}

type fileService struct {
	db             *gorm.DB
	log            *logger.Logger
	fileObjectRepo repos.FileObjectRepo
	bucketService  BucketService
}

func NewFileService(
	db *gorm.DB,
	log *logger.Logger,
	fileObjectRepo repos.FileObjectRepo,
	bucketService BucketService,
) FileService {
	serviceLog := log.With("service", "FileService")
	return &fileService{
		db:             db,
		log:            serviceLog,
		fileObjectRepo: fileObjectRepo,
		bucketService:  bucketService,
	}
}

func (fs *fileService) Ingest(ctx context.Context, name, mime string, content []byte) (*types.FileObject, error) {
	fs.log.Info("Starting Ingest now...", "name", name, "mime", mime, "sizeBytes", len(content))

	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("no request data found in context")
	}

	//1) Enforce Plan Limits And Type Allowlist
	limit := MaxFileBytesForPlan(rd.Plan)
	if int64(len(content)) > limit {
		fs.log.Warn("Upload rejected, exceeds plan ceiling", "plan", rd.Plan, "limit", limit)
		return nil, ErrFileTooLarge
	}
	baseMime := mime
	if i := strings.Index(baseMime, ";"); i >= 0 {
		baseMime = strings.TrimSpace(baseMime[:i])
	}
	if !allowedMimes[baseMime] {
		fs.log.Warn("Upload rejected, mime not in allowlist", "mime", baseMime)
		return nil, ErrUnsupportedMime
	}
	name = sanitizeFileName(name)

	//2) Store The Bytes
	objectKey := fmt.Sprintf("files/%s/%s-%s", rd.UserID, uuid.New().String(), name)
	publicURL, err := fs.bucketService.Upload(ctx, objectKey, baseMime, bytes.NewReader(content))
	if err != nil {
		fs.log.Warn("Failed to upload file to bucket, cannot proceed. Returning error.", "error", err)
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	//3) Persist The Row, Removing The Object On Failure
	obj := &types.FileObject{
		ID:        uuid.New(),
		UserID:    rd.UserID,
		Name:      name,
		Mime:      baseMime,
		SizeBytes: int64(len(content)),
		BucketKey: objectKey,
		PublicURL: publicURL,
	}
	created, err := fs.fileObjectRepo.Create(ctx, nil, []*types.FileObject{obj})
	if err != nil {
		fs.log.Warn("Failed to persist file object, removing stored bytes", "error", err)
		if dErr := fs.bucketService.Delete(ctx, objectKey); dErr != nil {
			fs.log.Error("Failed to remove orphaned bucket object", "error", dErr, "objectKey", objectKey)
		}
		return nil, fmt.Errorf("failed to persist file object: %w", err)
	}

	fs.log.Info("Successfully ingested file :)", "fileID", created[0].ID)
	return created[0], nil
}

func (fs *fileService) Analyze(ctx context.Context, fileID uuid.UUID) (*types.FileObject, AnalysisReport, error) {
	fs.log.Info("Starting Analyze now...", "fileID", fileID)

	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, AnalysisReport{}, fmt.Errorf("no request data found in context")
	}
	found, err := fs.fileObjectRepo.GetByIDs(ctx, nil, []uuid.UUID{fileID})
	if err != nil {
		return nil, AnalysisReport{}, fmt.Errorf("failed to fetch file object: %w", err)
	}
	if len(found) == 0 || found[0].UserID != rd.UserID {
		return nil, AnalysisReport{}, ErrFileObjectNotFound
	}
	obj := found[0]

	content, err := fs.bucketService.Download(ctx, obj.BucketKey)
	if err != nil {
		fs.log.Warn("Failed to read stored file for analysis", "error", err)
		return nil, AnalysisReport{}, fmt.Errorf("failed to read stored file: %w", err)
	}

	report := AnalyzeContent(string(content))
	raw, err := json.Marshal(report)
	if err != nil {
		return nil, AnalysisReport{}, fmt.Errorf("failed to marshal analysis: %w", err)
	}
	if err := fs.fileObjectRepo.UpdateAnalysis(ctx, nil, obj.ID, datatypes.JSON(raw)); err != nil {
		fs.log.Warn("Failed to save analysis on file object", "error", err)
		return nil, AnalysisReport{}, fmt.Errorf("failed to save analysis: %w", err)
	}
	obj.Analysis = datatypes.JSON(raw)

	fs.log.Info("Successfully analyzed file :)", "fileID", obj.ID)
	return obj, report, nil
}

func (fs *fileService) AnalyzeInline(ctx context.Context, content string) AnalysisReport {
	return AnalyzeContent(content)
}

func (fs *fileService) List(ctx context.Context) ([]*types.FileObject, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("no request data found in context")
	}
	return fs.fileObjectRepo.GetByUserID(ctx, nil, rd.UserID)
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == "/" {
		return "upload"
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if len(name) > 120 {
		name = name[len(name)-120:]
	}
	return name
}
