package app

import (
	"context"
	"errors"
	"fmt"

	"contextchat/internal/extract"
	"contextchat/internal/model"
	"contextchat/internal/pkg/logger"
)

// extractedTextCap bounds the cached derived text per file. Truncation
// happens before the write, so the cache and the context assembler always
// see the same bounded value.
const extractedTextCap = 8000

const contentPreviewLen = 200

var ErrFileInputInvalid = errors.New("missing required file parameters")

// FileStore is the subset of the file repository the pipeline needs.
type FileStore interface {
	ListByProjectIDAndUserID(projectID, userID string) ([]model.FileUpload, error)
	UpdateExtractedText(fileID, text string) error
}

// ObjectDownloader fetches raw bytes from the blob storage collaborator.
type ObjectDownloader interface {
	Download(ctx context.Context, path string) ([]byte, error)
}

type FileService struct {
	fileRepo FileStore
	storage  ObjectDownloader
	log      *logger.Logger
}

func NewFileService(fileRepo FileStore, storage ObjectDownloader, log *logger.Logger) *FileService {
	if log == nil {
		log = logger.Nop()
	}
	return &FileService{
		fileRepo: fileRepo,
		storage:  storage,
		log:      log,
	}
}

type ProcessFileInput struct {
	FileID   string
	FilePath string
	FileName string
	FileType string
}

type ProcessFileResult struct {
	Message        string
	ContentLength  int
	ContentPreview string
}

// Process downloads a stored file, extracts its content, and caches the
// bounded result on the file record. Used by the processing endpoint and the
// queue worker; runs independently per file.
func (s *FileService) Process(ctx context.Context, input ProcessFileInput) (*ProcessFileResult, error) {
	if input.FileID == "" || input.FilePath == "" || input.FileName == "" || input.FileType == "" {
		return nil, ErrFileInputInvalid
	}

	data, err := s.storage.Download(ctx, input.FilePath)
	if err != nil {
		return nil, fmt.Errorf("download file failed: %w", err)
	}
	s.log.Info("file downloaded", "file_id", input.FileID, "size", len(data))

	result := extract.Extract(data, input.FileType, input.FileName)
	if result.Degraded {
		s.log.Warn("extraction degraded", "file_id", input.FileID, "file_name", input.FileName)
	}

	if err := s.fileRepo.UpdateExtractedText(input.FileID, truncateRunes(result.Text, extractedTextCap)); err != nil {
		return nil, err
	}

	return &ProcessFileResult{
		Message:        "File processed successfully",
		ContentLength:  len(result.Text),
		ContentPreview: preview(result.Text),
	}, nil
}

// GetOrExtract returns the file's cached extraction, extracting and caching
// on a miss. A populated cache field is returned unchanged with no storage
// access. Concurrent misses may both extract and both write; the inputs are
// identical so the last write is byte-identical to the first.
func (s *FileService) GetOrExtract(ctx context.Context, file *model.FileUpload) (string, bool, error) {
	if file.ExtractedText != "" {
		return file.ExtractedText, false, nil
	}
	if file.FilePath == "" {
		return "", false, nil
	}

	data, err := s.storage.Download(ctx, file.FilePath)
	if err != nil {
		return "", true, fmt.Errorf("download file failed: %w", err)
	}

	result := extract.Extract(data, file.FileType, file.Filename)
	text := truncateRunes(result.Text, extractedTextCap)

	if err := s.fileRepo.UpdateExtractedText(file.ID, text); err != nil {
		// The extraction itself succeeded; serve it and retry the cache write
		// on the next request.
		s.log.Warn("cache extracted text failed", "file_id", file.ID, "error", err)
	}
	return text, result.Degraded, nil
}

func (s *FileService) ListByProject(projectID, userID string) ([]model.FileUpload, error) {
	if projectID == "" || userID == "" {
		return nil, ErrFileInputInvalid
	}
	return s.fileRepo.ListByProjectIDAndUserID(projectID, userID)
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func preview(text string) string {
	if len([]rune(text)) > contentPreviewLen {
		return truncateRunes(text, contentPreviewLen) + "..."
	}
	return text
}
