package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"contextchat/internal/app"
	"contextchat/internal/model"
	"contextchat/internal/transport/http/response"
)

type FileProcessor interface {
	Process(ctx context.Context, input app.ProcessFileInput) (*app.ProcessFileResult, error)
	ListByProject(projectID, userID string) ([]model.FileUpload, error)
}

type JobPublisher interface {
	Publish(ctx context.Context, job model.FileProcessJob) error
}

type FileHandler struct {
	fileService FileProcessor
	publisher   JobPublisher
}

type ProcessFileRequest struct {
	FileID   string `json:"fileId"`
	FilePath string `json:"filePath"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	Async    bool   `json:"async"`
}

func NewFileHandler(fileService FileProcessor, publisher JobPublisher) *FileHandler {
	return &FileHandler{fileService: fileService, publisher: publisher}
}

// Process extracts a stored file's content and caches it on the file record.
// With async set the job is queued instead and processed by the worker; the
// response then carries no content fields.
func (h *FileHandler) Process(c *gin.Context) {
	var req ProcessFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, response.ProcessFileResponse{
			Success: false,
			Error:   "invalid request payload",
		})
		return
	}

	if req.FileID == "" || req.FilePath == "" || req.FileName == "" || req.FileType == "" {
		c.JSON(http.StatusInternalServerError, response.ProcessFileResponse{
			Success: false,
			Error:   "Missing required parameters",
		})
		return
	}

	if req.Async && h.publisher != nil {
		job := model.FileProcessJob{
			FileID:   req.FileID,
			FilePath: req.FilePath,
			FileName: req.FileName,
			FileType: req.FileType,
		}
		if err := h.publisher.Publish(c.Request.Context(), job); err != nil {
			c.JSON(http.StatusInternalServerError, response.ProcessFileResponse{
				Success: false,
				Error:   "Failed to enqueue file processing",
			})
			return
		}
		c.JSON(http.StatusOK, response.ProcessFileResponse{
			Success: true,
			Message: "File processing enqueued",
		})
		return
	}

	result, err := h.fileService.Process(c.Request.Context(), app.ProcessFileInput{
		FileID:   req.FileID,
		FilePath: req.FilePath,
		FileName: req.FileName,
		FileType: req.FileType,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ProcessFileResponse{
			Success: false,
			Error:   processErrorMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, response.ProcessFileResponse{
		Success:        true,
		Message:        result.Message,
		ContentLength:  result.ContentLength,
		ContentPreview: result.ContentPreview,
	})
}

func processErrorMessage(err error) string {
	if errors.Is(err, app.ErrFileInputInvalid) {
		return "Missing required parameters"
	}
	return "Failed to process file"
}

type fileListItem struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	FileType  string `json:"file_type"`
	FileSize  int64  `json:"file_size"`
	Extracted bool   `json:"extracted"`
}

func (h *FileHandler) List(c *gin.Context) {
	projectID := c.Query("projectId")
	userID := c.Query("userId")

	files, err := h.fileService.ListByProject(projectID, userID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrFileInputInvalid):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list files failed")
		}
		return
	}

	items := make([]fileListItem, 0, len(files))
	for _, f := range files {
		items = append(items, fileListItem{
			ID:        f.ID,
			Filename:  f.Filename,
			FileType:  f.FileType,
			FileSize:  f.FileSize,
			Extracted: f.ExtractedText != "",
		})
	}
	response.OK(c, items)
}
