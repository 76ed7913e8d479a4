package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contextchat/internal/app"
	"contextchat/internal/model"
)

type fakeFileService struct {
	result    *app.ProcessFileResult
	err       error
	lastInput app.ProcessFileInput
	calls     int
	files     []model.FileUpload
	listErr   error
}

func (s *fakeFileService) Process(_ context.Context, input app.ProcessFileInput) (*app.ProcessFileResult, error) {
	s.calls++
	s.lastInput = input
	return s.result, s.err
}

func (s *fakeFileService) ListByProject(_, _ string) ([]model.FileUpload, error) {
	return s.files, s.listErr
}

type fakePublisher struct {
	err     error
	lastJob model.FileProcessJob
	calls   int
}

func (p *fakePublisher) Publish(_ context.Context, job model.FileProcessJob) error {
	p.calls++
	p.lastJob = job
	return p.err
}

func fileRouter(svc *fakeFileService, pub *fakePublisher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var h *FileHandler
	if pub != nil {
		h = NewFileHandler(svc, pub)
	} else {
		h = NewFileHandler(svc, nil)
	}
	r.POST("/files/process", h.Process)
	r.GET("/files", h.List)
	return r
}

func TestFileProcessSuccess(t *testing.T) {
	svc := &fakeFileService{result: &app.ProcessFileResult{
		Message:        "File processed successfully",
		ContentLength:  15,
		ContentPreview: "Q3 revenue: $5M",
	}}
	router := fileRouter(svc, nil)

	w := postJSON(t, router, "/files/process", `{
		"fileId": "f1",
		"filePath": "p1/q3.txt",
		"fileName": "q3.txt",
		"fileType": "text/plain"
	}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "File processed successfully", body["message"])
	assert.Equal(t, float64(15), body["contentLength"])
	assert.Equal(t, "Q3 revenue: $5M", body["contentPreview"])

	assert.Equal(t, "f1", svc.lastInput.FileID)
	assert.Equal(t, "p1/q3.txt", svc.lastInput.FilePath)
}

func TestFileProcessMissingParameters(t *testing.T) {
	svc := &fakeFileService{}
	router := fileRouter(svc, nil)

	w := postJSON(t, router, "/files/process", `{"fileId":"f1"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Missing required parameters", body["error"])
	assert.Zero(t, svc.calls)
}

func TestFileProcessServiceError(t *testing.T) {
	svc := &fakeFileService{err: errors.New("download file failed: 404")}
	router := fileRouter(svc, nil)

	w := postJSON(t, router, "/files/process", `{"fileId":"f1","filePath":"p","fileName":"a.txt","fileType":"text/plain"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Failed to process file", body["error"])
}

func TestFileProcessAsyncEnqueues(t *testing.T) {
	svc := &fakeFileService{}
	pub := &fakePublisher{}
	router := fileRouter(svc, pub)

	w := postJSON(t, router, "/files/process", `{
		"fileId": "f1",
		"filePath": "p1/q3.txt",
		"fileName": "q3.txt",
		"fileType": "text/plain",
		"async": true
	}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, pub.calls)
	assert.Equal(t, "f1", pub.lastJob.FileID)
	assert.Zero(t, svc.calls)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "File processing enqueued", body["message"])
	_, hasLength := body["contentLength"]
	assert.False(t, hasLength)
}

func TestFileProcessAsyncPublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("channel closed")}
	router := fileRouter(&fakeFileService{}, pub)

	w := postJSON(t, router, "/files/process", `{"fileId":"f1","filePath":"p","fileName":"a.txt","fileType":"text/plain","async":true}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Failed to enqueue file processing", body["error"])
}

func TestFileProcessAsyncWithoutPublisherRunsInline(t *testing.T) {
	svc := &fakeFileService{result: &app.ProcessFileResult{Message: "File processed successfully"}}
	router := fileRouter(svc, nil)

	w := postJSON(t, router, "/files/process", `{"fileId":"f1","filePath":"p","fileName":"a.txt","fileType":"text/plain","async":true}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.calls)
}

func TestFileListMarksExtracted(t *testing.T) {
	svc := &fakeFileService{files: []model.FileUpload{
		{ID: "f1", Filename: "a.txt", FileType: "text/plain", FileSize: 10, ExtractedText: "cached"},
		{ID: "f2", Filename: "b.pdf", FileType: "application/pdf", FileSize: 99},
	}}
	router := fileRouter(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/files?projectId=p1&userId=u1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []struct {
			ID        string `json:"id"`
			Extracted bool   `json:"extracted"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.True(t, body.Data[0].Extracted)
	assert.False(t, body.Data[1].Extracted)
}

func TestFileListMissingParams(t *testing.T) {
	svc := &fakeFileService{listErr: app.ErrFileInputInvalid}
	router := fileRouter(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
