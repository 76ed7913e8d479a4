package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("file bytes"))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "project-files", "service-key")
	data, err := client.Download(context.Background(), "/u1/q3.txt")

	require.NoError(t, err)
	assert.Equal(t, []byte("file bytes"), data)
	assert.Equal(t, "/object/project-files/u1/q3.txt", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
}

func TestDownloadNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"object not found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "project-files", "service-key")
	_, err := client.Download(context.Background(), "missing.txt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "object not found")
}
