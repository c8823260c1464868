package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mediastash/mediastash/controllers"
	"github.com/mediastash/mediastash/media"
	"github.com/mediastash/mediastash/models"
	"github.com/mediastash/mediastash/pipeline"
	"github.com/mediastash/mediastash/storage"
)

// stubEngine stands in for the ffmpeg engine: sources containing "corrupt"
// fail, everything else produces a manifest and drops the source.
type stubEngine struct{}

func (stubEngine) Transcode(_ context.Context, sourcePath, renditionDir string) error {
	data, err := os.ReadFile(sourcePath)
	if err != nil || bytes.Contains(data, []byte("corrupt")) {
		return media.ErrTranscodeFailed
	}
	if err := os.WriteFile(filepath.Join(renditionDir, storage.ManifestName), []byte("#EXTM3U\n"), 0o644); err != nil {
		return media.ErrTranscodeFailed
	}
	os.Remove(sourcePath)
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, storage.Layout) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	layout := storage.NewLayout(t.TempDir())
	require.NoError(t, layout.EnsureRoots())

	log := zap.NewNop().Sugar()
	controller := controllers.NewMediaController(
		pipeline.NewProcessor(layout, stubEngine{}, 2, log),
		pipeline.NewDeleter(layout, log),
		8<<20,
		5,
	)

	r := gin.New()
	r.POST("/upload", controller.Upload)
	r.DELETE("/delete", controller.Delete)
	return r, layout
}

type upload struct {
	filename string
	content  string
}

func uploadRequest(t *testing.T, userID string, uploads ...upload) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if userID != "" {
		require.NoError(t, w.WriteField("userId", userID))
	}
	for _, u := range uploads {
		fw, err := w.CreateFormFile("file", u.filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(u.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func deleteRequest(t *testing.T, filename, userID string) *http.Request {
	t.Helper()
	body, err := json.Marshal(models.DeleteRequest{Filename: filename, UserID: userID})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodDelete, "/delete", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func errorCode(t *testing.T, body []byte) int {
	t.Helper()
	var envelope struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope.Code
}

func TestUploadSingleImageReturnsObject(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "u1", upload{"cat.png", "img"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{"), "single file yields an object, not an array")

	var res models.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "image", res.Type)
	assert.Regexp(t, `^u1-\d+-[0-9a-f]{8}\.png$`, res.URL)
	assert.Empty(t, res.Error)
}

func TestUploadBatchReturnsArrayInOrder(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "u1",
		upload{"a.png", "img"},
		upload{"bad.mp4", "corrupt"},
		upload{"doc.pdf", "pdf"},
	))

	require.Equal(t, http.StatusOK, rec.Code, "per-file failures never change the status")

	var results []models.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 3)

	assert.Equal(t, "image", results[0].Type)
	assert.Equal(t, pipeline.ErrorTranscodeFailed, results[1].Error)
	assert.Equal(t, "unsupported", results[2].Type)
	assert.Equal(t, pipeline.ErrorUnsupportedType, results[2].Error)
}

func TestUploadUserIDFromQuery(t *testing.T) {
	r, _ := newTestRouter(t)

	req := uploadRequest(t, "", upload{"cat.png", "img"})
	req.URL.RawQuery = "userId=u9"

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var res models.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, strings.HasPrefix(res.URL, "u9-"))
}

func TestUploadMissingUserID(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "", upload{"cat.png", "img"}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 40001, errorCode(t, rec.Body.Bytes()))
}

func TestUploadNoFiles(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "u1"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 40003, errorCode(t, rec.Body.Bytes()))
}

func TestUploadBatchCap(t *testing.T) {
	r, _ := newTestRouter(t)

	var uploads []upload
	for i := 0; i < 6; i++ {
		uploads = append(uploads, upload{fmt.Sprintf("cat%d.png", i), "img"})
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "u1", uploads...))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 40004, errorCode(t, rec.Body.Bytes()))
}

func TestDeleteSuccess(t *testing.T) {
	r, layout := newTestRouter(t)

	name := "u1-123-abcd1234.png"
	require.NoError(t, os.WriteFile(layout.OriginalPath(name), []byte("img"), 0o644))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, deleteRequest(t, name, "u1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	_, err := os.Stat(layout.OriginalPath(name))
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteForbidden(t *testing.T) {
	r, layout := newTestRouter(t)

	name := "u2-123-abcd1234.png"
	require.NoError(t, os.WriteFile(layout.OriginalPath(name), []byte("img"), 0o644))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, deleteRequest(t, name, "u1"))

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 40301, errorCode(t, rec.Body.Bytes()))
}

func TestDeleteNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, deleteRequest(t, "u1-123-abcd1234.png", "u1"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 40401, errorCode(t, rec.Body.Bytes()))
}

func TestDeleteMissingFields(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, deleteRequest(t, "", "u1"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
