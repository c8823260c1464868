package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mediastash/mediastash/media"
	"github.com/mediastash/mediastash/models"
	"github.com/mediastash/mediastash/pipeline"
	"github.com/mediastash/mediastash/utils"
)

// uploadFieldName is the fixed multipart field clients upload under.
const uploadFieldName = "file"

// MediaController exposes the upload and delete endpoints over the batch
// processor and deleter.
type MediaController struct {
	processor *pipeline.Processor
	deleter   *pipeline.Deleter
	maxBytes  int64
	maxBatch  int
}

func NewMediaController(processor *pipeline.Processor, deleter *pipeline.Deleter, maxBytes int64, maxBatch int) *MediaController {
	return &MediaController{
		processor: processor,
		deleter:   deleter,
		maxBytes:  maxBytes,
		maxBatch:  maxBatch,
	}
}

// Upload handles POST /upload: multipart body, owner id in form or query
// field userId, one or more files under the file field. The response is the
// raw batch result: a single object for a single file, an array otherwise.
// Per-file failures never change the 200.
func (m *MediaController) Upload(ctx *gin.Context) {
	if m.maxBytes > 0 {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, m.maxBytes)
	}

	userID := ctx.PostForm("userId")
	if userID == "" {
		userID = ctx.Query("userId")
	}
	if userID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40001, "userId is required")
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid multipart form")
		return
	}
	files := form.File[uploadFieldName]
	if len(files) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40003, "no file uploaded")
		return
	}
	if m.maxBatch > 0 && len(files) > m.maxBatch {
		utils.Error(ctx, http.StatusBadRequest, 40004, "too many files in one request")
		return
	}

	results, err := m.processor.Process(ctx.Request.Context(), userID, files)
	if err != nil {
		if errors.Is(err, media.ErrInvalidInput) || errors.Is(err, media.ErrNoFilesProvided) {
			utils.Error(ctx, http.StatusBadRequest, 40005, err.Error())
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to process upload")
		return
	}

	if len(results) == 1 {
		ctx.JSON(http.StatusOK, results[0])
		return
	}
	ctx.JSON(http.StatusOK, results)
}

// Delete handles DELETE /delete with a JSON or form body of
// {filename, userId}. Unlike uploads, deletion has no batch semantics: any
// failure aborts the whole request with its status code.
func (m *MediaController) Delete(ctx *gin.Context) {
	var req models.DeleteRequest
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "filename and userId required")
		return
	}

	switch err := m.deleter.Delete(req.Filename, req.UserID); {
	case err == nil:
		ctx.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, media.ErrInvalidInput):
		utils.Error(ctx, http.StatusBadRequest, 40011, "filename and userId required")
	case errors.Is(err, media.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40301, "forbidden")
	case errors.Is(err, media.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, "file not found")
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to delete file")
	}
}
