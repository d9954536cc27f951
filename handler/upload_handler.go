package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docuchat-be/service"
	"github.com/tieubaoca/docuchat-be/types"
	"github.com/tieubaoca/docuchat-be/utils"
)

type UploadHandler struct {
	stagingDir string
	ingest     *service.IngestService
	archive    service.Archive
}

func NewUploadHandler(stagingDir string, ingest *service.IngestService, archive service.Archive) *UploadHandler {
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		panic(err)
	}
	return &UploadHandler{
		stagingDir: stagingDir,
		ingest:     ingest,
		archive:    archive,
	}
}

// UploadDocumentHandler stages the uploaded PDF, runs the ingestion
// pipeline and streams progress as server-sent events. Archiving and
// staging cleanup happen only after the pipeline reports success.
func (h *UploadHandler) UploadDocumentHandler(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid file",
		})
		return
	}
	defer file.Close()

	if strings.ToLower(filepath.Ext(header.Filename)) != ".pdf" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Only PDF files are supported",
		})
		return
	}

	const maxSize = 10 << 20
	if header.Size > maxSize {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "File too large",
		})
		return
	}

	stagedPath, err := utils.StageReader(file, header.Filename, h.stagingDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	statusChan := make(chan types.ProcessingDocumentStatus)
	// Buffered so the final send never blocks once the client is gone.
	errChan := make(chan error, 1)
	var result types.IngestResult
	go func() {
		defer close(statusChan)
		errChan <- h.process(c.Request.Context(), stagedPath, &result, statusChan)
	}()

	clientGone := c.Writer.CloseNotify()
	for {
		select {
		case <-clientGone:
			return // Client disconnected
		case status := <-statusChan:
			jsonStatus, err := json.Marshal(status)
			if err != nil {
				continue
			}
			c.SSEvent("message", string(jsonStatus))
			c.Writer.Flush()
		case err := <-errChan:
			if err != nil {
				message := err.Error()
				if !IsIngestFailure(err) {
					message = "Document ingested but staging copy not finalized: " + message
				}
				c.JSON(http.StatusInternalServerError, types.DataResponse{
					Status:  "error",
					Message: message,
				})
			} else {
				c.JSON(http.StatusOK, types.DataResponse{
					Status: "success",
					Data: types.UploadResponse{
						OriginalName: header.Filename,
						Result:       result,
					},
				})
			}
			return
		}
	}
}

// process runs the pipeline, then the post-success caller duties: archive
// the staged copy and remove it. Archive and cleanup failures are distinct
// error kinds and never undo the completed ingestion.
func (h *UploadHandler) process(ctx context.Context, stagedPath string, result *types.IngestResult, c chan<- types.ProcessingDocumentStatus) error {
	sendStatus(ctx, c, types.ProcessingDocumentStatus{
		Status:   "processing",
		Message:  "Ingesting document",
		Progress: 0.2,
	})

	res, err := h.ingest.Ingest(ctx, stagedPath)
	if err != nil {
		return err
	}
	*result = res

	if res.Degenerate {
		sendStatus(ctx, c, types.ProcessingDocumentStatus{
			Status:   "completed",
			Message:  "Document contained no extractable text, nothing stored",
			Progress: 1,
		})
		return nil
	}
	sendStatus(ctx, c, types.ProcessingDocumentStatus{
		Status:   "processing",
		Message:  fmt.Sprintf("Stored %d segments, archiving", res.Segments),
		Progress: 0.8,
	})

	if h.archive != nil {
		if err := h.archive.Store(ctx, stagedPath, filepath.Base(stagedPath)); err != nil {
			return err
		}
		if err := os.Remove(stagedPath); err != nil {
			return fmt.Errorf("%w: %v", types.ErrCleanup, err)
		}
	}

	sendStatus(ctx, c, types.ProcessingDocumentStatus{
		Status:   "completed",
		Message:  "Done processing document",
		Progress: 1,
	})
	return nil
}

// sendStatus delivers a progress event, or drops it when the request
// context is cancelled because the client went away. The pipeline keeps
// running either way; only the reporting stops.
func sendStatus(ctx context.Context, c chan<- types.ProcessingDocumentStatus, status types.ProcessingDocumentStatus) {
	select {
	case c <- status:
	case <-ctx.Done():
	}
}

// IsIngestFailure reports whether nothing was stored for the document, as
// opposed to a post-success archive or cleanup problem.
func IsIngestFailure(err error) bool {
	return !errors.Is(err, types.ErrArchive) && !errors.Is(err, types.ErrCleanup)
}
