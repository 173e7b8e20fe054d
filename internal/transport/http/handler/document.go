package handler

import (
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"docbrain/internal/app"
	"docbrain/internal/transport/http/response"
)

type DocumentHandler struct {
	engine         *app.KnowledgeEngine
	maxUploadBytes int64
}

func NewDocumentHandler(engine *app.KnowledgeEngine, maxUploadMB int) *DocumentHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	return &DocumentHandler{
		engine:         engine,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
}

// uploadFileResult pairs one uploaded file with its ingestion outcome.
type uploadFileResult struct {
	Filename string `json:"filename"`
	app.Result
}

// Upload accepts a multipart form with one or more "files" entries and
// ingests them strictly one after another. A failure on one file is reported
// in its entry and the batch continues.
func (h *DocumentHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid multipart form")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing files (form field 'files')")
		return
	}

	results := make([]uploadFileResult, 0, len(files))
	for _, file := range files {
		name := filepath.Base(file.Filename)
		entry := uploadFileResult{Filename: name}

		switch {
		case strings.ToLower(filepath.Ext(name)) != ".pdf":
			entry.Result = app.Result{
				Message: "Error al procesar PDF: solo se admiten archivos PDF",
				Kind:    app.KindIngestFailure,
			}
		case file.Size > h.maxUploadBytes:
			entry.Result = app.Result{
				Message: "Error al procesar PDF: el archivo supera el tamaño máximo",
				Kind:    app.KindIngestFailure,
			}
		default:
			entry.Result = h.ingestOne(c, file, name)
		}
		results = append(results, entry)
	}

	response.OK(c, gin.H{"files": results})
}

// ingestOne spools the upload to a temporary file and hands it to the engine
// under its original filename. The temporary path never reaches the store.
func (h *DocumentHandler) ingestOne(c *gin.Context, file *multipart.FileHeader, originalName string) app.Result {
	tmp, err := os.CreateTemp("", "docbrain-upload-*.pdf")
	if err != nil {
		return app.Result{
			Message: "Error al procesar PDF: " + err.Error(),
			Kind:    app.KindIngestFailure,
		}
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		return app.Result{
			Message: "Error al procesar PDF: " + err.Error(),
			Kind:    app.KindIngestFailure,
		}
	}
	return h.engine.Ingest(c.Request.Context(), tmpPath, originalName)
}

func (h *DocumentHandler) List(c *gin.Context) {
	response.OK(c, gin.H{"documents": h.engine.ListDocuments()})
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	filename := strings.TrimSpace(c.Param("filename"))
	if filename == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing filename")
		return
	}
	response.OK(c, h.engine.Delete(filename))
}
