package handler

import (
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docsight/internal/output"
	"docsight/internal/service"
)

// OCRHandler handles batch document extraction requests.
type OCRHandler struct {
	batchService service.BatchService
}

// NewOCRHandler creates a new OCRHandler.
func NewOCRHandler(batchService service.BatchService) *OCRHandler {
	return &OCRHandler{batchService: batchService}
}

// Process handles POST /ocr. The request is a multipart form with one or
// more "files" parts plus "provider", "model" and "output_format" fields.
// The response body is the formatted result envelope served as a download.
func (h *OCRHandler) Process(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORM", "request is not a valid multipart form")
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		RespondError(c, http.StatusBadRequest, "NO_FILES", "at least one file is required")
		return
	}

	provider := c.PostForm("provider")
	model := c.PostForm("model")
	if provider == "" || model == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_FIELDS", "provider and model fields are required")
		return
	}
	outputFormat := sanitizeFormat(c.PostForm("output_format"))

	log.Printf("ocrHandler: received OCR request (provider=%s, model=%s, output_format=%s, files=%d)",
		provider, model, outputFormat, len(fileHeaders))

	files := make([]service.BatchFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "failed to open uploaded file "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "failed to read uploaded file "+fh.Filename)
			return
		}
		files = append(files, service.BatchFile{Filename: fh.Filename, Data: data})
	}

	env, err := h.batchService.Process(c.Request.Context(), service.BatchInput{
		Provider: provider,
		Model:    model,
		Files:    files,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	body, err := output.Format(env)
	if err != nil {
		HandleError(c, err)
		return
	}

	mediaType := "application/json"
	if outputFormat != "json" {
		mediaType = "text/plain"
	}
	c.Header("Content-Disposition", "attachment; filename=ocr_output."+outputFormat)
	c.Data(http.StatusOK, mediaType, body)
}

// sanitizeFormat restricts the output format to a safe filename extension.
// Anything outside [a-z0-9]+ falls back to json.
func sanitizeFormat(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "json"
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return "json"
		}
	}
	return s
}
