package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/retailbi/internal/domain"
	"github.com/andresuchdata/retailbi/internal/loader"
	"github.com/andresuchdata/retailbi/internal/workspace"
)

const defaultMaxUploadMB = 32

type DatasetHandler struct {
	workspace      *workspace.Workspace
	maxUploadBytes int64
	sampleDefaults loader.SampleOptions
}

func NewDatasetHandler(ws *workspace.Workspace, maxUploadMB int, sampleDefaults loader.SampleOptions) *DatasetHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = defaultMaxUploadMB
	}
	return &DatasetHandler{
		workspace:      ws,
		maxUploadBytes: int64(maxUploadMB) << 20,
		sampleDefaults: sampleDefaults,
	}
}

func kindParam(c *gin.Context) (domain.Kind, error) {
	kind, ok := domain.ParseKind(c.Param("kind"))
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownKind, c.Param("kind"))
	}
	return kind, nil
}

// List returns a summary of the loaded datasets.
func (h *DatasetHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"datasets": h.workspace.Snapshot().Infos(),
		"sources": gin.H{
			string(workspace.SourceS3):    h.workspace.SourceEnabled(workspace.SourceS3),
			string(workspace.SourceDrive): h.workspace.SourceEnabled(workspace.SourceDrive),
		},
	})
}

// Upload replaces a dataset with the multipart "file" field.
func (h *DatasetHandler) Upload(c *gin.Context) {
	kind, err := kindParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large", "limit_bytes": h.maxUploadBytes})
			return
		}
		respondError(c, badRequest(fmt.Errorf("multipart field \"file\" is required: %w", err)))
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, badRequest(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, badRequest(err))
		return
	}

	info, err := h.workspace.Upload(c.Request.Context(), kind, header.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Sample replaces a dataset with generated data.
func (h *DatasetHandler) Sample(c *gin.Context) {
	kind, err := kindParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	opts := h.sampleDefaults
	if seed := strings.TrimSpace(c.Query("seed")); seed != "" {
		v, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			respondError(c, badRequest(fmt.Errorf("seed must be an unsigned integer: %q", seed)))
			return
		}
		opts.Seed = v
	}
	if opts.Products, err = parsePositiveInt(c, "products", opts.Products); err != nil {
		respondError(c, err)
		return
	}
	if opts.Days, err = parsePositiveInt(c, "days", opts.Days); err != nil {
		respondError(c, err)
		return
	}

	info, err := h.workspace.Sample(kind, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

type importRequest struct {
	Source string `json:"source" binding:"required"`
	Key    string `json:"key" binding:"required"`
}

// Import loads a dataset from a configured remote source.
func (h *DatasetHandler) Import(c *gin.Context) {
	kind, err := kindParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest(err))
		return
	}

	source := workspace.Source(strings.ToLower(strings.TrimSpace(req.Source)))
	if source != workspace.SourceS3 && source != workspace.SourceDrive {
		respondError(c, badRequest(fmt.Errorf("unknown source %q", req.Source)))
		return
	}

	info, err := h.workspace.Import(c.Request.Context(), kind, source, req.Key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
