package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"doc-llm-pipeline/constants"
	"doc-llm-pipeline/internal/common"
	"doc-llm-pipeline/internal/jobs"
)

// UploadResponse is returned after a successful file upload.
type UploadResponse struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

// ProcessRequest identifies the uploaded file to process.
type ProcessRequest struct {
	FileID string `json:"file_id" binding:"required"`
}

// StatusResponse carries the current job state and, once terminal, its result.
type StatusResponse struct {
	JobID  string              `json:"job_id"`
	Status constants.JobStatus `json:"status"`
	Result *jobs.Result        `json:"result,omitempty"`
}

// ExtractResponse is the shaped result view keyed by file id.
type ExtractResponse struct {
	FileID      string       `json:"file_id"`
	Pages       int          `json:"pages"`
	IsScanned   bool         `json:"is_scanned"`
	Tables      []jobs.Table `json:"tables"`
	TableCount  int          `json:"table_count"`
	TableTitles []string     `json:"table_titles"`
	LLMProvider string       `json:"llm_provider"`
	LLMModel    string       `json:"llm_model"`
	UsedStub    bool         `json:"used_stub"`
}

func (s *Server) uploadPath(fileID string) string {
	return filepath.Join(s.cfg.Server.UploadDir, fileID+".pdf")
}

func (s *Server) handleUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if !constants.IsAllowedExtension(filepath.Ext(file.Filename)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .pdf files are accepted"})
		return
	}

	if err := os.MkdirAll(s.cfg.Server.UploadDir, 0o755); err != nil {
		s.logger.Error("upload.mkdir_failed", "dir", s.cfg.Server.UploadDir, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store file"})
		return
	}

	fileID := uuid.NewString()
	dest := s.uploadPath(fileID)
	if err := c.SaveUploadedFile(file, dest); err != nil {
		s.logger.Error("upload.save_failed", "dest", dest, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store file"})
		return
	}

	s.logger.Info("upload.ok", "file_id", fileID, "filename", file.Filename, "bytes", file.Size)
	c.JSON(http.StatusOK, UploadResponse{
		FileID:   fileID,
		Filename: file.Filename,
		Status:   "uploaded",
	})
}

func (s *Server) handleProcess(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	path := s.uploadPath(req.FileID)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	jobID := uuid.NewString()
	s.store.Put(&jobs.Job{
		ID:     jobID,
		FileID: req.FileID,
		Status: constants.JobStatusInProgress,
	})

	// fire-and-forget; the caller gets the job id immediately
	reqID := common.RequestIDFromContext(c.Request.Context())
	if err := s.runner.Start(common.WithRequestID(context.Background(), reqID), jobID, func(ctx context.Context) {
		s.proc.Process(common.WithJobID(ctx, jobID), jobID, path)
	}); err != nil {
		s.logger.Error("process.start_failed", "job_id", jobID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start job"})
		return
	}

	s.logger.Info("process.submitted", "job_id", jobID, "file_id", req.FileID, "req_id", reqID)
	c.JSON(http.StatusOK, StatusResponse{JobID: jobID, Status: constants.JobStatusInProgress})
}

func (s *Server) handleStatus(c *gin.Context) {
	jobID := c.Param("job_id")

	job, err := s.store.Get(jobID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		JobID:  job.ID,
		Status: job.Status,
		Result: job.Result,
	})
}

func (s *Server) handleExtract(c *gin.Context) {
	fileID := c.Query("file_id")
	if fileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_id is required"})
		return
	}

	job, err := s.store.FindByFile(fileID)
	if err != nil || job.Result == nil || job.Status != constants.JobStatusCompleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "result not found; processing may still be in progress"})
		return
	}

	res := job.Result
	c.JSON(http.StatusOK, ExtractResponse{
		FileID:      fileID,
		Pages:       res.PageCount,
		IsScanned:   res.IsScanned,
		Tables:      res.Tables,
		TableCount:  res.TableCount,
		TableTitles: res.TableTitles,
		LLMProvider: res.LLMProvider,
		LLMModel:    res.LLMModel,
		UsedStub:    res.UsedStub,
	})
}

func (s *Server) handleExport(c *gin.Context) {
	jobID := c.Param("job_id")

	job, err := s.store.Get(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if job.Status != constants.JobStatusCompleted || job.Result == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "job has no completed result"})
		return
	}

	b, err := s.exporter.TablesXLSX(job.ID, job.Result)
	if err != nil {
		s.logger.Error("export.failed", "job_id", job.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="tables-`+job.ID+`.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", b)
}
