// Package server exposes the extraction pipeline over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"policyscan/constants"
	"policyscan/internal/jobstore"
	"policyscan/internal/pipeline"
)

type Server struct {
	logger      *slog.Logger
	processor   *pipeline.Processor
	jobs        *jobstore.Store // optional; nil disables history
	maxUploadMB int64
}

func New(proc *pipeline.Processor, jobs *jobstore.Store, maxUploadMB int64, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadMB <= 0 {
		maxUploadMB = 25
	}
	return &Server{logger: logger, processor: proc, jobs: jobs, maxUploadMB: maxUploadMB}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = s.maxUploadMB << 20

	r.GET("/health", s.health)
	r.POST("/extract", s.extract)
	r.GET("/jobs", s.listJobs)
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "policy-extraction"})
}

// extract handles POST /extract: multipart PDF upload -> extraction result.
func (s *Server) extract(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "multipart field 'file' is required")
		return
	}
	if !constants.IsAllowedExt(filepath.Ext(file.Filename)) {
		RespondError(c, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "file must be a PDF (.pdf extension required)")
		return
	}

	tmp, err := os.CreateTemp("", "ps-upload-*.pdf")
	if err != nil {
		s.logger.Error("server.extract.tempfile", "error", err)
		RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "could not store upload")
		return
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() {
		if rerr := os.Remove(tmpPath); rerr != nil {
			s.logger.Warn("server.extract.tmp_cleanup_failed", "path", tmpPath, "error", rerr)
		}
	}()

	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		s.logger.Error("server.extract.save_upload", "error", err)
		RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "could not store upload")
		return
	}

	jobID := uuid.New().String()
	s.logger.Info("server.extract.start",
		"job_id", jobID, "filename", file.Filename, "bytes", file.Size)
	s.recordStart(c, jobID, file.Filename)

	res, err := s.processor.ProcessFile(c.Request.Context(), tmpPath)
	if err != nil {
		status, code, msg := MapPipelineError(err)
		s.logger.Error("server.extract.failed",
			"job_id", jobID, "status", status, "code", code, "error", err)
		s.recordFinish(c, jobID, pipeline.ExtractionResult{}, err)
		RespondError(c, status, code, msg)
		return
	}

	s.recordFinish(c, jobID, res, nil)
	c.JSON(http.StatusOK, res)
}

// listJobs handles GET /jobs?limit=N, newest first.
func (s *Server) listJobs(c *gin.Context) {
	if s.jobs == nil {
		RespondError(c, http.StatusNotFound, "JOBS_DISABLED", "job history is not enabled")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	jobs, err := s.jobs.Recent(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("server.jobs.list", "error", err)
		RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "could not list jobs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": jobs})
}

func (s *Server) recordStart(c *gin.Context, jobID, filename string) {
	if s.jobs == nil {
		return
	}
	if err := s.jobs.Start(c.Request.Context(), jobID, filename); err != nil {
		s.logger.Warn("server.jobs.start_failed", "job_id", jobID, "error", err)
	}
}

func (s *Server) recordFinish(c *gin.Context, jobID string, res pipeline.ExtractionResult, perr error) {
	if s.jobs == nil {
		return
	}
	out := jobstore.Outcome{
		Method:        res.Method,
		Pages:         res.Pages,
		TextChars:     res.TextChars,
		IsValid:       res.Validation.IsValid,
		MissingFields: len(res.Validation.MissingFields),
	}
	if perr != nil {
		out.ErrorMessage = perr.Error()
	}
	if err := s.jobs.Finish(c.Request.Context(), jobID, out); err != nil {
		s.logger.Warn("server.jobs.finish_failed", "job_id", jobID, "error", err)
	}
}
