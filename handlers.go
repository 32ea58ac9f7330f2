package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"checkparser/models"
	"checkparser/pkg/checkparser"
	"checkparser/pkg/events"
	"checkparser/pkg/imgproc"
	"checkparser/pkg/metrics"
	"checkparser/pkg/store"
	"checkparser/pkg/validate"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	msgInternal = "An unexpected error occurred"
	msgDatabase = "Database error occurred"
)

// server carries the collaborators every handler needs.
type server struct {
	parser    *checkparser.Parser
	store     store.Store
	events    events.Publisher
	metrics   *metrics.Metrics
	limits    validate.Limits
	maxUpload int64
	limiter   *rate.Limiter
	version   string
	now       func() time.Time
}

func setupRoutes(r *gin.Engine, s *server) {
	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api/v1")
	api.POST("/checks/upload", rateLimit(s.limiter, s.metrics), s.uploadCheckHandler)
	api.GET("/checks", s.listChecksHandler)
	api.GET("/checks/:id", s.getCheckHandler)
	api.GET("/checks/:id/validation", s.validateCheckHandler)
}

// uploadCheckHandler parses one uploaded check image and stores the result.
func (s *server) uploadCheckHandler(c *gin.Context) {
	// multipart framing adds a little on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload+1<<20)
	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.reject(c, http.StatusRequestEntityTooLarge, metrics.OutcomeTooLarge, "file too large (max "+strconv.FormatInt(s.maxUpload>>20, 10)+"MB)")
			return
		}
		s.reject(c, http.StatusBadRequest, metrics.OutcomeBadRequest, "No file provided")
		return
	}
	if file.Filename == "" {
		s.reject(c, http.StatusBadRequest, metrics.OutcomeBadRequest, "No selected file")
		return
	}
	if file.Size > s.maxUpload {
		s.reject(c, http.StatusRequestEntityTooLarge, metrics.OutcomeTooLarge, "file too large (max "+strconv.FormatInt(s.maxUpload>>20, 10)+"MB)")
		return
	}
	f, err := file.Open()
	if err != nil {
		s.fail(c, metrics.OutcomeError, msgInternal, err)
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		s.fail(c, metrics.OutcomeError, msgInternal, err)
		return
	}

	mime := imgproc.SniffMIME(data)
	if !imgproc.IsSupportedMIME(mime) {
		s.reject(c, http.StatusUnsupportedMediaType, metrics.OutcomeUnsupported, "Invalid file type. Allowed types are: jpeg, png, pdf")
		return
	}

	res, err := s.parser.Parse(c.Request.Context(), data)
	if err != nil {
		var decErr *imgproc.DecodeError
		if errors.As(err, &decErr) {
			s.reject(c, http.StatusBadRequest, metrics.OutcomeUndecodable, "could not decode image")
			return
		}
		s.fail(c, metrics.OutcomeError, msgInternal, err)
		return
	}

	fields := res.Fields()
	check := models.NewCheck(fields)
	check.FileName = file.Filename
	check.ContentType = mime
	if err := s.store.Create(c.Request.Context(), check); err != nil {
		s.fail(c, metrics.OutcomeError, msgDatabase, err)
		return
	}
	report := validate.Check(check.Fields(), s.now(), s.limits)

	s.metrics.Outcome(metrics.OutcomeStored)
	if check.FraudDetected {
		s.metrics.Fraud()
	}
	s.publish(c.Request.Context(), check, report.Valid)

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Check processed successfully",
		"check":      check,
		"extraction": res.Extraction(),
		"validation": report,
		"signature":  res.Signature,
	})
}

// publish logs broker errors and drops them; the check is stored already.
func (s *server) publish(ctx context.Context, check *models.Check, valid bool) {
	if err := s.events.Publish(context.WithoutCancel(ctx), events.NewCheckCreated(check, valid)); err != nil {
		zerolog.Ctx(ctx).Warn().Str("component", "EVENTS").Err(err).Uint("check_id", check.ID).Msg("publish check.created failed")
	}
}

func (s *server) getCheckHandler(c *gin.Context) {
	check, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, check)
}

func (s *server) listChecksHandler(c *gin.Context) {
	checks, err := s.store.List(c.Request.Context())
	if err != nil {
		s.fail(c, "", msgDatabase, err)
		return
	}
	c.JSON(http.StatusOK, checks)
}

// validateCheckHandler re-runs the validation rules on a stored record.
func (s *server) validateCheckHandler(c *gin.Context) {
	check, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, validate.Check(check.Fields(), s.now(), s.limits))
}

func (s *server) lookup(c *gin.Context) (*models.Check, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check id"})
		return nil, false
	}
	check, err := s.store.Get(c.Request.Context(), uint(id))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "check not found"})
		return nil, false
	}
	if err != nil {
		s.fail(c, "", msgDatabase, err)
		return nil, false
	}
	return check, true
}

func (s *server) reject(c *gin.Context, code int, outcome, msg string) {
	s.metrics.Outcome(outcome)
	zerolog.Ctx(c.Request.Context()).Info().Str("component", "HTTP").Int("status", code).Str("reason", msg).Msg("request rejected")
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

// fail logs err and answers 500 without exposing its detail.
func (s *server) fail(c *gin.Context, outcome, msg string, err error) {
	if outcome != "" {
		s.metrics.Outcome(outcome)
	}
	zerolog.Ctx(c.Request.Context()).Error().Str("component", "HTTP").Str("path", c.FullPath()).Err(err).Msg("request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msg})
}
