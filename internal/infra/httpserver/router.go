package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	appanalysis "github.com/bryanwahyu/feedback-lens/internal/application/analysis"
	appuploads "github.com/bryanwahyu/feedback-lens/internal/application/uploads"
	"github.com/bryanwahyu/feedback-lens/internal/config"
	domai "github.com/bryanwahyu/feedback-lens/internal/domain/ai"
	"github.com/bryanwahyu/feedback-lens/internal/domain/feedback"
	"github.com/bryanwahyu/feedback-lens/internal/domain/uploads"
	"github.com/bryanwahyu/feedback-lens/internal/logging"
	"github.com/bryanwahyu/feedback-lens/internal/middleware"
)

const (
	APIPrefix             = "/api/v1"
	defaultMaxUploadBytes = 32 << 20
)

var errBadRequest = errors.New("bad request")

type Options struct {
	Logger         *slog.Logger
	CORSOrigins    []string
	MaxUploadBytes int64
	// RateLimiter guards the API routes when set.
	RateLimiter *middleware.RateLimiter
	Health      map[string]middleware.HealthChecker
	Gatherer    prometheus.Gatherer
}

type Router struct {
	uploadsSvc  *appuploads.Service
	analysisSvc *appanalysis.Service
	logger      *slog.Logger
	maxUpload   int64
}

func NewRouter(uploadsSvc *appuploads.Service, analysisSvc *appanalysis.Service, opts Options) http.Handler {
	r := &Router{
		uploadsSvc:  uploadsSvc,
		analysisSvc: analysisSvc,
		logger:      logging.OrDefault(opts.Logger),
		maxUpload:   opts.MaxUploadBytes,
	}
	if r.maxUpload <= 0 {
		r.maxUpload = defaultMaxUploadBytes
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.Logging(r.logger))
	mux.Use(middleware.Metrics)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	mux.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to " + config.ProjectName})
	})
	mux.Get("/health", middleware.HealthHandler(opts.Health))
	mux.Get("/healthz", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler)
	mux.Handle("/metrics", middleware.MetricsHandler(gatherer))

	mux.Route(APIPrefix, func(rt chi.Router) {
		if opts.RateLimiter != nil {
			rt.Use(middleware.RateLimit(opts.RateLimiter))
		}
		rt.Post("/files/upload", r.wrap(r.handleUpload))
		rt.Post("/files/analyze", r.wrap(r.handleAnalyze))
		rt.Post("/report/generate", r.wrap(r.handleReport))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			r.logger.Error("request failed", "path", req.URL.Path, "error", err)
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
	}
}

func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, feedback.ErrColumnNotFound),
		errors.Is(err, feedback.ErrDecodeFailure):
		return http.StatusBadRequest
	case errors.Is(err, uploads.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, uploads.ErrTooLarge), errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domai.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(req *http.Request, dst any) error {
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

type uploadResponse struct {
	FileID    string   `json:"file_id"`
	Headers   []string `json:"headers"`
	TotalRows int      `json:"total_rows"`
}

// POST /api/v1/files/upload (multipart field "file")
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload+1<<20)
	file, header, err := req.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return fmt.Errorf("%w: multipart field \"file\" is required", errBadRequest)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, r.maxUpload+1))
	if err != nil {
		return err
	}
	if int64(len(data)) > r.maxUpload {
		return fmt.Errorf("%w: limit is %d bytes", uploads.ErrTooLarge, r.maxUpload)
	}

	u, err := r.uploadsSvc.Register(req.Context(), header.Filename, data)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, uploadResponse{FileID: string(u.ID), Headers: u.Headers, TotalRows: u.TotalRows})
	return nil
}

type analyzeRequest struct {
	FileID     string `json:"file_id"`
	ColumnName string `json:"column_name"`
	BatchSize  *int   `json:"batch_size"`
}

// POST /api/v1/files/analyze
// Body: {"file_id": "<uuid>", "column_name": "<header>", "batch_size": 50}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body analyzeRequest
	if err := decodeBody(req, &body); err != nil {
		return err
	}
	batchSize := appanalysis.DefaultBatchSize
	if body.BatchSize != nil {
		batchSize = *body.BatchSize
	}
	if err := middleware.ValidateFileID(body.FileID); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	column := middleware.SanitizeString(body.ColumnName)
	if err := middleware.ValidateColumnName(column); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := middleware.ValidateBatchSize(batchSize); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}

	res, err := r.analysisSvc.AnalyzeUpload(req.Context(), appanalysis.AnalyzeCommand{
		FileID:     uploads.UploadID(body.FileID),
		ColumnName: column,
		BatchSize:  batchSize,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

type reportResponse struct {
	ReportText string `json:"report_text"`
}

// POST /api/v1/report/generate
// Body: a dashboard summary as returned by /files/analyze.
func (r *Router) handleReport(w http.ResponseWriter, req *http.Request) error {
	var summary feedback.DashboardSummary
	if err := decodeBody(req, &summary); err != nil {
		return err
	}
	text := r.analysisSvc.GenerateReport(req.Context(), &summary)
	writeJSON(w, http.StatusOK, reportResponse{ReportText: text})
	return nil
}
