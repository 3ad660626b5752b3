package analysis

import (
	"context"
	"log/slog"

	"github.com/bryanwahyu/feedback-lens/internal/application"
	"github.com/bryanwahyu/feedback-lens/internal/domain/feedback"
	"github.com/bryanwahyu/feedback-lens/internal/domain/uploads"
	"github.com/bryanwahyu/feedback-lens/internal/logging"
	"github.com/bryanwahyu/feedback-lens/internal/metrics"
)

// FileSource hands out uploaded files and removes them once analyzed.
type FileSource interface {
	Open(ctx context.Context, id uploads.UploadID) (*uploads.Upload, []byte, error)
	Discard(ctx context.Context, id uploads.UploadID) error
}

// Service runs the analysis use cases. Safe for concurrent use.
type Service struct {
	Files      FileSource
	Decoder    feedback.TableDecoder
	Classifier *Classifier
	Aggregator *Aggregator
	Reporter   *Reporter
	Clock      application.Clock
	Logger     *slog.Logger
}

type AnalyzeCommand struct {
	FileID     uploads.UploadID
	ColumnName string
	BatchSize  int
}

type Result struct {
	Summary  *feedback.DashboardSummary `json:"summary"`
	Comments []feedback.CommentRecord   `json:"comments"`
}

func (s *Service) clock() application.Clock {
	if s.Clock == nil {
		return application.SystemClock{}
	}
	return s.Clock
}

// AnalyzeUpload analyzes a previously uploaded file. The upload is discarded
// afterwards whether or not the analysis succeeded.
func (s *Service) AnalyzeUpload(ctx context.Context, cmd AnalyzeCommand) (*Result, error) {
	logger := logging.OrDefault(s.Logger)

	u, data, err := s.Files.Open(ctx, cmd.FileID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.Files.Discard(context.WithoutCancel(ctx), cmd.FileID); err != nil {
			logger.Warn("failed to discard upload", "file_id", cmd.FileID, "error", err)
		}
	}()

	table, err := s.Decoder.Decode(u.Filename, data)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeTable(ctx, table, cmd.ColumnName, cmd.BatchSize)
}

// AnalyzeTable runs preprocess, classify and aggregate over an in-memory table.
func (s *Service) AnalyzeTable(ctx context.Context, table feedback.Table, column string, batchSize int) (res *Result, err error) {
	logger := logging.OrDefault(s.Logger)
	start := s.clock().Now()
	comments := 0
	defer func() {
		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = metrics.OutcomeError
		}
		metrics.ObserveAnalysis(s.clock().Now().Sub(start), outcome, comments)
	}()

	texts, err := Preprocess(table, column)
	if err != nil {
		return nil, err
	}
	comments = len(texts)
	logger.Info("preprocessed comments", "column", column, "rows", len(table.Rows), "comments", comments)

	classified, err := s.Classifier.Classify(ctx, texts, batchSize)
	if err != nil {
		return nil, err
	}

	summary, err := s.Aggregator.Aggregate(ctx, classified.Records)
	if err != nil {
		return nil, err
	}
	if len(classified.Degraded) > 0 {
		summary.Degraded = append(classified.Degraded, summary.Degraded...)
	}

	logger.Info("analysis complete",
		"comments", comments,
		"classified", summary.TotalComments,
		"degraded", len(summary.Degraded),
		"duration", s.clock().Now().Sub(start))
	return &Result{Summary: summary, Comments: classified.Records}, nil
}

// GenerateReport returns the narrative for a summary, or FallbackReport.
func (s *Service) GenerateReport(ctx context.Context, summary *feedback.DashboardSummary) string {
	return s.Reporter.Generate(ctx, summary)
}
