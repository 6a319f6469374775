package ingest

import (
	"context"
	"log/slog"

	"github.com/hearthledger/hearth/internal/candidate"
	"github.com/hearthledger/hearth/internal/recognition"
)

// Report summarises one ingestion run. Empty lists files the recognizer
// answered with no rows; that is informational, not a failure.
type Report struct {
	Rows     []candidate.Raw
	Failures []Failure
	Empty    []string
}

type Service struct {
	recognizer recognition.Recognizer
	queue      Queue
	logger     *slog.Logger
}

func NewService(recognizer recognition.Recognizer, queue Queue, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{recognizer: recognizer, queue: queue, logger: logger}
}

// Run recognizes files in order and collects their rows.
func (s *Service) Run(ctx context.Context, files []recognition.File, hints recognition.Hints, progress func(Progress)) (Report, error) {
	var report Report

	tasks := make([]Task, len(files))

	for i, f := range files {
		tasks[i] = Task{
			Name: f.Name,
			Do: func(ctx context.Context) error {
				rows, err := s.recognizer.Recognize(ctx, f, hints)
				if err != nil {
					s.logger.Warn("recognition failed", "file", f.Name, "error", err)
					return err
				}

				if len(rows) == 0 {
					report.Empty = append(report.Empty, f.Name)
					return nil
				}

				report.Rows = append(report.Rows, rows...)

				return nil
			},
		}
	}

	failures, err := s.queue.Process(ctx, tasks, progress)
	report.Failures = failures

	s.logger.Info("ingestion finished",
		"files", len(files), "rows", len(report.Rows), "failed", len(failures), "empty", len(report.Empty))

	return report, err
}
