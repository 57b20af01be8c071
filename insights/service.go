package insights

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cppla/gymcheckin/attendance"
	"github.com/cppla/gymcheckin/domain"
	"github.com/cppla/gymcheckin/utils"
)

// WindowSource provides the aggregated window the prompt is built from.
type WindowSource interface {
	Window(ctx context.Context, days int) (attendance.Window, error)
}

// Result is what the dashboard renders.
type Result struct {
	Insights string   `json:"insights"`
	Bullets  []Bullet `json:"bullets"`
}

// Service runs the insight pipeline: aggregate, prompt, one generation call, parse.
type Service struct {
	windows    WindowSource
	gen        Generator
	windowDays int
	logger     *zap.Logger
}

// NewService builds the pipeline. A nil gen means generation is not configured; every
// request then fails with domain.ErrConfiguration.
func NewService(windows WindowSource, gen Generator, windowDays int, logger *zap.Logger) *Service {
	if windowDays <= 0 {
		windowDays = attendance.DefaultSummaryDays
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{windows: windows, gen: gen, windowDays: windowDays, logger: logger}
}

// Configured reports whether a generator is available.
func (s *Service) Configured() bool { return s.gen != nil }

// Generate produces insights for the trailing window.
func (s *Service) Generate(ctx context.Context) (Result, error) {
	if s.gen == nil {
		return Result{}, fmt.Errorf("%w: Missing AWS env vars.", domain.ErrConfiguration)
	}

	w, err := s.windows.Window(ctx, s.windowDays)
	if err != nil {
		return Result{}, err
	}
	in := InputFromWindow(w)
	if in.Empty() {
		return Result{Insights: NoDataMessage, Bullets: []Bullet{}}, nil
	}

	text, err := s.gen.Generate(ctx, BuildPrompt(in))
	if err != nil {
		s.logger.Error("insight generation failed", zap.Error(err))
		return Result{}, err
	}

	text = utils.SanitizeText(text)
	if text == "" {
		return Result{}, &domain.GenerationError{Reason: "no usable text after sanitising"}
	}
	bullets := ParseBullets(text)
	s.logger.Info("insights generated",
		zap.Int("total", in.Total),
		zap.Int("active_days", in.ActiveDays),
		zap.Int("bullets", len(bullets)))
	return Result{Insights: text, Bullets: bullets}, nil
}
