package ai

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/ats-screener/internal/utils"
	"go.uber.org/zap"
)

// Generator sends a single-turn prompt to a hosted model and returns its text reply.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Assessment is the outcome of one scoring call.
type Assessment struct {
	Score int
	// Parsed is false when the reply was not a bare integer and Score fell back to 0.
	Parsed bool
	Raw    string
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	MinScore            = 0
	MaxScore            = 100
)

// Scorer rates resume text against a fixed job brief.
type Scorer struct {
	generator Generator
	brief     string
	logger    *zap.Logger
	maxLogLen int
	// Timeout bounds one scoring call. Zero means no deadline beyond the caller's context.
	Timeout time.Duration
}

func NewScorer(generator Generator, brief string, logger *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		generator: generator,
		brief:     brief,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Score asks the generator how well resumeText matches the job brief.
// Transport and service failures are returned as errors. A reply that is not a
// bare integer scores 0.
func (s *Scorer) Score(ctx context.Context, resumeText string) (*Assessment, error) {
	if s.generator == nil {
		return nil, errors.New("score generator is not configured")
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	prompt := buildPrompt(s.brief, resumeText)

	s.logger.Debug("generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(utils.OneLine(prompt), s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("score resume: %w", err)
	}

	s.logger.Debug("generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	score, ok := parseScore(raw)
	if !ok {
		// A chatty reply is indistinguishable from a genuine zero in the result.
		s.logger.Warn("score reply is not a bare number, using 0",
			zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
		)
	}

	return &Assessment{Score: score, Parsed: ok, Raw: raw}, nil
}

func buildPrompt(brief, resumeText string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job Description:\n{{JOB_DESCRIPTION}}\n\nResume:\n{{RESUME}}\n\nScore (0-100):"
	}
	// One pass, so placeholders inside the resume text stay literal.
	return strings.NewReplacer("{{JOB_DESCRIPTION}}", brief, "{{RESUME}}", resumeText).Replace(template)
}

func parseScore(raw string) (int, bool) {
	score, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}

	switch {
	case score < MinScore:
		score = MinScore
	case score > MaxScore:
		score = MaxScore
	}

	return score, true
}
