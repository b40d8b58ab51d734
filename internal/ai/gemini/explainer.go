package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/recruit-matcher/internal/ai"
	"github.com/spigell/recruit-matcher/internal/logger"
	"github.com/spigell/recruit-matcher/internal/recruit"
	"github.com/spigell/recruit-matcher/internal/scoring"
	"github.com/spigell/recruit-matcher/internal/utils"
)

const (
	provider            = "gemini"
	defaultMaxLogLength = 200
	maxKeyPoints        = 5
)

const systemInstruction = "You explain candidate to job match results. Answer with JSON only."

//go:embed prompt.md
var promptTemplate string

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// Explainer produces key points for a scored match.
type Explainer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewExplainer(generator contentGenerator, maxLogLength int, log *zap.Logger) *Explainer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Explainer{
		generator: generator,
		logger:    logger.WithCommonFields(log, provider, generator.Model()),
		maxLogLen: maxLogLength,
	}
}

var _ ai.Explainer = (*Explainer)(nil)

func (e *Explainer) Explain(ctx context.Context, candidate recruit.Candidate, job recruit.Job, result scoring.MatchResult) (*ai.Explanation, error) {
	if candidate.ID == "" {
		return nil, errors.New("candidate id is required")
	}
	if job.ID == "" {
		return nil, errors.New("job id is required")
	}

	prompt, err := buildPrompt(candidate, job, result)
	if err != nil {
		return nil, err
	}

	fields := logger.MatchFields(job.ID, candidate.ID)

	e.logger.Debug("gemini explain request", append(fields,
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLen)),
	)...)

	raw, err := e.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini explain response", append(fields,
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)...)

	explanation, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}
	explanation.Raw = raw
	return explanation, nil
}

func buildPrompt(candidate recruit.Candidate, job recruit.Job, result scoring.MatchResult) (string, error) {
	jobJSON, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job payload: %w", err)
	}

	candidateJSON, err := json.MarshalIndent(candidate, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal candidate payload: %w", err)
	}

	result.KeyPoints = nil
	result.ExplainError = ""
	resultJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result payload: %w", err)
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job:\n{{JOB_JSON}}\n\nCandidate:\n{{CANDIDATE_JSON}}\n\nMatch result:\n{{RESULT_JSON}}\n\nJSON Response:"
	}

	prompt := strings.ReplaceAll(template, "{{JOB_JSON}}", string(jobJSON))
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATE_JSON}}", string(candidateJSON))
	prompt = strings.ReplaceAll(prompt, "{{RESULT_JSON}}", string(resultJSON))
	return prompt, nil
}

func parseResponse(raw string) (*ai.Explanation, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	points := coerceStrings(data["key_points"])
	if len(points) > maxKeyPoints {
		points = points[:maxKeyPoints]
	}

	return &ai.Explanation{
		Summary:   coerceString(data["summary"]),
		KeyPoints: points,
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceStrings(v any) []string {
	var out []string
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, line := range strings.Split(val, "\n") {
			line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•"))
			if line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case nil:
		return ""
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
