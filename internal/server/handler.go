package server

import (
	"context"
	"net/http"
	"strings"

	"lettercraft/internal/analysis"
	appErrors "lettercraft/internal/errors"
	"lettercraft/internal/jobsource"
	"lettercraft/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "lettercraft.api"

func (s *Server) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	ctx, span := s.om.Tracer(tracerName).Start(ctx, name)
	if id := RequestIDFromContext(ctx); id != "" {
		span.SetAttributes(attribute.String("request.id", id))
	}
	return ctx, span
}

func failSpan(span trace.Span, err error, kind string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("error.type", kind))
}

// generateHandler writes a cover letter, fetching the job posting when only a URL is given
func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r.Context(), "api.generate")
	defer span.End()

	var req GenerateRequest
	if err := parseJSONRequest(r, &req); err != nil {
		failSpan(span, err, "validation")
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if missing := missingJobFields(req); len(missing) > 0 {
		err := appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest,
			"missing required fields: "+strings.Join(missing, ", "), nil)
		failSpan(span, err, "validation")
		s.writeAppError(w, err)
		return
	}

	jobDescription := strings.TrimSpace(req.JobDescription)
	if jobDescription == "" && strings.TrimSpace(req.JobURL) != "" {
		text, err := s.fetchJob(ctx, strings.TrimSpace(req.JobURL))
		if err != nil {
			failSpan(span, err, "job_fetch")
			s.writeAppError(w, err)
			return
		}
		jobDescription = text
		span.SetAttributes(attribute.Bool("request.job_from_url", true))
	}

	profile := req.Profile
	if userID := UserIDFromContext(ctx); userID != "" {
		profile.UserID = userID
	}

	prompt := types.LetterPrompt{
		JobTitle:       strings.TrimSpace(req.JobTitle),
		CompanyName:    strings.TrimSpace(req.CompanyName),
		JobDescription: jobDescription,
		Profile:        profile,
		Tone:           types.Tone(req.Tone),
		PersonalNotes:  req.PersonalNotes,
		Industry:       req.Industry,
	}

	span.SetAttributes(
		attribute.String("operation", "generate"),
		attribute.Int("request.job_length", len(jobDescription)),
		attribute.String("request.tone", req.Tone),
		attribute.String("request.industry", req.Industry),
	)

	letter, err := s.Letters.Generate(ctx, prompt)
	if err != nil {
		failSpan(span, err, "generation")
		s.writeAppError(w, err)
		return
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.String("provider", letter.Provider),
		attribute.Int("response.word_count", letter.WordCount),
		attribute.Float64("response.ai_score", letter.AIScore),
	)
	writeJSON(w, http.StatusOK, letter)
}

// missingJobFields lists the blank fields that a job URL fetch cannot fill in
func missingJobFields(req GenerateRequest) []string {
	var missing []string
	if strings.TrimSpace(req.JobTitle) == "" {
		missing = append(missing, "jobTitle")
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		missing = append(missing, "companyName")
	}
	return missing
}

func (s *Server) fetchJob(ctx context.Context, address string) (string, error) {
	if !jobsource.IsURL(address) {
		return "", appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest,
			"jobUrl must be an absolute http or https URL", nil)
	}
	if s.Jobs == nil {
		return "", appErrors.NewConfigError(appErrors.ErrCodeInvalidConfig, "job fetching is not configured", nil)
	}
	return s.Jobs.Fetch(ctx, address)
}

// analyzeHandler scores a letter
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r.Context(), "api.analyze")
	defer span.End()

	var req AnalyzeRequest
	if err := parseJSONRequest(r, &req); err != nil {
		failSpan(span, err, "validation")
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := req.Validate(); err != nil {
		failSpan(span, err, "validation")
		writeErrorResponse(w, "Missing letter content", "content field is required", http.StatusBadRequest)
		return
	}

	span.SetAttributes(
		attribute.String("operation", "analyze"),
		attribute.Int("request.content_length", len(req.Content)),
		attribute.Bool("request.with_job", req.JobDescription != ""),
	)

	result := s.Letters.Analyze(ctx, UserIDFromContext(ctx), req.Content, req.JobDescription)

	span.SetAttributes(attribute.Float64("response.score", result.OverallScore))
	writeJSON(w, http.StatusOK, result)
}

// improveHandler revises a letter and optionally re-analyzes the result
func (s *Server) improveHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r.Context(), "api.improve")
	defer span.End()

	var req ImproveRequest
	if err := parseJSONRequest(r, &req); err != nil {
		failSpan(span, err, "validation")
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := req.Validate(); err != nil {
		failSpan(span, err, "validation")
		writeErrorResponse(w, "Missing letter content", "content field is required", http.StatusBadRequest)
		return
	}

	span.SetAttributes(
		attribute.String("operation", "improve"),
		attribute.Int("request.content_length", len(req.Content)),
		attribute.Int("request.suggestions", len(req.Suggestions)),
	)

	suggestions := req.Suggestions
	if len(suggestions) == 0 {
		suggestions = analysis.Analyze(req.Content, "").Improvements
	}

	userID := UserIDFromContext(ctx)
	content, err := s.Letters.Improve(ctx, userID, req.Content, suggestions)
	if err != nil {
		failSpan(span, err, "improvement")
		s.writeAppError(w, err)
		return
	}

	out := types.ImproveLetterOutput{Content: content}
	if req.Reanalyze {
		report := s.Letters.Analyze(ctx, userID, content, "")
		out.Analysis = &report
	}

	span.SetAttributes(attribute.Bool("success", true))
	writeJSON(w, http.StatusOK, out)
}
