package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lexguard-backend/completion"
	"lexguard-backend/metrics"
	"lexguard-backend/models"
	"lexguard-backend/policy"

	"go.uber.org/zap"
)

var (
	ErrEmptyQuery         = errors.New("query is empty")
	ErrEmptyKnowledgeBase = errors.New("knowledge base has no items or taxonomy")
	ErrTargetNodeNotFound = errors.New("target node not found")
	ErrBrokenTaxonomy     = errors.New("broken taxonomy")
	ErrEmptyAuthorization = errors.New("no authorities authorized for the target node")
	ErrCompletionFailed   = errors.New("completion call failed")
)

// Generation loop states, recorded in logs as the loop moves
const (
	stateDrafting   = "DRAFTING"
	stateValidating = "VALIDATING"
	stateRetrying   = "RETRYING"
	stateAccepted   = "ACCEPTED"
	stateRejected   = "REJECTED"
	stateFlagged    = "FLAGGED"
)

// AnalysisService runs the constrained-generation pipeline for one query:
// target selection, authority retrieval, instruction compilation, and the
// draft-validate loop
type AnalysisService struct {
	completer completion.Client
	pol       *policy.Policy
	validator *Validator
	logger    *zap.Logger
	metrics   *metrics.Metrics
	stopWords map[string]bool
}

// AnalysisServiceOption is a functional option for AnalysisService
type AnalysisServiceOption func(*AnalysisService)

// AnalysisWithCompleter sets the completion client
func AnalysisWithCompleter(client completion.Client) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.completer = client
	}
}

// AnalysisWithPolicy sets the tuning policy
func AnalysisWithPolicy(pol *policy.Policy) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.pol = pol
	}
}

// AnalysisWithLogger sets the logger
func AnalysisWithLogger(logger *zap.Logger) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.logger = logger
	}
}

// AnalysisWithMetrics sets the metrics recorder
func AnalysisWithMetrics(m *metrics.Metrics) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.metrics = m
	}
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(opts ...AnalysisServiceOption) *AnalysisService {
	s := &AnalysisService{}
	for _, opt := range opts {
		opt(s)
	}
	if s.pol == nil {
		s.pol = policy.Default()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.validator = NewValidator(s.pol)
	s.stopWords = s.pol.StopWordSet()
	return s
}

// AnalyzeRequest represents one analysis query
type AnalyzeRequest struct {
	Query         string
	KnowledgeBase *models.KnowledgeBase
	TargetNodeID  string // Optional, bypasses target scoring
	MaxIterations int    // Optional, defaults to the policy value
}

// AnalyzeResult represents the outcome of a finished analysis. Rejected and
// flagged analyses still carry the last generated text and the full report.
type AnalyzeResult struct {
	GeneratedText string
	Report        models.ValidationReport
	Status        models.AnalysisStatus
	Context       models.AuthorizedContext
	Iterations    int
}

// Run executes one analysis end to end. Input errors surface before any
// completion call; a completion transport failure aborts the loop.
func (s *AnalysisService) Run(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	if s.completer == nil {
		return nil, errors.New("completion client not set")
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	kb := req.KnowledgeBase
	if kb == nil || len(kb.Items) == 0 || len(kb.Taxonomy) == 0 {
		return nil, ErrEmptyKnowledgeBase
	}

	var target models.TaxonomyNode
	if req.TargetNodeID != "" {
		node, ok := kb.NodeByID(req.TargetNodeID)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrTargetNodeNotFound, req.TargetNodeID)
		}
		target = node
	} else {
		target = SelectTargetNode(query, kb.Taxonomy, s.pol.SelectionThreshold, s.stopWords)
	}

	path, err := ComputePath(target, kb.Taxonomy)
	if err != nil {
		return nil, err
	}

	items := RetrieveAuthorities(path, kb.Items)
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: path %s", ErrEmptyAuthorization, strings.Join(path, "/"))
	}

	constraints := make([]models.ConstraintRecord, 0)
	for _, item := range items {
		constraints = append(constraints, ExtractConstraints(item)...)
	}

	authorized := BuildAuthorizedContext(target, path, items, constraints)
	base := CompileInstructions(authorized, query)

	maxIterations := req.MaxIterations
	if maxIterations <= 0 {
		maxIterations = s.pol.DefaultMaxIterations
	}

	s.logger.Info("analysis started",
		zap.String("targetNode", target.ID),
		zap.Strings("path", path),
		zap.Int("authorities", len(items)),
		zap.Int("constraints", len(constraints)),
		zap.Int("maxIterations", maxIterations))

	instructions := base
	for attempt := 1; attempt <= maxIterations; attempt++ {
		s.logger.Debug("loop state",
			zap.String("state", stateDrafting),
			zap.Int("attempt", attempt))

		start := time.Now()
		text, err := s.completer.Complete(ctx, instructions)
		s.metrics.RecordCompletion(time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCompletionFailed, err)
		}

		s.logger.Debug("loop state",
			zap.String("state", stateValidating),
			zap.Int("attempt", attempt))
		report := s.validator.Validate(text, authorized)
		for _, check := range report.Checks {
			s.metrics.RecordCheck(string(check.Category), string(check.Status))
		}

		switch report.Severity {
		case models.SeverityCritical:
			return s.finish(stateRejected, models.AnalysisRejected, text, report, authorized, attempt), nil
		case models.SeverityMinor:
			return s.finish(stateFlagged, models.AnalysisFlagged, text, report, authorized, attempt), nil
		case models.SeverityMajor:
			if attempt == maxIterations {
				return s.finish(stateFlagged, models.AnalysisFlagged, text, report, authorized, attempt), nil
			}
			instructions = NextInstructions(base, attempt, report)
			s.logger.Info("draft failed validation, retrying",
				zap.String("state", stateRetrying),
				zap.Int("attempt", attempt))
		default:
			return s.finish(stateAccepted, models.AnalysisValidated, text, report, authorized, attempt), nil
		}
	}

	// The loop always terminates from inside: the last attempt maps every
	// severity to a terminal state.
	return nil, errors.New("generation loop exited without a terminal state")
}

// finish records terminal metrics and builds the result
func (s *AnalysisService) finish(
	state string,
	status models.AnalysisStatus,
	text string,
	report models.ValidationReport,
	authorized models.AuthorizedContext,
	iterations int,
) *AnalyzeResult {
	s.metrics.RecordAnalysis(string(status), iterations)
	s.logger.Info("analysis finished",
		zap.String("state", state),
		zap.String("status", string(status)),
		zap.Int("iterations", iterations))
	return &AnalyzeResult{
		GeneratedText: text,
		Report:        report,
		Status:        status,
		Context:       authorized,
		Iterations:    iterations,
	}
}

// Fixed remediation directives, one per check category
const (
	remediationCitation   = "Cite only the authorized authorities listed in the prompt; remove or replace every other citation."
	remediationRule       = "Restate each rule of law so it tracks the rule stated by an authorized authority."
	remediationConstraint = "Address every required element and required test explicitly in the draft."
)

// NextInstructions derives the instructions for the next drafting attempt:
// the base instructions plus one numbered directive per failed check from the
// prior report. Feedback never accumulates across attempts; each retry
// appends to the base, not to the previous attempt's instructions.
func NextInstructions(base string, attempt int, prior models.ValidationReport) string {
	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\nFEEDBACK ON THE PREVIOUS DRAFT:\n")
	fmt.Fprintf(&b, "Draft %d failed validation. Correct the following and answer the question again:\n", attempt)

	n := 0
	for _, check := range prior.Checks {
		if check.Status != models.CheckFail {
			continue
		}
		n++
		directive, label := remediationFor(check.Category)
		fmt.Fprintf(&b, "%d. %s", n, directive)
		if check.Excerpt != "" {
			fmt.Fprintf(&b, " %s: %q.", label, check.Excerpt)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// remediationFor maps a check category to its fixed directive and the label
// used to name the offending excerpt
func remediationFor(category models.CheckCategory) (string, string) {
	switch category {
	case models.CheckCitation:
		return remediationCitation, "The unauthorized citation was"
	case models.CheckRuleMapping:
		return remediationRule, "The unsupported sentence was"
	default:
		return remediationConstraint, "The missing requirement was"
	}
}
