// Package submit validates report forms and performs the single
// authenticated write to the backend, classifying the outcome.
package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/viperioribus/shorewatch/internal/domain"
	"github.com/viperioribus/shorewatch/internal/observability"
	"github.com/viperioribus/shorewatch/internal/session"
)

// Submitter performs the authenticated write for each report kind.
// Implemented by the backend API client.
type Submitter interface {
	SubmitIncident(ctx context.Context, token string, r domain.IncidentReport, requestID string) error
	SubmitEnvironment(ctx context.Context, token string, r domain.EnvironmentReport, requestID string) error
}

// Pipeline submits report forms. It has no shared mutable state across
// calls and is safe for concurrent use with independent forms. Exactly
// one network attempt is made per call; retrying is the caller's call.
type Pipeline struct {
	api     Submitter
	session *session.Session
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a submission pipeline.
func New(api Submitter, sess *session.Session, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{api: api, session: sess, logger: logger, metrics: metrics}
}

// Submit validates the form, resolves the credential, and performs one
// authenticated write. Validation and credential failures short-circuit
// before any network traffic.
func (p *Pipeline) Submit(ctx context.Context, form domain.Report) domain.SubmissionResult {
	start := time.Now()
	kind := string(form.Kind())

	if fieldErrs := form.Validate(); len(fieldErrs) > 0 {
		p.logger.Info("report failed validation", "kind", kind, "fields", len(fieldErrs))
		return p.finish(kind, start, domain.SubmissionResult{
			Status:      domain.StatusValidationFailed,
			FieldErrors: fieldErrs,
		})
	}

	token, ok := p.session.Token(ctx)
	if !ok {
		p.logger.Info("report submission without credential", "kind", kind)
		return p.finish(kind, start, domain.SubmissionResult{Status: domain.StatusAuthFailed})
	}

	requestID := uuid.NewString()
	err := p.send(ctx, token, form, requestID)
	result := classify(err)

	switch result.Status {
	case domain.StatusSuccess:
		p.logger.Info("report submitted", "kind", kind, "request_id", requestID)
	default:
		p.logger.Warn("report submission failed",
			"kind", kind, "request_id", requestID, "status", result.Status.String(), "error", err)
	}
	return p.finish(kind, start, result)
}

func (p *Pipeline) send(ctx context.Context, token string, form domain.Report, requestID string) error {
	switch r := form.(type) {
	case domain.IncidentReport:
		return p.api.SubmitIncident(ctx, token, r, requestID)
	case *domain.IncidentReport:
		return p.api.SubmitIncident(ctx, token, *r, requestID)
	case domain.EnvironmentReport:
		return p.api.SubmitEnvironment(ctx, token, r, requestID)
	case *domain.EnvironmentReport:
		return p.api.SubmitEnvironment(ctx, token, *r, requestID)
	default:
		return fmt.Errorf("unsupported report type %T", form)
	}
}

func (p *Pipeline) finish(kind string, start time.Time, result domain.SubmissionResult) domain.SubmissionResult {
	p.metrics.SubmissionsTotal.WithLabelValues(kind, result.Status.String()).Inc()
	p.metrics.SubmissionDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	return result
}

// classify maps the write outcome onto the submission taxonomy:
// nil → Success, rejected credential → AuthFailed, structured backend
// rejection → Rejected with the message verbatim, anything else
// (DNS, timeout, connection refused) → NetworkFailed.
func classify(err error) domain.SubmissionResult {
	if err == nil {
		return domain.SubmissionResult{Status: domain.StatusSuccess}
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		return domain.SubmissionResult{Status: domain.StatusAuthFailed}
	}
	var rejection *domain.RejectionError
	if errors.As(err, &rejection) {
		return domain.SubmissionResult{Status: domain.StatusRejected, Message: rejection.Message}
	}
	return domain.SubmissionResult{Status: domain.StatusNetworkFailed}
}
