package domain

// SubmissionStatus classifies the outcome of one submission attempt.
type SubmissionStatus int

const (
	// StatusSuccess means the backend accepted the report (2xx).
	StatusSuccess SubmissionStatus = iota
	// StatusValidationFailed means the form failed local validation;
	// no network request was made.
	StatusValidationFailed
	// StatusAuthFailed means the credential was absent locally or
	// rejected by the backend (401/403). Re-authenticate and resubmit.
	StatusAuthFailed
	// StatusRejected means the backend refused the report with a
	// structured business-rule message.
	StatusRejected
	// StatusNetworkFailed means the request never produced an HTTP
	// response (DNS, timeout, connection refused). Safe to retry.
	StatusNetworkFailed
)

func (s SubmissionStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusValidationFailed:
		return "validation_failed"
	case StatusAuthFailed:
		return "auth_failed"
	case StatusRejected:
		return "rejected"
	case StatusNetworkFailed:
		return "network_failed"
	default:
		return "unknown"
	}
}

// SubmissionResult is the tagged outcome of the submission pipeline.
type SubmissionResult struct {
	Status SubmissionStatus

	// FieldErrors enumerates every violated field when Status is
	// StatusValidationFailed.
	FieldErrors []FieldError

	// Message carries the backend's rejection detail verbatim when
	// Status is StatusRejected.
	Message string
}

// OK reports whether the submission was accepted.
func (r SubmissionResult) OK() bool { return r.Status == StatusSuccess }
