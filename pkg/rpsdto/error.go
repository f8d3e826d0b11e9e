package rpsdto

// DomainError is the body of non-validation failures.
type DomainError struct {
	Code      string `json:"code,omitempty"`
	Message   string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "rps service error"
}

// InternalError is what callers see for anything unexpected.
var InternalError = DomainError{Code: "internal", Message: "Internal Server Error"}

// ValidationError is the single error-with-reason contract for bad requests.
type ValidationError struct {
	Valid bool   `json:"valid"`
	Error string `json:"error"`
}
