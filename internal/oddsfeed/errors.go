package oddsfeed

// FeedError represents errors from odds feed operations
type FeedError struct {
	Source  string // Feed name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e FeedError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e FeedError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// NewFeedError creates a new odds feed error
func NewFeedError(source, code, message string, err error) FeedError {
	return FeedError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
