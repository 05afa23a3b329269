package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeContainerNotFound indicates no content container matched the cascade
	ErrorTypeContainerNotFound ErrorType = "container_not_found"
	// ErrorTypeNoURL indicates an element carried no usable image URL
	ErrorTypeNoURL ErrorType = "no_url"
	// ErrorTypeExcludedURL indicates a resolved URL matched an exclusion marker
	ErrorTypeExcludedURL ErrorType = "excluded_url"
	// ErrorTypeMalformedPayload indicates an unparseable attribute payload
	ErrorTypeMalformedPayload ErrorType = "malformed_payload"
	// ErrorTypeControlNotInteractable indicates a pagination control cannot be activated
	ErrorTypeControlNotInteractable ErrorType = "control_not_interactable"
	// ErrorTypeClickBudget indicates pagination stopped at its click ceiling
	ErrorTypeClickBudget ErrorType = "click_budget"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeStorage represents image storage errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeTask represents task store errors
	ErrorTypeTask ErrorType = "task"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ExtractionError represents an extraction-specific error
type ExtractionError struct {
	Type      ErrorType
	Extractor string
	Message   string
	Err       error
	Time      time.Time
	// RetryAfter is the backoff window carried by rate limit errors
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Extractor, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Extractor, e.Message)
}

// Unwrap returns the underlying error
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *ExtractionError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork:
		return true
	case ErrorTypeRateLimit:
		return false
	default:
		return false
	}
}

// IsType reports whether err is an ExtractionError of the given type
func IsType(err error, errType ErrorType) bool {
	var extErr *ExtractionError
	if stderrors.As(err, &extErr) {
		return extErr.Type == errType
	}
	return false
}

// New creates a new ExtractionError
func New(errType ErrorType, extractor, message string, err error) *ExtractionError {
	return &ExtractionError{
		Type:      errType,
		Extractor: extractor,
		Message:   message,
		Err:       err,
		Time:      time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(extractor, message string, err error) *ExtractionError {
	return New(ErrorTypeNetwork, extractor, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(extractor, message string, err error) *ExtractionError {
	return New(ErrorTypeParsing, extractor, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(extractor string, duration time.Duration) *ExtractionError {
	message := fmt.Sprintf("rate limited for %v", duration)
	e := New(ErrorTypeRateLimit, extractor, message, nil)
	e.RetryAfter = duration
	return e
}

// BackoffDuration returns the retry window carried by a rate limit error
func BackoffDuration(err error) (time.Duration, bool) {
	var extErr *ExtractionError
	if stderrors.As(err, &extErr) && extErr.Type == ErrorTypeRateLimit && extErr.RetryAfter > 0 {
		return extErr.RetryAfter, true
	}
	return 0, false
}

// NewContainerNotFound creates an error for a container that matched no cascade tier
func NewContainerNotFound(extractor, category string) *ExtractionError {
	message := fmt.Sprintf("no container found for category %s", category)
	return New(ErrorTypeContainerNotFound, extractor, message, nil)
}

// NewNoURL creates an error for an element without a usable image URL
func NewNoURL(extractor string) *ExtractionError {
	return New(ErrorTypeNoURL, extractor, "no image URL found on element or ancestor", nil)
}

// NewExcludedURL creates an error for a URL matching an exclusion marker
func NewExcludedURL(extractor, url string) *ExtractionError {
	message := fmt.Sprintf("url excluded: %s", url)
	return New(ErrorTypeExcludedURL, extractor, message, nil)
}

// NewMalformedPayload creates an error for an unparseable attribute payload
func NewMalformedPayload(extractor, attr string, err error) *ExtractionError {
	message := fmt.Sprintf("malformed %s payload", attr)
	return New(ErrorTypeMalformedPayload, extractor, message, err)
}

// NewControlNotInteractable creates an error for a pagination control that cannot be activated
func NewControlNotInteractable(extractor string) *ExtractionError {
	return New(ErrorTypeControlNotInteractable, extractor, "pagination control not interactable", nil)
}

// NewClickBudget creates an error for pagination stopping at its click ceiling
func NewClickBudget(extractor string, clicks int) *ExtractionError {
	message := fmt.Sprintf("pagination stopped after %d clicks", clicks)
	return New(ErrorTypeClickBudget, extractor, message, nil)
}

// NewCache creates a new cache error
func NewCache(extractor, message string, err error) *ExtractionError {
	return New(ErrorTypeCache, extractor, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(extractor, message string, err error) *ExtractionError {
	return New(ErrorTypePublisher, extractor, message, err)
}

// NewStorage creates a new storage error
func NewStorage(extractor, message string, err error) *ExtractionError {
	return New(ErrorTypeStorage, extractor, message, err)
}

// NewTask creates a new task store error
func NewTask(message string, err error) *ExtractionError {
	return New(ErrorTypeTask, "", message, err)
}

// NewValidation creates a new validation error
func NewValidation(extractor, message string) *ExtractionError {
	return New(ErrorTypeValidation, extractor, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ExtractionError {
	return New(ErrorTypeConfiguration, "", message, err)
}
