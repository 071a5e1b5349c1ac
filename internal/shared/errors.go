package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrGameUnavailable    = fmt.Errorf("game details unavailable")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Document and template errors
	ErrExtraction       = fmt.Errorf("could not extract game details")
	ErrMalformedXML     = fmt.Errorf("malformed XML document")
	ErrTemplateNotFound = fmt.Errorf("template fragment not found")

	// Persistence errors
	ErrNotFound = fmt.Errorf("record not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
