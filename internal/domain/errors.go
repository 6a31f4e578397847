package domain

import (
	"errors"
	"fmt"
)

// Application-wide standard errors
var (
	// Generation Errors
	ErrGenerationFailed = errors.New("story generation failed")
	ErrNoCredential     = errors.New("no usable generation credential")

	// Resource/Store Errors
	ErrStoryNotFound = errors.New("story not found")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidInput   = errors.New("invalid input data")
)

// ImageGenerationError wraps a failed image-backend call. Transient
// failures (network, timeout, server-side) are eligible for retry;
// validation and quota failures are not.
type ImageGenerationError struct {
	Transient bool
	Err       error
}

func (e *ImageGenerationError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("image generation failed (%s): %v", kind, e.Err)
}

func (e *ImageGenerationError) Unwrap() error { return e.Err }
