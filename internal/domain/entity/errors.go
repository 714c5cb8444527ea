package entity

import (
	"errors"
	"fmt"
)

// Standard domain errors
var (
	ErrInvalidInput      = errors.New("invalid input: empty or malformed image data")
	ErrNotFound          = errors.New("the requested entry was not found")
	ErrStoreUnavailable  = errors.New("backing store unavailable")
	ErrRecognitionFailed = errors.New("artwork recognition failed")
	ErrGenerationFailed  = errors.New("content generation failed")
)

// NotRecognizedError is returned when the vision model answered but decided
// the image is not an identifiable famous artwork. It is a semantic "no",
// not a transport failure, so it is never wrapped in ErrRecognitionFailed.
type NotRecognizedError struct {
	Message     string
	IsArtwork   bool
	Suggestions []string
}

func (e *NotRecognizedError) Error() string {
	return fmt.Sprintf("artwork not recognized: %s", e.Message)
}
