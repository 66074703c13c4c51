package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// Scan pipeline failure categories. Stages wrap their failures in one of
// these so callers can distinguish a bad upload from a provider outage.
var (
	ErrImageQuality   = errors.New("image quality check failed")
	ErrAngleDetection = errors.New("angle detection failed")
	ErrVisionAPI      = errors.New("vision api call failed")
	ErrExtraction     = errors.New("response extraction failed")
)

// VisionAPIKind identifies why a vision call ultimately failed.
type VisionAPIKind string

const (
	VisionTimeout          VisionAPIKind = "TIMEOUT"
	VisionRateLimited      VisionAPIKind = "RATE_LIMITED"
	VisionProviderRejected VisionAPIKind = "PROVIDER_REJECTED"
	VisionExhausted        VisionAPIKind = "EXHAUSTED"
)

// VisionAPIError carries the failure kind and how many attempts were made
// before giving up.
type VisionAPIError struct {
	Kind     VisionAPIKind
	Attempts int
	Cause    error
}

func (e *VisionAPIError) Error() string {
	return fmt.Sprintf("vision api failed (%s) after %d attempt(s): %v", e.Kind, e.Attempts, e.Cause)
}

func (e *VisionAPIError) Unwrap() error { return e.Cause }

func (e *VisionAPIError) Is(target error) bool { return target == ErrVisionAPI }

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewImageQualityError(message string, cause error) *AppError {
	return NewAppError("IMAGE_QUALITY", message, wrapCategory(ErrImageQuality, cause))
}

func NewAngleDetectionError(message string, cause error) *AppError {
	return NewAppError("ANGLE_DETECTION", message, wrapCategory(ErrAngleDetection, cause))
}

func NewExtractionError(message string, cause error) *AppError {
	return NewAppError("EXTRACTION_UNPARSEABLE", message, wrapCategory(ErrExtraction, cause))
}

func NewVisionAPIError(kind VisionAPIKind, attempts int, cause error) *VisionAPIError {
	return &VisionAPIError{Kind: kind, Attempts: attempts, Cause: cause}
}

func wrapCategory(category error, cause error) error {
	if cause == nil {
		return category
	}
	return fmt.Errorf("%w: %w", category, cause)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func UnavailableError(message string) error {
	return status.Error(codes.Unavailable, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}
