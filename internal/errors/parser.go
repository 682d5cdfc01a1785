package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ParsedError carries the HTTP status, code and message derived from a
// lower-layer error
type ParsedError struct {
	StatusCode int
	ErrorCode  string
	Message    string
}

// ParseError inspects database and driver errors and maps them to a
// coded API error. Unknown errors become 500s without leaking detail.
func ParseError(err error) *ParsedError {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &ParsedError{
			StatusCode: 404,
			ErrorCode:  ResourceNotFound,
			Message:    "The requested resource was not found",
		}
	}

	errMsg := strings.ToLower(err.Error())

	// Unique constraint violations (Postgres 23505 / sqlite "UNIQUE constraint failed")
	if strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint") {
		switch {
		case strings.Contains(errMsg, "idx_cities_name_postal"):
			return &ParsedError{
				StatusCode: 409,
				ErrorCode:  ResourceAlreadyExists,
				Message:    "A city with this name and postal code already exists",
			}
		case strings.Contains(errMsg, "idx_location_user_rating"):
			return &ParsedError{
				StatusCode: 409,
				ErrorCode:  ResourceConflict,
				Message:    "You have already rated this location",
			}
		case strings.Contains(errMsg, "email"):
			return &ParsedError{
				StatusCode: 409,
				ErrorCode:  AuthEmailAlreadyExists,
				Message:    "An account with this email already exists",
			}
		}
		return &ParsedError{
			StatusCode: 409,
			ErrorCode:  ResourceAlreadyExists,
			Message:    "The resource already exists",
		}
	}

	// Foreign key violations (Postgres 23503)
	if strings.Contains(errMsg, "foreign key") {
		return &ParsedError{
			StatusCode: 400,
			ErrorCode:  ValidationInvalidID,
			Message:    "A referenced resource does not exist",
		}
	}

	// Check constraint violations (Postgres 23514)
	if strings.Contains(errMsg, "check constraint") {
		if strings.Contains(errMsg, "rating") {
			return &ParsedError{
				StatusCode: 400,
				ErrorCode:  ReviewInvalidRating,
				Message:    "Rating must be between 1 and 5",
			}
		}
		return &ParsedError{
			StatusCode: 400,
			ErrorCode:  ValidationInvalidInput,
			Message:    "The input violates a data constraint",
		}
	}

	// Connection problems
	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "timeout") {
		return &ParsedError{
			StatusCode: 503,
			ErrorCode:  InternalDatabaseError,
			Message:    "The service is temporarily unavailable",
		}
	}

	return &ParsedError{
		StatusCode: 500,
		ErrorCode:  InternalServerError,
		Message:    "Something went wrong, please try again later",
	}
}
