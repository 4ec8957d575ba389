package apperror

import (
	"errors"
	"io"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("snippet", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("title", "Title is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "DuplicateUsername wraps ErrConflict",
			err:       DuplicateUsername("demo"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "InvalidCredentials wraps ErrUnauthorized",
			err:       InvalidCredentials(),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "MalformedImport wraps ErrMalformedImport",
			err:       MalformedImport("Invalid format"),
			target:    ErrMalformedImport,
			wantMatch: true,
		},
		{
			name:      "Network wraps ErrNetwork",
			err:       Network(io.ErrUnexpectedEOF),
			target:    ErrNetwork,
			wantMatch: true,
		},
		{
			name:      "Network keeps the cause",
			err:       Network(io.ErrUnexpectedEOF),
			target:    io.ErrUnexpectedEOF,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("snippet", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "InvalidCredentials does NOT match ErrConflict",
			err:       InvalidCredentials(),
			target:    ErrConflict,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("snippet", "abc123"),
			wantMessage: "snippet not found with id abc123",
		},
		{
			name:        "DuplicateUsername uses the API text",
			err:         DuplicateUsername("demo"),
			wantMessage: "Username already exists",
		},
		{
			name:        "InvalidCredentials uses the API text",
			err:         InvalidCredentials(),
			wantMessage: "Invalid credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestNetworkMessageIsGeneric(t *testing.T) {
	err := Network(errors.New("dial tcp 127.0.0.1:4000: connect: connection refused"))

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("errors.As(%v) found no *AppError", err)
	}
	if appErr.Message != "Network error, please try again" {
		t.Errorf("Message = %q", appErr.Message)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("code", "Code cannot be empty")

	if err.Field != "code" {
		t.Errorf("Field = %q, want %q", err.Field, "code")
	}
}
