package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL004 - Missing column: Required column is missing from the file
//	         Action: Check the header row against the accepted column names
//	         Patterns: "missing required column"
//
//	VAL007 - Duplicate name: Knowledge point names must be unique
//	         Action: Rename or remove the duplicate row named in the error
//	         Patterns: "duplicate knowledge point name"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the maximum size limit
//	          Action: Split the file into smaller files
//	          Patterns: "file too large", "request body too large"
//
//	FILE002 - Invalid CSV: File is not a valid CSV
//	          Action: Ensure the file is comma-separated text
//	          Patterns: "invalid csv"
//
//	FILE003 - Encoding error: File uses an unsupported text encoding
//	          Action: Save the file as UTF-8 or Big5
//	          Patterns: "encoding error", "unsupported encoding"
//
//	FILE004 - No file: No file was provided
//	          Action: Attach a CSV or Excel file
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The file has no header row
//	          Action: Add a header row naming the columns
//	          Patterns: "empty file"
//
//	FILE006 - Not found: The file does not exist
//	          Action: Check the file path
//	          Patterns: "no such file or directory", "file does not exist"
//
//	FILE007 - Workbook error: The Excel workbook could not be opened
//	          Action: Re-save the workbook as .xlsx, or export it to CSV
//	          Patterns: "open workbook", "read sheet"
//
//	FILE008 - No pairs: No knowledge point / prerequisite file pair found
//	          Action: Name files knowledge_points_<TAG>.csv and Prerequisite_<TAG>.csv
//	          Patterns: "no file pairs found"
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Alias file: The column alias file is invalid
//	         Action: Check the alias file's field names and YAML syntax
//	         Patterns: "alias file"
//
// # History Errors (DB004-DB006)
//
//	DB004 - Connection refused: Unable to connect to the history database
//	DB005 - Connection reset: History database connection was interrupted
//	DB006 - Timeout: Operation timed out
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled: Patterns: "context canceled"
//	REQ002 - Request timeout: Patterns: "context deadline exceeded"
//	REQ003 - Server busy: Patterns: "too many concurrent conversions"
//	REQ004 - Bad limit: Patterns: "invalid limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Validation Errors
	// =========================================================================
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "Required column is missing from the file",
			Action:  "Check the header row against the accepted column names",
			Code:    "VAL004",
		},
	},
	{
		pattern: "duplicate knowledge point name",
		msg: UserMessage{
			Message: "Knowledge point names must be unique",
			Action:  "Rename or remove the duplicate row named in the error",
			Code:    "VAL007",
		},
	},

	// =========================================================================
	// File Errors
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated text",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File uses an unsupported text encoding",
			Action:  "Save the file as UTF-8 or Big5",
			Code:    "FILE003",
		},
	},
	{
		pattern: "unsupported encoding",
		msg: UserMessage{
			Message: "File uses an unsupported text encoding",
			Action:  "Save the file as UTF-8 or Big5",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was provided",
			Action:  "Attach a CSV or Excel file",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file has no header row",
			Action:  "Add a header row naming the columns",
			Code:    "FILE005",
		},
	},
	{
		pattern: "no such file or directory",
		msg: UserMessage{
			Message: "The file does not exist",
			Action:  "Check the file path",
			Code:    "FILE006",
		},
	},
	{
		pattern: "file does not exist",
		msg: UserMessage{
			Message: "The file does not exist",
			Action:  "Check the file path",
			Code:    "FILE006",
		},
	},
	{
		pattern: "open workbook",
		msg: UserMessage{
			Message: "The Excel workbook could not be opened",
			Action:  "Re-save the workbook as .xlsx, or export it to CSV",
			Code:    "FILE007",
		},
	},
	{
		pattern: "read sheet",
		msg: UserMessage{
			Message: "The Excel workbook could not be opened",
			Action:  "Re-save the workbook as .xlsx, or export it to CSV",
			Code:    "FILE007",
		},
	},
	{
		pattern: "no file pairs found",
		msg: UserMessage{
			Message: "No knowledge point / prerequisite file pair found",
			Action:  "Name files knowledge_points_<TAG>.csv and Prerequisite_<TAG>.csv",
			Code:    "FILE008",
		},
	},

	// =========================================================================
	// Configuration Errors
	// =========================================================================
	{
		pattern: "alias file",
		msg: UserMessage{
			Message: "The column alias file is invalid",
			Action:  "Check the alias file's field names and YAML syntax",
			Code:    "CFG001",
		},
	},

	// =========================================================================
	// History Database Errors
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the history database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "History database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},

	// =========================================================================
	// Request Errors
	// =========================================================================
	{
		pattern: "invalid limit",
		msg: UserMessage{
			Message: "The limit parameter is not a number",
			Action:  "Pass a positive integer, for example ?limit=20",
			Code:    "REQ004",
		},
	},
	{
		pattern: "too many concurrent conversions",
		msg: UserMessage{
			Message: "The server is busy converting other files",
			Action:  "Please try again in a few seconds",
			Code:    "REQ003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or raise CONVERT_TIMEOUT",
			Code:    "REQ002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := &DuplicateNameError{Name: "函數", Row: 3}
//	msg := MapError(err)
//	// msg.Code == "VAL007"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
