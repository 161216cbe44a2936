package core

// # Error Codes Reference
//
// Failures surfaced to operators (CLI exit output, HTTP error bodies) carry a
// short code so a report can be matched to a cause quickly.
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Sheet not configured
//	         Action: Set SHEET_ID to the workbook path or sheet id
//	         Patterns: "sheet not configured"
//
//	SRC002 - Worksheet missing: the named tab does not exist
//	         Action: Check WORKSHEET_NAME against the tabs in the workbook
//	         Patterns: "worksheet not found"
//
//	SRC003 - Source file missing
//	         Action: Check that SHEET_ID points at an existing file
//	         Patterns: "no such file or directory"
//
//	SRC004 - Source unavailable: the sheet could not be opened or read
//	         Action: Check access to the sheet and try again
//	         Patterns: "source unavailable"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Run in progress
//	         Action: Wait for the current run to finish
//	         Patterns: "run is already in progress"
//
//	RUN002 - Run cancelled
//	         Patterns: "context canceled"
//
//	RUN003 - Run timed out
//	         Action: Raise RUN_TIMEOUT or split the sheet
//	         Patterns: "context deadline exceeded"
//
//	RUN004 - Run not found
//	         Patterns: "run not found"
//
// # Write-back Errors (WRT001-WRT099)
//
//	WRT001 - Markers not written: staged orders may be processed again
//	         Action: Check write access to the sheet and rerun
//	         Patterns: "flush markers"
//
// # Other
//
//	CFG001 - Invalid configuration ("invalid configuration")
//	DB004  - Database connection refused ("connection refused")
//	ERR000 - Unknown error; check the logs for the technical error
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRunNotFound is returned when a run id is not in the history.
var ErrRunNotFound = errors.New("run not found")

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Source
	{
		pattern: "sheet not configured",
		msg: UserMessage{
			Message: "No sheet is configured",
			Action:  "Set SHEET_ID to the workbook path or sheet id",
			Code:    "SRC001",
		},
	},
	{
		pattern: "worksheet not found",
		msg: UserMessage{
			Message: "The worksheet does not exist",
			Action:  "Check WORKSHEET_NAME against the tabs in the workbook",
			Code:    "SRC002",
		},
	},
	{
		pattern: "no such file or directory",
		msg: UserMessage{
			Message: "The sheet file does not exist",
			Action:  "Check that SHEET_ID points at an existing file",
			Code:    "SRC003",
		},
	},

	// Run
	{
		pattern: "run is already in progress",
		msg: UserMessage{
			Message: "A run is already in progress",
			Action:  "Wait for the current run to finish",
			Code:    "RUN001",
		},
	},
	{
		pattern: "run not found",
		msg: UserMessage{
			Message: "Run not found",
			Action:  "Only recent runs are kept",
			Code:    "RUN004",
		},
	},

	// Write-back comes before the generic source and connection patterns:
	// a failed flush is the more important fact.
	{
		pattern: "flush markers",
		msg: UserMessage{
			Message: "Processed markers were not written",
			Action:  "Check write access to the sheet and rerun",
			Code:    "WRT001",
		},
	},
	{
		pattern: "source unavailable",
		msg: UserMessage{
			Message: "The sheet could not be read",
			Action:  "Check access to the sheet and try again",
			Code:    "SRC004",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Run was cancelled",
			Action:  "Start a new run when ready",
			Code:    "RUN002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Run timed out",
			Action:  "Raise RUN_TIMEOUT or try again later",
			Code:    "RUN003",
		},
	},
	{
		pattern: "invalid configuration",
		msg: UserMessage{
			Message: "The configuration is invalid",
			Action:  "Fix the listed settings and restart",
			Code:    "CFG001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the logs",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Unknown
// errors map to ERR000; nil maps to the zero UserMessage.
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
