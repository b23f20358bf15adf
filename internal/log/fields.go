// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRunID     = "run_id"
	FieldComponent = "component"
	FieldEvent     = "event"

	// Plan fields
	FieldIndex    = "index"
	FieldTitle    = "title"
	FieldStart    = "start"
	FieldEnd      = "end"
	FieldDecision = "decision"
	FieldOutcome  = "outcome"
	FieldReason   = "reason"
	FieldWait     = "wait"
	FieldDuration = "duration"

	// Path / URL fields
	FieldPath      = "path"
	FieldURL       = "url"
	FieldStreamURL = "stream_url"

	// Process fields
	FieldPID      = "pid"
	FieldExitCode = "exit_code"
)
