package checker

import "errors"

var (
	// ErrInsufficientDocuments is returned when analyze is called with
	// fewer than two documents.
	ErrInsufficientDocuments = errors.New("at least 2 documents are required")

	// ErrTooManyDocuments is returned when analyze is called with more
	// documents than one analysis accepts.
	ErrTooManyDocuments = errors.New("too many documents for one analysis")

	// ErrNoAnalysisYet is returned when a report is requested before any
	// analysis has run in this session.
	ErrNoAnalysisYet = errors.New("no analysis has been run yet")
)
