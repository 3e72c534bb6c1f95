package models

// DuplicateGroup collects the conflicting result rows recorded for the
// same student + subject + exam.
type DuplicateGroup struct {
	StudentID  string          `json:"student_id"`
	SubjectID  string          `json:"subject_id"`
	ExamID     string          `json:"exam_id"`
	Candidates []SubjectResult `json:"candidates"`
}

// DiscardedDuplicate is a non-canonical row slated for removal.
// PossibleLegitimateDuplicate is set when its marks match the canonical
// record exactly, which usually indicates a double-entry rather than a
// correction.
type DiscardedDuplicate struct {
	SubjectResult
	PossibleLegitimateDuplicate bool `json:"possible_legitimate_duplicate"`
}

// DuplicateResolution is the outcome of resolving one duplicate group.
type DuplicateResolution struct {
	Canonical SubjectResult        `json:"canonical"`
	Discarded []DiscardedDuplicate `json:"discarded"`
}

// AmbiguousGroup is a duplicate group that could not be resolved because
// two or more candidates tie on updated_at while disagreeing on marks.
// It is surfaced verbatim for manual resolution.
type AmbiguousGroup struct {
	DuplicateGroup
	Reason string `json:"reason"`
}

// DuplicateReport summarises a duplicate scan across an exam.
type DuplicateReport struct {
	ExamID    string                `json:"exam_id"`
	Resolved  []DuplicateResolution `json:"resolved"`
	Ambiguous []AmbiguousGroup      `json:"ambiguous"`
}

// DuplicateCleanup summarises an applied duplicate resolution.
type DuplicateCleanup struct {
	ExamID        string           `json:"exam_id"`
	RemovedCount  int              `json:"removed_count"`
	FlaggedCount  int              `json:"flagged_count"`
	AmbiguousLeft []AmbiguousGroup `json:"ambiguous_left,omitempty"`
	RemovedIDs    []string         `json:"removed_ids,omitempty"`
	CanonicalKept int              `json:"canonical_kept"`
}
