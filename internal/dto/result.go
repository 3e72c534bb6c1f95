package dto

// EnterMarksRequest captures a single mark entry for one student,
// subject and exam.
type EnterMarksRequest struct {
	StudentID string  `json:"studentId" validate:"required"`
	SubjectID string  `json:"subjectId" validate:"required"`
	ExamID    string  `json:"examId" validate:"required"`
	Marks     float64 `json:"marks" validate:"min=0,max=100"`
}

// BulkEnterMarksRequest captures a batch of mark entries.
type BulkEnterMarksRequest struct {
	Results []EnterMarksRequest `json:"results" validate:"required,min=1,dive"`
}

// BulkEnterMarksResponse reports how many rows each batch touched.
type BulkEnterMarksResponse struct {
	Accepted int      `json:"accepted"`
	Rejected int      `json:"rejected"`
	Errors   []string `json:"errors,omitempty"`
}

// ResolveDuplicatesRequest triggers duplicate cleanup for one exam.
// When DryRun is set the resolution is computed but nothing is deleted.
type ResolveDuplicatesRequest struct {
	ExamID string `json:"examId" validate:"required"`
	DryRun bool   `json:"dryRun"`
}
