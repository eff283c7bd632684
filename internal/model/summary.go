package model

import "github.com/nao1215/tagcheck/internal/validator"

// Summary aggregates the outcome of a batch of checks.
type Summary struct {
	// Total is the number of documents processed, failures included.
	Total int `json:"total"`

	// Valid is the number of balanced documents.
	Valid int `json:"valid"`

	// Invalid is the number of documents with a tag balance problem.
	Invalid int `json:"invalid"`

	// Failed is the number of documents that could not be checked.
	Failed int `json:"failed"`

	// ByKind counts invalid documents per problem kind.
	ByKind map[validator.Kind]int `json:"by_kind,omitempty"`
}

// NewSummary builds a Summary over reports. Nil entries are skipped.
func NewSummary(reports []*CheckReport) *Summary {
	s := &Summary{ByKind: make(map[validator.Kind]int)}
	for _, r := range reports {
		s.Add(r)
	}
	return s
}

// Add counts r.
func (s *Summary) Add(r *CheckReport) {
	if r == nil {
		return
	}
	if s.ByKind == nil {
		s.ByKind = make(map[validator.Kind]int)
	}

	s.Total++
	switch r.Status() {
	case StatusFailed:
		s.Failed++
	case StatusValid:
		s.Valid++
	default:
		s.Invalid++
		s.ByKind[r.Result.Kind]++
	}
}

// Checked returns the number of documents that were validated.
func (s *Summary) Checked() int {
	return s.Valid + s.Invalid
}

// Correct returns the number of documents without a problem.
func (s *Summary) Correct() int {
	return s.Valid
}

// ErrorRate returns the percentage of checked documents that are invalid.
// It is 0 when nothing was checked.
func (s *Summary) ErrorRate() float64 {
	checked := s.Checked()
	if checked == 0 {
		return 0
	}
	return float64(s.Invalid) / float64(checked) * 100
}

// HasProblems reports whether any document was invalid or failed.
func (s *Summary) HasProblems() bool {
	return s.Invalid > 0 || s.Failed > 0
}
