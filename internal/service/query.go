package service

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"studentresults/internal/model"
	"studentresults/internal/rules"
)

// ListQuery narrows and orders a record listing. Zero values disable each part.
type ListQuery struct {
	Search    string
	Section   string
	Grade     string
	SortBy    string
	SortOrder string
}

// Summary describes a set of records at a glance.
type Summary struct {
	Total        int     `json:"total"`
	AverageMarks float64 `json:"averageMarks"`
	Passed       int     `json:"passed"`
	Failed       int     `json:"failed"`
}

var sortFields = map[string]func(a, b model.StudentRecord) int{
	"id":      func(a, b model.StudentRecord) int { return compareInt(a.ID, b.ID) },
	"rollNo":  func(a, b model.StudentRecord) int { return compareFold(a.RollNo, b.RollNo) },
	"name":    func(a, b model.StudentRecord) int { return compareFold(a.Name, b.Name) },
	"section": func(a, b model.StudentRecord) int { return compareFold(a.Section, b.Section) },
	"marks":   func(a, b model.StudentRecord) int { return compareFloat(a.Marks, b.Marks) },
	"grade":   func(a, b model.StudentRecord) int { return compareFold(a.Grade, b.Grade) },
}

// IsSortField reports whether name can be used as ListQuery.SortBy.
func IsSortField(name string) bool {
	_, ok := sortFields[name]
	return ok
}

// ApplyQuery returns the matching records in the requested order. The input
// slice is not modified.
func ApplyQuery(records []model.StudentRecord, q ListQuery) []model.StudentRecord {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]model.StudentRecord, 0, len(records))

	for _, r := range records {
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Name), search) &&
			!strings.Contains(r.RollNo, search) &&
			!strings.Contains(strconv.Itoa(r.ID), search) {
			continue
		}
		if !matchesFilter(q.Section, r.Section) || !matchesFilter(q.Grade, r.Grade) {
			continue
		}
		out = append(out, r)
	}

	cmp, ok := sortFields[q.SortBy]
	if !ok {
		return out
	}
	desc := strings.EqualFold(q.SortOrder, "desc")
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return cmp(out[i], out[j]) > 0
		}
		return cmp(out[i], out[j]) < 0
	})
	return out
}

// Summarize counts records and averages their marks to one decimal place.
func Summarize(records []model.StudentRecord) Summary {
	s := Summary{Total: len(records)}
	if s.Total == 0 {
		return s
	}

	var sum float64
	for _, r := range records {
		sum += r.Marks
		if rules.IsPassing(r.Marks) {
			s.Passed++
		}
	}
	s.Failed = s.Total - s.Passed
	s.AverageMarks = math.Round(sum/float64(s.Total)*10) / 10
	return s
}

func matchesFilter(filter, value string) bool {
	return filter == "" || strings.EqualFold(filter, "all") || filter == value
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
