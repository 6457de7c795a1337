package rules

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"studentresults/internal/model"
)

const (
	maxSectionLen = 2
	maxGradeLen   = 3
	minNameLen    = 2
)

var (
	digitsOnly     = regexp.MustCompile(`^[0-9]+$`)
	lettersPattern = regexp.MustCompile(`^[a-zA-Z\s]+$`)
)

// Form is raw record input as typed by a user. Marks stays a string so that
// non-numeric input can be reported instead of rejected at decode time.
type Form struct {
	RollNo  string `json:"rollNo"`
	Name    string `json:"name"`
	Section string `json:"section"`
	Marks   string `json:"marks"`
	Grade   string `json:"grade"`
}

// FieldErrors maps a form field to its error message. Empty means valid.
type FieldErrors map[string]string

// AutoGrade fills a blank grade from marks when marks parse and are in range.
// A grade the caller typed is left alone.
func AutoGrade(f Form) Form {
	if strings.TrimSpace(f.Grade) != "" {
		return f
	}
	if m, ok := parseMarks(f.Marks); ok && m >= 0 && m <= 100 {
		f.Grade = DeriveGrade(m)
	}
	return f
}

// Validate checks every field and reports all violations at once.
func Validate(f Form) FieldErrors {
	errs := FieldErrors{}

	rollNo := strings.TrimSpace(f.RollNo)
	switch {
	case rollNo == "":
		errs["rollNo"] = "Roll Number is required"
	case !digitsOnly.MatchString(rollNo):
		errs["rollNo"] = "Roll Number must contain only numbers"
	}

	name := strings.TrimSpace(f.Name)
	switch {
	case name == "":
		errs["name"] = "Name is required"
	case !lettersOnly(name):
		errs["name"] = "Name can only contain letters and spaces"
	case utf8.RuneCountInString(name) < minNameLen:
		errs["name"] = "Name must be at least 2 characters"
	}

	section := strings.TrimSpace(f.Section)
	switch {
	case section == "":
		errs["section"] = "Section is required"
	case utf8.RuneCountInString(section) > maxSectionLen:
		errs["section"] = "Section must be at most 2 characters"
	}

	marks := strings.TrimSpace(f.Marks)
	if marks == "" {
		errs["marks"] = "Marks are required"
	} else if m, ok := parseMarks(marks); !ok || m < 0 || m > 100 {
		errs["marks"] = "Marks must be between 0 and 100"
	}

	grade := strings.TrimSpace(f.Grade)
	switch {
	case grade == "":
		errs["grade"] = "Grade is required"
	case utf8.RuneCountInString(grade) > maxGradeLen:
		errs["grade"] = "Grade must be at most 3 characters"
	}

	return errs
}

// Check auto-fills the grade, validates and normalizes a form into record data.
func Check(f Form) (model.StudentData, error) {
	f = AutoGrade(f)
	if errs := Validate(f); len(errs) > 0 {
		return model.StudentData{}, &model.Error{Kind: model.KindValidation, Op: "validate", Fields: errs}
	}
	m, _ := parseMarks(f.Marks)
	return model.StudentData{
		RollNo:  strings.TrimSpace(f.RollNo),
		Name:    strings.TrimSpace(f.Name),
		Section: strings.ToUpper(strings.TrimSpace(f.Section)),
		Marks:   m,
		Grade:   strings.ToUpper(strings.TrimSpace(f.Grade)),
	}, nil
}

// FormFromRecord renders stored data back into form input, for edits.
func FormFromRecord(d model.StudentData) Form {
	return Form{
		RollNo:  d.RollNo,
		Name:    d.Name,
		Section: d.Section,
		Marks:   strconv.FormatFloat(d.Marks, 'f', -1, 64),
		Grade:   d.Grade,
	}
}

func lettersOnly(s string) bool {
	return lettersPattern.MatchString(s)
}

func parseMarks(s string) (float64, bool) {
	m, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(m) || math.IsInf(m, 0) {
		return 0, false
	}
	return m, true
}
