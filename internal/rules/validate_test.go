package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentresults/internal/model"
)

func validForm() Form {
	return Form{RollNo: "1024", Name: "John Smith", Section: "a", Marks: "72", Grade: "B+"}
}

func TestValidateAcceptsValidForm(t *testing.T) {
	assert.Empty(t, Validate(validForm()))
}

func TestValidateSingleViolations(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Form)
		field string
	}{
		{"roll number with letter", func(f *Form) { f.RollNo = "12a" }, "rollNo"},
		{"missing roll number", func(f *Form) { f.RollNo = "  " }, "rollNo"},
		{"name with digit", func(f *Form) { f.Name = "John3" }, "name"},
		{"name too short", func(f *Form) { f.Name = "J" }, "name"},
		{"marks above range", func(f *Form) { f.Marks = "101" }, "marks"},
		{"marks below range", func(f *Form) { f.Marks = "-1" }, "marks"},
		{"marks not numeric", func(f *Form) { f.Marks = "abc" }, "marks"},
		{"missing marks", func(f *Form) { f.Marks = "" }, "marks"},
		{"empty section", func(f *Form) { f.Section = "" }, "section"},
		{"long section", func(f *Form) { f.Section = "ABC" }, "section"},
		{"empty grade", func(f *Form) { f.Grade = "" }, "grade"},
		{"long grade", func(f *Form) { f.Grade = "ABCD" }, "grade"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.edit(&f)
			errs := Validate(f)
			assert.Len(t, errs, 1)
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestValidateReportsAllViolations(t *testing.T) {
	errs := Validate(Form{RollNo: "12a", Name: "John3", Section: "", Marks: "101", Grade: ""})

	assert.Len(t, errs, 5)
	assert.Equal(t, "Roll Number must contain only numbers", errs["rollNo"])
	assert.Equal(t, "Name can only contain letters and spaces", errs["name"])
	assert.Equal(t, "Section is required", errs["section"])
	assert.Equal(t, "Marks must be between 0 and 100", errs["marks"])
	assert.Equal(t, "Grade is required", errs["grade"])
}

func TestAutoGrade(t *testing.T) {
	f := validForm()
	f.Grade = ""
	assert.Equal(t, "B+", AutoGrade(f).Grade)

	f.Grade = "a"
	assert.Equal(t, "a", AutoGrade(f).Grade, "typed grade overrides derived grade")

	f.Grade = ""
	f.Marks = "150"
	assert.Equal(t, "", AutoGrade(f).Grade)
}

func TestCheckNormalizes(t *testing.T) {
	data, err := Check(Form{RollNo: " 7 ", Name: " Ada Lovelace ", Section: "b ", Marks: "0", Grade: ""})
	require.NoError(t, err)

	assert.Equal(t, model.StudentData{RollNo: "7", Name: "Ada Lovelace", Section: "B", Marks: 0, Grade: "F"}, data)
}

func TestCheckValidationError(t *testing.T) {
	_, err := Check(Form{RollNo: "x"})
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindValidation))

	var e *model.Error
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Fields, "rollNo")
	assert.Contains(t, e.Fields, "name")
	assert.Contains(t, e.Fields, "section")
	assert.Contains(t, e.Fields, "marks")
}

func TestFormFromRecord(t *testing.T) {
	f := FormFromRecord(model.StudentData{RollNo: "1", Name: "Al", Section: "A", Marks: 88.5, Grade: "A"})
	assert.Equal(t, "88.5", f.Marks)
	assert.Empty(t, Validate(f))
}
