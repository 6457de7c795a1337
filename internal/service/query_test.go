package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"studentresults/internal/model"
)

var classList = []model.StudentRecord{
	{ID: 1, RollNo: "101", Name: "alice", Section: "A", Marks: 91, Grade: "A+"},
	{ID: 2, RollNo: "102", Name: "Bob", Section: "B", Marks: 38, Grade: "F"},
	{ID: 3, RollNo: "203", Name: "Carol", Section: "A", Marks: 64.5, Grade: "B"},
	{ID: 12, RollNo: "204", Name: "Dan", Section: "B", Marks: 91, Grade: "A+"},
}

func ids(records []model.StudentRecord) []int {
	out := []int{}
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestApplyQuery(t *testing.T) {
	tests := []struct {
		name  string
		query ListQuery
		want  []int
	}{
		{"no query", ListQuery{}, []int{1, 2, 3, 12}},
		{"search by name ignores case", ListQuery{Search: "ALI"}, []int{1}},
		{"search by roll number", ListQuery{Search: "20"}, []int{3, 12}},
		{"search by id", ListQuery{Search: "12"}, []int{12}},
		{"section filter", ListQuery{Section: "A"}, []int{1, 3}},
		{"all sections", ListQuery{Section: "all"}, []int{1, 2, 3, 12}},
		{"grade filter", ListQuery{Grade: "A+"}, []int{1, 12}},
		{"sort by name", ListQuery{SortBy: "name"}, []int{1, 2, 3, 12}},
		{"sort by name desc", ListQuery{SortBy: "name", SortOrder: "desc"}, []int{12, 3, 2, 1}},
		{"sort by marks is stable", ListQuery{SortBy: "marks", SortOrder: "desc"}, []int{1, 12, 3, 2}},
		{"sort by id", ListQuery{SortBy: "id", SortOrder: "desc"}, []int{12, 3, 2, 1}},
		{"unknown sort field keeps order", ListQuery{SortBy: "age"}, []int{1, 2, 3, 12}},
		{"filter and sort", ListQuery{Section: "B", SortBy: "marks"}, []int{2, 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(ApplyQuery(classList, tt.query)))
		})
	}

	assert.Equal(t, []int{1, 2, 3, 12}, ids(classList), "input untouched")
}

func TestSummarize(t *testing.T) {
	s := Summarize(classList)
	assert.Equal(t, Summary{Total: 4, AverageMarks: 71.1, Passed: 3, Failed: 1}, s)

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestIsSortField(t *testing.T) {
	assert.True(t, IsSortField("rollNo"))
	assert.False(t, IsSortField("age"))
}
