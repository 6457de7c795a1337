package model

// StudentRecord is the canonical exam record exchanged with the remote API and
// stored in the local cache.
type StudentRecord struct {
	ID      int     `json:"id"`
	RollNo  string  `json:"rollNo"`
	Name    string  `json:"name"`
	Section string  `json:"section"`
	Marks   float64 `json:"marks"`
	Grade   string  `json:"grade"`
}

// StudentData is a record without its identifier, used for create and update.
type StudentData struct {
	RollNo  string  `json:"rollNo"`
	Name    string  `json:"name"`
	Section string  `json:"section"`
	Marks   float64 `json:"marks"`
	Grade   string  `json:"grade"`
}

// WithID stamps data with an identifier.
func (d StudentData) WithID(id int) StudentRecord {
	return StudentRecord{
		ID:      id,
		RollNo:  d.RollNo,
		Name:    d.Name,
		Section: d.Section,
		Marks:   d.Marks,
		Grade:   d.Grade,
	}
}

// Data strips the identifier.
func (r StudentRecord) Data() StudentData {
	return StudentData{
		RollNo:  r.RollNo,
		Name:    r.Name,
		Section: r.Section,
		Marks:   r.Marks,
		Grade:   r.Grade,
	}
}

// Source names the store that served an operation.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)
