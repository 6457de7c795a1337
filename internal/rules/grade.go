package rules

// PassMark is the lowest passing score.
const PassMark = 40

// Severity is the display weight of a performance tier.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityNeutral Severity = "neutral"
	SeverityCaution Severity = "caution"
	SeverityDanger  Severity = "danger"
)

// Tier describes how a score reads to a student.
type Tier struct {
	Label    string   `json:"label"`
	Severity Severity `json:"severity"`
}

type gradeBand struct {
	min   float64
	grade string
}

type tierBand struct {
	min  float64
	tier Tier
}

// Bands are checked top-down, first match wins.
var gradeBands = []gradeBand{
	{90, "A+"},
	{80, "A"},
	{70, "B+"},
	{60, "B"},
	{50, "C"},
	{40, "D"},
}

var tierBands = []tierBand{
	{90, Tier{"Outstanding", SeveritySuccess}},
	{80, Tier{"Excellent", SeverityInfo}},
	{70, Tier{"Good", SeverityWarning}},
	{60, Tier{"Satisfactory", SeverityNeutral}},
	{40, Tier{"Needs Improvement", SeverityCaution}},
}

var lowestTier = Tier{"Requires Attention", SeverityDanger}

// DeriveGrade maps marks in [0,100] to a letter grade.
func DeriveGrade(marks float64) string {
	for _, b := range gradeBands {
		if marks >= b.min {
			return b.grade
		}
	}
	return "F"
}

// IsPassing reports whether marks reach the pass mark.
func IsPassing(marks float64) bool {
	return marks >= PassMark
}

// PerformanceTier maps marks to a display tier. Tier boundaries differ from
// grade boundaries: 65 marks is grade "B" but tier "Satisfactory".
func PerformanceTier(marks float64) Tier {
	for _, b := range tierBands {
		if marks >= b.min {
			return b.tier
		}
	}
	return lowestTier
}
