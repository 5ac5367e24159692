package employee

// Summary is the display projection attached to leave records.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Department  string `json:"department,omitempty"`
	Designation string `json:"designation,omitempty"`
	Resolved    bool   `json:"resolved"`
}

const placeholderIDLen = 8

// Placeholder labels an employee reference the directory could not resolve.
func Placeholder(id string) Summary {
	short := id
	if runes := []rune(id); len(runes) > placeholderIDLen {
		short = string(runes[:placeholderIDLen])
	}
	return Summary{
		ID:   id,
		Name: "Employee " + short,
	}
}

func summaryFromRow(r SummaryRow) Summary {
	return Summary{
		ID:          r.ID,
		Name:        r.FullName,
		Department:  r.Department,
		Designation: r.Designation,
		Resolved:    true,
	}
}
