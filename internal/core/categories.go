package core

// Categories holds the fixed, ordered category names for each type.
// Expense names also key the budget map.
type Categories struct {
	Expense []string
	Income  []string
}

// DefaultCategories returns the built-in category sets.
func DefaultCategories() Categories {
	return Categories{
		Expense: []string{"Food", "Transport", "Utilities", "Entertainment", "Housing", "Healthcare", "Other"},
		Income:  []string{"Salary", "Bonus", "Freelance", "Investment", "Gift"},
	}
}

// For returns a copy of the set for t, nil for an unknown type.
func (c Categories) For(t Type) []string {
	switch t {
	case Expense:
		return append([]string(nil), c.Expense...)
	case Income:
		return append([]string(nil), c.Income...)
	}
	return nil
}

// Allows reports whether name belongs to the set for t.
func (c Categories) Allows(t Type, name string) bool {
	var set []string
	switch t {
	case Expense:
		set = c.Expense
	case Income:
		set = c.Income
	}
	for _, v := range set {
		if v == name {
			return true
		}
	}
	return false
}
