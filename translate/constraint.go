package translate

import "regexp"

// PostgreSQL reports unique violations with the detail
//
//	Key (<columns>)=(<values>) already exists.
//
// where <columns> is the comma separated index key list (index expressions
// such as lower(email) keep their parentheses) and <values> the rendered
// key values. The value part may be missing.
var uniqueDetail = regexp.MustCompile(
	`(?s)^Key \(([^()]+(?:\([^()]*\)[^()]*)*)\)(?:=\((.*)\))? already exists\.?$`,
)

// Constraint is the structured hint recovered from a unique violation detail.
type Constraint struct {
	Column   string
	Value    string
	HasValue bool
}

// ExtractConstraint parses a unique violation detail string. It reports false
// when detail does not have the expected shape.
func ExtractConstraint(detail string) (Constraint, bool) {
	m := uniqueDetail.FindStringSubmatchIndex(detail)
	if m == nil {
		return Constraint{}, false
	}
	c := Constraint{Column: detail[m[2]:m[3]]}
	if m[4] >= 0 {
		c.Value = detail[m[4]:m[5]]
		c.HasValue = true
	}
	return c, true
}
