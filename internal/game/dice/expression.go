package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Expression is a parsed "NdS+M" dice expression.
//
// Invariant: Count >= 1 and Sides >= 1 after a successful Parse.
type Expression struct {
	Raw      string
	Count    int
	Sides    int
	Modifier int
}

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)
var flatPattern = regexp.MustCompile(`^[+-]?\d+$`)

// Parse accepts "d6", "2d6", "1d8+2", "3d4-1" and flat numbers such as "3".
//
// Postcondition: returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	s := strings.ToLower(strings.TrimSpace(expr))
	if s == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	if flatPattern.MatchString(s) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid flat value %q: %w", expr, err)
		}
		return Expression{Raw: expr, Count: 1, Sides: 1, Modifier: n - 1}, nil
	}
	m := exprPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", expr)
	}
	count := 1
	if m[1] != "" {
		count, _ = strconv.Atoi(m[1])
	}
	sides, _ := strconv.Atoi(m[2])
	if count < 1 || sides < 1 {
		return Expression{}, fmt.Errorf("dice: count and sides must be >= 1 in %q", expr)
	}
	mod := 0
	if m[3] != "" {
		mod, _ = strconv.Atoi(m[3])
	}
	return Expression{Raw: expr, Count: count, Sides: sides, Modifier: mod}, nil
}

// MustParse parses expr and panics on error.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic(err.Error())
	}
	return e
}

// Roll evaluates e against src.
//
// Postcondition: Min() <= result <= Max().
func (e Expression) Roll(src Source) int {
	total := e.Modifier
	for range e.Count {
		total += src.Intn(e.Sides) + 1
	}
	return total
}

// Min returns the lowest possible total.
func (e Expression) Min() int { return e.Count + e.Modifier }

// Max returns the highest possible total.
func (e Expression) Max() int { return e.Count*e.Sides + e.Modifier }

// Average returns the expected total.
func (e Expression) Average() float64 {
	return float64(e.Count)*float64(e.Sides+1)/2 + float64(e.Modifier)
}
