package decisions

import (
	"fmt"
	"math"
	"strings"
)

// Comparison is how a measured value is tested against a threshold.
type Comparison int

const (
	Less Comparison = iota
	LessOrEqual
	Equal
	GreaterOrEqual
	Greater
	NotEqual
)

var comparisonNames = map[string]Comparison{
	"<": Less, "lt": Less, "less": Less,
	"<=": LessOrEqual, "le": LessOrEqual, "less_or_equal": LessOrEqual,
	"==": Equal, "=": Equal, "eq": Equal, "equal": Equal,
	">=": GreaterOrEqual, "ge": GreaterOrEqual, "greater_or_equal": GreaterOrEqual,
	">": Greater, "gt": Greater, "greater": Greater,
	"!=": NotEqual, "ne": NotEqual, "not_equal": NotEqual,
}

// ParseComparison accepts symbols (<, <=, ==, >=, >, !=) and their names.
// An empty string yields def.
func ParseComparison(s string, def Comparison) (Comparison, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def, nil
	}
	c, ok := comparisonNames[s]
	if !ok {
		return def, fmt.Errorf("unknown comparison %q", s)
	}
	return c, nil
}

func (c Comparison) String() string {
	switch c {
	case Less:
		return "<"
	case LessOrEqual:
		return "<="
	case Equal:
		return "=="
	case GreaterOrEqual:
		return ">="
	case Greater:
		return ">"
	case NotEqual:
		return "!="
	}
	return fmt.Sprintf("Comparison(%d)", int(c))
}

// Band compares v against a threshold widened to the closed band [lo, hi].
// Values inside the band count as equal.
func (c Comparison) Band(v, lo, hi float64) bool {
	switch c {
	case Less:
		return v < lo
	case LessOrEqual:
		return v <= hi
	case Equal:
		return v >= lo && v <= hi
	case GreaterOrEqual:
		return v >= lo
	case Greater:
		return v > hi
	case NotEqual:
		return v < lo || v > hi
	}
	return false
}

// Floats compares v against t with an absolute tolerance.
func (c Comparison) Floats(v, t, tol float64) bool {
	tol = math.Abs(tol)
	return c.Band(v, t-tol, t+tol)
}

func (c Comparison) Ints(v, t int) bool {
	return c.Band(float64(v), float64(t), float64(t))
}
