package noticehtml

import (
	"regexp"
	"strings"
)

// SummaryMarker labels a table's total row.
const SummaryMarker = "합계"

// TokenType is the coarse kind of a token.
type TokenType int

const (
	Text TokenType = iota
	Number
	Code
	TimeRange
	Quantity
	Summary

	numTokenTypes
)

func (t TokenType) String() string {
	switch t {
	case Number:
		return "number"
	case Code:
		return "code"
	case TimeRange:
		return "time_range"
	case Quantity:
		return "quantity"
	case Summary:
		return "summary"
	default:
		return "text"
	}
}

// signal reports whether t is a data-like type.
func (t TokenType) signal() bool {
	switch t {
	case Number, Code, TimeRange, Quantity:
		return true
	}
	return false
}

var quantityUnits = []string{"명", "개", "원", "건", "회", "석", "시간", "학점", "부", "장", "권", "매"}

var (
	timeRangeRe = regexp.MustCompile(`^[\[(]?\d{1,2}:\d{2}[~～\-–]\d{1,2}:\d{2}[\])]?$`)
	quantityRe  = regexp.MustCompile(`^(?:\d{1,3}(?:,\d{3})+(?:` + strings.Join(quantityUnits, "|") + `)?|\d+(?:` + strings.Join(quantityUnits, "|") + `))$`)
	numberRe    = regexp.MustCompile(`^\d+$`)
	codeRe      = regexp.MustCompile(`^[A-Z0-9-]+$`)
)

// Classify returns the type of a token's text.
func Classify(s string) TokenType {
	return classifyStrict(NormalizeStrict(s))
}

func classifyStrict(s string) TokenType {
	switch {
	case s == SummaryMarker:
		return Summary
	case timeRangeRe.MatchString(s):
		return TimeRange
	case quantityRe.MatchString(s):
		return Quantity
	case numberRe.MatchString(s):
		return Number
	case codeRe.MatchString(s) && strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") && strings.ContainsAny(s, "0123456789"):
		return Code
	}
	return Text
}
