// Package normalize rewrites loosely phrased math commands into canonical
// algebraic text. Every rewrite is a named entry in an ordered rule table
// (rules.go); the functions here only fix the order in which tables run.
//
// All variants are deterministic and idempotent on their own output.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fold lower-cases s and collapses runs of whitespace.
func Fold(s string) string {
	// A Caser keeps state between calls, so each call gets its own.
	return collapse(cases.Lower(language.Und).String(s))
}

func collapse(s string) string { return strings.Join(strings.Fields(s), " ") }

// Arithmetic is the generic normalizer:
//
//  1. the first matching compound phrase operator ("sum of", "divide ... by", "root of", ...)
//  2. the operator word table
//  3. "<number> and <number>" reads as addition when no other operator is present
//  4. missing closing parentheses are appended
func Arithmetic(s string) string {
	s = applyAll(Filler, Fold(s))
	s = applyPhrase(s)
	s = applyAll(Substitutions, s)
	s = resolveAnd(s)
	return RepairParens(collapse(s))
}

func applyPhrase(s string) string {
	for _, p := range PhraseOperators {
		if p.Trigger.MatchString(s) {
			return applyAll(p.Rewrites, s) + p.Suffix
		}
	}
	return s
}

func resolveAnd(s string) string {
	if !numberAndNumber.MatchString(s) || strings.ContainsAny(s, "-*/") {
		return s
	}
	return andWord.Apply(s)
}

// Calculus strips the differentiate/integrate phrasing and maps calculus
// spellings (sine, "e power", x^2) before the operator word table.
func Calculus(s string) string {
	s = applyAll(CalculusTriggers, Fold(s))
	if rootPhrase.Trigger.MatchString(s) {
		s = applyAll(rootPhrase.Rewrites, s) + rootPhrase.Suffix
	}
	s = bareOf.Apply(s)
	s = applyAll(CalculusSpellings, s)
	s = applyAll(Substitutions, s)
	return RepairParens(collapse(s))
}

// Equation strips the solve/find phrasing, turns "equals" into "=" and then
// runs the generic normalizer.
func Equation(s string) string {
	s = applyAll(EquationTriggers, Fold(s))
	s = applyAll(EquationEquals, s)
	return Arithmetic(s)
}

// Graph is the reduced table used for plot commands: trigger word removal,
// trig spellings and power words only.
func Graph(s string) string {
	return RepairParens(collapse(applyAll(GraphRules, Fold(s))))
}

// RepairParens appends one ")" for every "(" left unclosed.
func RepairParens(s string) string {
	if missing := strings.Count(s, "(") - strings.Count(s, ")"); missing > 0 {
		return s + strings.Repeat(")", missing)
	}
	return s
}
