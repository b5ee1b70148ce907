package normalize

import (
	"regexp"
	"strings"
)

// Rule rewrites every match of Pattern with Replace.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace string
}

func (r Rule) Apply(s string) string { return r.Pattern.ReplaceAllString(s, r.Replace) }

// word builds a rule matching phrase on word boundaries.
func word(phrase, replace string) Rule {
	return Rule{
		Name:    phrase,
		Pattern: regexp.MustCompile(`\b` + strings.ReplaceAll(regexp.QuoteMeta(phrase), " ", `\s+`) + `\b`),
		Replace: replace,
	}
}

func literal(s, replace string) Rule {
	return Rule{Name: s, Pattern: regexp.MustCompile(regexp.QuoteMeta(s)), Replace: replace}
}

func applyAll(rules []Rule, s string) string {
	for _, r := range rules {
		s = r.Apply(s)
	}
	return s
}

// PhraseRule is a compound phrase that gives a connective ("and", "by") its
// operator meaning. When Trigger matches, Rewrites run in order and Suffix is
// appended.
type PhraseRule struct {
	Name     string
	Trigger  *regexp.Regexp
	Rewrites []Rule
	Suffix   string
}

// ============================================================
// Generic rule tables
// ============================================================

// PhraseOperators are tried in order; only the first whose trigger matches
// is applied.
var PhraseOperators = []PhraseRule{
	{
		Name:     "subtraction",
		Trigger:  regexp.MustCompile(`\b(subtraction|difference)\s+of\b`),
		Rewrites: []Rule{word("subtraction of", ""), word("difference of", ""), word("and", "-")},
	},
	{
		Name:     "product",
		Trigger:  regexp.MustCompile(`\b(product|multiplication)\s+of\b`),
		Rewrites: []Rule{word("product of", ""), word("multiplication of", ""), word("and", "*")},
	},
	{
		Name:     "division",
		Trigger:  regexp.MustCompile(`\bdivision\s+of\b`),
		Rewrites: []Rule{word("division of", ""), word("by", "/"), word("and", "/")},
	},
	{
		Name:     "divided by",
		Trigger:  regexp.MustCompile(`\bdivided\s+by\b`),
		Rewrites: []Rule{word("divided by", "/")},
	},
	{
		Name:     "divide by",
		Trigger:  regexp.MustCompile(`\bdivide\b.*\bby\b`),
		Rewrites: []Rule{word("divide", ""), word("by", "/")},
	},
	{
		Name:     "multiply by",
		Trigger:  regexp.MustCompile(`\bmultiply\b.*\bby\b`),
		Rewrites: []Rule{word("multiply", ""), word("by", "*")},
	},
	{
		Name:     "addition",
		Trigger:  regexp.MustCompile(`\b(addition|sum)\s+of\b`),
		Rewrites: []Rule{word("addition of", ""), word("sum of", ""), word("and", "+")},
	},
	rootPhrase,
}

var rootPhrase = PhraseRule{
	Name:     "square root",
	Trigger:  regexp.MustCompile(`\b(square\s+)?root\s+of\b`),
	Rewrites: []Rule{word("square root of", "sqrt("), word("root of", "sqrt(")},
	Suffix:   ")",
}

// Substitutions replace standalone operator words. Longer phrases come before
// their prefixes ("raised to the power of" before "power", "squared" before
// "square").
var Substitutions = []Rule{
	word("oneplus", "1 +"),
	word("raised to the power of", "**"),
	word("to the power of", "**"),
	word("raised to", "**"),
	word("power", "**"),
	word("minus", "-"),
	word("plus", "+"),
	word("times", "*"),
	word("multiplied by", "*"),
	word("multiply", "*"),
	word("divide", "/"),
	word("into", "*"),
	word("over", "/"),
	word("squared", "**2"),
	word("cubed", "**3"),
	word("square", "**2"),
	word("cube", "**3"),
	word("logarithm", "log"),
	word("exponential", "exp"),
}

// Filler words that carry no arithmetic meaning.
var Filler = []Rule{
	{Name: "question", Pattern: regexp.MustCompile(`^\s*(what\s+is|what's|calculate|compute|evaluate)\b`), Replace: ""},
	literal("?", ""),
}

var (
	numberAndNumber = regexp.MustCompile(`\d+\s+and\s+\d+`)
	andWord         = word("and", "+")
)

// ============================================================
// Calculus rule tables
// ============================================================

// CalculusTriggers strip the command words, longest phrase first.
var CalculusTriggers = []Rule{
	word("differentiation of", ""),
	word("with respect to x", ""),
	word("integration of", ""),
	word("derivative of", ""),
	word("differentiate", ""),
	word("differentiation", ""),
	word("integral of", ""),
	word("integration", ""),
	word("derivative", ""),
	word("integrate", ""),
	word("integral", ""),
	word("derive", ""),
	word("find", ""),
	word("the", ""),
}

var bareOf = word("of", "")

// CalculusSpellings run before the generic substitutions.
var CalculusSpellings = []Rule{
	word("sine", "sin"),
	word("cosine", "cos"),
	word("tangent", "tan"),
	word("x squared", "x**2"),
	word("e power", "exp"),
	word("sqaure", "**2"),
	literal("^", "**"),
}

// ============================================================
// Equation rule tables
// ============================================================

var EquationTriggers = []Rule{
	word("solve for x", ""),
	word("solve", ""),
	{Name: "find the value of x if", Pattern: regexp.MustCompile(`\bfind\s+the\s+value\s+of\s+x\s+(if|where|when|such\s+that|given)\b`), Replace: ""},
	word("find the value of", ""),
	{Name: "find x if", Pattern: regexp.MustCompile(`\bfind\s+x\s+(if|where|when|such\s+that|given)\b`), Replace: ""},
	word("find", ""),
	word("for x", ""),
	literal(":", ""),
}

var EquationEquals = []Rule{
	word("is equal to", "="),
	word("equal to", "="),
	word("equals", "="),
	word("equal", "="),
}

// ============================================================
// Graph rule tables
// ============================================================

var GraphRules = []Rule{
	{Name: "trigger", Pattern: regexp.MustCompile(`^\s*(plot|graph|draw)\b`), Replace: ""},
	{Name: "function of x", Pattern: regexp.MustCompile(`^\s*(the\s+)?(function\s+)?(y|f\(x\))\s*=`), Replace: ""},
	word("sine", "sin"),
	word("cosine", "cos"),
	word("tangent", "tan"),
	word("squared", "**2"),
	word("cubed", "**3"),
	word("square", "**2"),
	word("cube", "**3"),
	word("sqaure", "**2"),
	literal("^", "**"),
}
