package engine

import (
	"regexp"
	"strings"

	"github.com/njchilds90/mathcmd/normalize"
)

var graphPrefix = regexp.MustCompile(`^(?:plot|graph|draw)`)

func isGraph(folded string) bool { return graphPrefix.MatchString(folded) }

// Graph extracts the canonical expression of a plot command. The value is
// the expression itself; Engine.Process hands it to the plotter.
func Graph(text string) Result { return guard(IntentGraph, graph, text) }

func graph(text string) Result {
	expr := normalize.Graph(text)
	if expr == "" {
		return NoMatch
	}
	return Value(expr)
}

var antigravityPhrases = []string{"activate antigravity", "python fly", "fly python"}

func isAntigravity(folded string) bool {
	for _, p := range antigravityPhrases {
		if strings.Contains(folded, p) {
			return true
		}
	}
	return false
}

const msgFlying = "You are now flying!"

// Antigravity answers the easter egg.
func Antigravity(text string) Result {
	if !isAntigravity(normalize.Fold(text)) {
		return NoMatch
	}
	return Value(msgFlying)
}
