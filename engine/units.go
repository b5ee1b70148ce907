package engine

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/njchilds90/mathcmd/normalize"
)

// UnitPair is an ordered (from, to) key of the conversion table.
type UnitPair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Conversion struct {
	Category string
	Apply    func(float64) float64
}

// UnitInfo describes one table entry for catalogue listings.
type UnitInfo struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Category string `json:"category"`
}

func scale(k float64) func(float64) float64  { return func(v float64) float64 { return v * k } }
func divide(k float64) func(float64) float64 { return func(v float64) float64 { return v / k } }

const (
	kmPerMile     = 1.60934
	metersPerFoot = 0.3048
	metersPerYard = 0.9144
	cmPerInch     = 2.54
	kgPerPound    = 0.453592
	gramsPerOunce = 28.3495
	kmhPerMph     = 1.60934
	msPerMph      = 0.44704
	bytesPerKibi  = 1024
	kelvinAtZeroC = 273.15
)

// conversions lists each direction explicitly; nothing is derived.
var conversions = map[UnitPair]Conversion{
	// length
	{"km", "miles"}:    {"length", divide(kmPerMile)},
	{"miles", "km"}:    {"length", scale(kmPerMile)},
	{"km", "m"}:        {"length", scale(1000)},
	{"m", "km"}:        {"length", divide(1000)},
	{"m", "cm"}:        {"length", scale(100)},
	{"cm", "m"}:        {"length", divide(100)},
	{"cm", "mm"}:       {"length", scale(10)},
	{"mm", "cm"}:       {"length", divide(10)},
	{"m", "feet"}:      {"length", divide(metersPerFoot)},
	{"feet", "m"}:      {"length", scale(metersPerFoot)},
	{"feet", "inches"}: {"length", scale(12)},
	{"inches", "feet"}: {"length", divide(12)},
	{"inches", "cm"}:   {"length", scale(cmPerInch)},
	{"cm", "inches"}:   {"length", divide(cmPerInch)},
	{"m", "yards"}:     {"length", divide(metersPerYard)},
	{"yards", "m"}:     {"length", scale(metersPerYard)},
	{"miles", "feet"}:  {"length", scale(5280)},
	{"feet", "miles"}:  {"length", divide(5280)},

	// weight
	{"kg", "lbs"}:    {"weight", divide(kgPerPound)},
	{"lbs", "kg"}:    {"weight", scale(kgPerPound)},
	{"kg", "pounds"}: {"weight", divide(kgPerPound)},
	{"pounds", "kg"}: {"weight", scale(kgPerPound)},
	{"kg", "g"}:      {"weight", scale(1000)},
	{"g", "kg"}:      {"weight", divide(1000)},
	{"g", "oz"}:      {"weight", divide(gramsPerOunce)},
	{"oz", "g"}:      {"weight", scale(gramsPerOunce)},
	{"lbs", "oz"}:    {"weight", scale(16)},
	{"oz", "lbs"}:    {"weight", divide(16)},

	// temperature
	{"celsius", "fahrenheit"}: {"temperature", func(c float64) float64 { return c*9/5 + 32 }},
	{"fahrenheit", "celsius"}: {"temperature", func(f float64) float64 { return (f - 32) * 5 / 9 }},
	{"celsius", "kelvin"}:     {"temperature", func(c float64) float64 { return c + kelvinAtZeroC }},
	{"kelvin", "celsius"}:     {"temperature", func(k float64) float64 { return k - kelvinAtZeroC }},
	{"fahrenheit", "kelvin"}:  {"temperature", func(f float64) float64 { return (f-32)*5/9 + kelvinAtZeroC }},
	{"kelvin", "fahrenheit"}:  {"temperature", func(k float64) float64 { return (k-kelvinAtZeroC)*9/5 + 32 }},

	// speed
	{"kmh", "mph"}: {"speed", divide(kmhPerMph)},
	{"mph", "kmh"}: {"speed", scale(kmhPerMph)},
	{"m/s", "kmh"}: {"speed", scale(3.6)},
	{"kmh", "m/s"}: {"speed", divide(3.6)},
	{"mph", "m/s"}: {"speed", scale(msPerMph)},
	{"m/s", "mph"}: {"speed", divide(msPerMph)},

	// data
	{"bytes", "kb"}: {"data", divide(bytesPerKibi)},
	{"kb", "bytes"}: {"data", scale(bytesPerKibi)},
	{"kb", "mb"}:    {"data", divide(bytesPerKibi)},
	{"mb", "kb"}:    {"data", scale(bytesPerKibi)},
	{"mb", "gb"}:    {"data", divide(bytesPerKibi)},
	{"gb", "mb"}:    {"data", scale(bytesPerKibi)},
	{"gb", "tb"}:    {"data", divide(bytesPerKibi)},
	{"tb", "gb"}:    {"data", scale(bytesPerKibi)},
}

var conversionPattern = regexp.MustCompile(`^(?:convert\s+)?(-?\d+(?:\.\d+)?)\s*([a-z°/]+)\s+(?:to|in)\s+([a-z°/]+)\s*\??$`)

func isConversion(folded string) bool { return conversionPattern.MatchString(folded) }

// Units converts "[convert] <number> <unit> to|in <unit>" for the unit
// pairs in the table.
func Units(text string) Result { return guard(IntentUnits, units, text) }

func units(text string) Result {
	m := conversionPattern.FindStringSubmatch(strings.TrimSpace(normalize.Fold(text)))
	if m == nil {
		return NoMatch
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return NoMatch
	}
	from, to := strings.TrimSpace(m[2]), strings.TrimSpace(m[3])
	conv, ok := conversions[UnitPair{From: from, To: to}]
	if !ok {
		return NoMatch
	}
	return Value(formatInput(v) + " " + from + " = " + formatNumber(conv.Apply(v)) + " " + to)
}

// UnitCatalogue lists every supported pair, sorted by category, from, to.
func UnitCatalogue() []UnitInfo {
	out := make([]UnitInfo, 0, len(conversions))
	for pair, conv := range conversions {
		out = append(out, UnitInfo{From: pair.From, To: pair.To, Category: conv.Category})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.From != b.From {
			return a.From < b.From
		}
		return a.To < b.To
	})
	return out
}
