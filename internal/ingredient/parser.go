package ingredient

import (
	"regexp"
	"strconv"
	"strings"
)

// Parsed is the result of extracting a quantity and item name from a
// free-text ingredient line. Quantity is nil when no numeric quantity was
// recognized; ItemName is always non-empty for non-empty input.
type Parsed struct {
	Quantity *float64
	ItemName string
}

var quantityPattern = regexp.MustCompile(`(\d+\s+\d+/\d+|\d+/\d+|\d+(?:\.\d+)?)`)

// unitWords are measurement words stripped from the item name. No unit
// conversion happens here; a "cup" and a "unit" are treated alike.
var unitWords = map[string]struct{}{
	"cup": {}, "cups": {},
	"tbsp": {}, "tablespoon": {}, "tablespoons": {},
	"tsp": {}, "teaspoon": {}, "teaspoons": {},
	"oz": {}, "ounce": {}, "ounces": {},
	"lb": {}, "lbs": {}, "pound": {}, "pounds": {},
	"g": {}, "gram": {}, "grams": {},
	"kg": {}, "kilogram": {}, "kilograms": {},
	"ml": {}, "l": {}, "liter": {}, "liters": {}, "litre": {}, "litres": {},
	"slice": {}, "slices": {},
	"clove": {}, "cloves": {},
	"can": {}, "cans": {},
	"piece": {}, "pieces": {},
	"unit": {}, "units": {},
	"of": {},
}

// Parse extracts a numeric quantity and a normalized item name from a
// free-text ingredient line such as "2 cups rice". Malformed input never
// fails; worst case Quantity is nil and ItemName is the lower-cased raw
// string.
func Parse(raw string) Parsed {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return Parsed{ItemName: ""}
	}

	var qty *float64
	rest := normalized
	if loc := quantityPattern.FindStringIndex(normalized); loc != nil {
		if v, ok := parseNumber(normalized[loc[0]:loc[1]]); ok {
			qty = &v
			rest = strings.TrimSpace(normalized[:loc[0]] + " " + normalized[loc[1]:])
		}
	}

	name := stripUnits(rest)
	if name == "" {
		// Nothing left after stripping; fall back to the raw string so
		// downstream matching still has something to work with.
		name = normalized
	}

	return Parsed{Quantity: qty, ItemName: name}
}

// Normalize lower-cases and trims an item name for comparison and for use as
// a reservation-map key.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)

	// Mixed number, e.g. "1 1/2".
	if parts := strings.Fields(s); len(parts) == 2 {
		whole, err1 := strconv.ParseFloat(parts[0], 64)
		frac, ok := parseFraction(parts[1])
		if err1 == nil && ok {
			return whole + frac, true
		}
		return 0, false
	}

	if frac, ok := parseFraction(s); ok {
		return frac, true
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseFraction(s string) (float64, bool) {
	num, den, found := strings.Cut(s, "/")
	if !found {
		return 0, false
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0, false
	}
	return n / d, true
}

func stripUnits(s string) string {
	fields := strings.Fields(s)
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, isUnit := unitWords[f]; isUnit {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}
