package labels

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// UnrecognizedName is returned when no rule recovers a product name.
const UnrecognizedName = "Нераспознанный товар"

const (
	maxNameRunes   = 60
	ellipsis       = "..."
	minLineRunes   = 10
	maxMultiplier  = 50
	defaultQtyUnit = 1
)

// Result is what a single label page yields.
type Result struct {
	Name     string
	Quantity int
}

var (
	// Heading "Наименование" then the name, stopping before a "<digits>:20" time-like token,
	// a 10+ digit article/barcode run, or end of text.
	headingRe = regexp.MustCompile(`Наименование[\s\p{Zs}]+(.+?)([\s\p{Zs}]\d+:20|[\s\p{Zs}]\d{10,}|[\s\p{Zs}]*$)`)

	bulletQtyRe     = regexp.MustCompile(`•[\s\p{Zs}]*(\d+)[\s\p{Zs}]*шт`)
	multiplierQtyRe = regexp.MustCompile(`[x×][\s\p{Zs}]?(\d+)`)

	// Logistics boilerplate that is never a product name.
	noiseMarkers = []string{"Отгрузка", "FBS", "ПВЗ"}
)

type nameRule func(text string) (string, bool)

type qtyRule func(text string) (int, bool)

// Order matters: first rule that matches wins.
var (
	nameRules = []nameRule{headingName, firstLongLine}
	qtyRules  = []qtyRule{bulletQuantity, multiplierQuantity}
)

// Extract derives product name and quantity from the text of a label page.
// It never fails: unknown layouts yield UnrecognizedName and quantity 1.
func Extract(text string) Result {
	return Result{Name: ExtractName(text), Quantity: ExtractQuantity(text)}
}

// ExtractName runs the name rules in order.
func ExtractName(text string) string {
	for _, rule := range nameRules {
		if name, ok := rule(text); ok {
			return name
		}
	}
	return UnrecognizedName
}

// ExtractQuantity runs the quantity rules in order, defaulting to 1.
func ExtractQuantity(text string) int {
	for _, rule := range qtyRules {
		if qty, ok := rule(text); ok {
			return qty
		}
	}
	return defaultQtyUnit
}

func headingName(text string) (string, bool) {
	flat := strings.ReplaceAll(text, "\n", "  ")
	m := headingRe.FindStringSubmatch(flat)
	if m == nil {
		return "", false
	}
	return truncateName(strings.TrimSpace(m[1])), true
}

func truncateName(name string) string {
	if utf8.RuneCountInString(name) <= maxNameRunes {
		return name
	}
	return string([]rune(name)[:maxNameRunes]) + ellipsis
}

func firstLongLine(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if utf8.RuneCountInString(line) <= minLineRunes || hasNoise(line) {
			continue
		}
		return strings.TrimSpace(line), true
	}
	return "", false
}

func hasNoise(line string) bool {
	for _, marker := range noiseMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

func bulletQuantity(text string) (int, bool) {
	m := bulletQtyRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return atoiPositive(m[1]), true
}

// multiplierQuantity accepts "x3" / "× 3" only when the digits end at a word
// boundary and the value is small enough not to be a fragment of a barcode.
func multiplierQuantity(text string) (int, bool) {
	for _, loc := range multiplierQtyRe.FindAllStringSubmatchIndex(text, -1) {
		end := loc[3]
		if !atWordBoundary(text, end) {
			continue
		}
		n, err := strconv.Atoi(text[loc[2]:end])
		if err != nil {
			return 0, false
		}
		if n < maxMultiplier {
			return clampQty(n), true
		}
		return 0, false
	}
	return 0, false
}

func atWordBoundary(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}

func atoiPositive(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return defaultQtyUnit
	}
	return clampQty(n)
}

func clampQty(n int) int {
	if n < 1 {
		return defaultQtyUnit
	}
	return n
}
