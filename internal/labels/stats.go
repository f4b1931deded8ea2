package labels

import "fmt"

// GroupCount is the number of labels sharing one (name, quantity) combination.
type GroupCount struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Count    int    `json:"count"`
}

func (g GroupCount) String() string {
	return fmt.Sprintf("%s (x%d): %d", g.Name, g.Quantity, g.Count)
}

// Summarize counts consecutive runs of equal (name, quantity) in sorted pairs.
// Groups come out in the same order as the pairs.
func Summarize(pairs []Pair) []GroupCount {
	var out []GroupCount
	for _, p := range pairs {
		if n := len(out); n > 0 && out[n-1].Name == p.Name && out[n-1].Quantity == p.Quantity {
			out[n-1].Count++
			continue
		}
		out = append(out, GroupCount{Name: p.Name, Quantity: p.Quantity, Count: 1})
	}
	return out
}

// Unrecognized counts pairs whose label fell through to UnrecognizedName.
func Unrecognized(pairs []Pair) int {
	n := 0
	for _, p := range pairs {
		if p.Name == UnrecognizedName {
			n++
		}
	}
	return n
}
