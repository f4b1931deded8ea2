package labels

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrTooFewPages is returned for documents that cannot hold a single label pair.
var ErrTooFewPages = errors.New("document has fewer than 2 pages")

// Document gives read access to the text of each page (0-based).
// Implementations must be safe for concurrent Text calls when Grouper.Workers > 1.
type Document interface {
	NumPage() int
	Text(page int) (string, error)
}

// Pair is one shipping label: the shipment slip page followed by the product label page.
type Pair struct {
	First    int    // page index of the shipment slip
	Second   int    // page index of the product label
	Index    int    // position of First in the source document, always even
	Name     string
	Quantity int
}

// Grouping is the outcome of a Group run.
type Grouping struct {
	Pairs   []Pair // sorted by name, quantity, original index
	Order   []int  // source page indices in output order
	Dropped bool   // trailing unpaired page was left out
}

// Grouper pairs pages, extracts label fields and sorts the pairs.
type Grouper struct {
	// Workers > 1 extracts pairs concurrently.
	Workers int
	// OnPair is called after each pair is processed. Calls are serialized.
	OnPair func(done, total int)
}

// Group partitions doc into pairs (0,1), (2,3), ..., reads the second page of every
// pair and returns pairs ordered by (name, quantity, original index).
// An odd trailing page is dropped.
func (g *Grouper) Group(ctx context.Context, doc Document) (*Grouping, error) {
	n := doc.NumPage()
	if n < 2 {
		return nil, fmt.Errorf("group labels: %w (got %d)", ErrTooFewPages, n)
	}

	total := n / 2
	pairs := make([]Pair, total)

	var (
		mu   sync.Mutex
		done int
	)
	step := func(k int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		pairs[k] = g.extractPair(doc, 2*k)
		if g.OnPair != nil {
			mu.Lock()
			done++
			g.OnPair(done, total)
			mu.Unlock()
		}
		return nil
	}

	if g.Workers > 1 {
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(g.Workers)
		for k := 0; k < total; k++ {
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				return step(k)
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	} else {
		for k := 0; k < total; k++ {
			if err := step(k); err != nil {
				return nil, err
			}
		}
	}

	SortPairs(pairs)

	order := make([]int, 0, 2*total)
	for _, p := range pairs {
		order = append(order, p.First, p.Second)
	}

	dropped := n%2 == 1
	if dropped {
		log.Debug().Int("pages", n).Msg("odd page count; trailing page dropped")
	}
	return &Grouping{Pairs: pairs, Order: order, Dropped: dropped}, nil
}

func (g *Grouper) extractPair(doc Document, first int) Pair {
	text, err := doc.Text(first + 1)
	if err != nil {
		// Unreadable label page resolves to the sentinel name, same as an unknown layout.
		log.Warn().Err(err).Int("page", first+2).Msg("label page text unavailable")
		text = ""
	}
	res := Extract(text)
	return Pair{
		First:    first,
		Second:   first + 1,
		Index:    first,
		Name:     res.Name,
		Quantity: res.Quantity,
	}
}

// SortPairs orders pairs by name (byte-wise, case-sensitive), then quantity,
// then original index.
func SortPairs(pairs []Pair) {
	slices.SortStableFunc(pairs, comparePairs)
}

func comparePairs(a, b Pair) int {
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Quantity, b.Quantity); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}
