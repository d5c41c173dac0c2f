package pricing

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const CanonicalKey = "product_price"

const (
	maxDepth = 32
	maxNodes = 10000
)

var priceKeyPattern = regexp.MustCompile(`(?i)(product_price|auction_price|pricezar|price|amount|value|zar|rand)`)

var nestedProbe = []string{"price", "value", "amount", "net", "gross"}

type Candidate struct {
	Path  string
	Price float64
}

type Result struct {
	Price *float64
	Key   string
}

func (r Result) Found() bool {
	return r.Price != nil
}

func LooksLikePriceKey(key string) bool {
	return priceKeyPattern.MatchString(key)
}

// Score ranks a candidate path, lower is better.
func Score(path string) int {
	p := strings.ToLower(path)
	switch {
	case strings.Contains(p, "product_price"):
		return 0
	case strings.Contains(p, "auction_price"):
		return 1
	case strings.Contains(p, "pricezar"), strings.Contains(p, "zar"):
		return 2
	case strings.Contains(p, ".price"):
		return 3
	case strings.Contains(p, "amount"):
		return 4
	case strings.Contains(p, "value"):
		return 5
	}
	return 9
}

// Resolve finds the most plausible price in a loosely typed row. The
// canonical field wins when it coerces, otherwise every price looking key in
// the tree is collected and ranked.
func Resolve(row *Node) Result {
	if v, ok := row.Get(CanonicalKey); ok {
		if f, ok := Coerce(v); ok {
			return Result{Price: &f, Key: CanonicalKey}
		}
	}
	candidates := Candidates(row)
	if len(candidates) == 0 {
		return Result{}
	}
	best := Best(candidates)
	price := best.Price
	return Result{Price: &price, Key: best.Path}
}

// Best picks the lowest scored candidate, larger prices win ties and equal
// prices keep discovery order.
func Best(candidates []Candidate) Candidate {
	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(a, b Candidate) int {
		if c := cmp.Compare(Score(a.Path), Score(b.Path)); c != 0 {
			return c
		}
		return cmp.Compare(b.Price, a.Price)
	})
	return sorted[0]
}

type scanner struct {
	seen  map[*Node]struct{}
	nodes int
	out   []Candidate
}

// Candidates walks the tree depth first and returns every coercible value
// stored under a price looking key.
func Candidates(root *Node) []Candidate {
	s := &scanner{seen: make(map[*Node]struct{})}
	s.walk(root, "root", 0)
	return s.out
}

func (s *scanner) walk(n *Node, base string, depth int) {
	if !n.IsContainer() || depth > maxDepth || s.nodes >= maxNodes {
		return
	}
	if _, ok := s.seen[n]; ok {
		return
	}
	s.seen[n] = struct{}{}
	s.nodes++

	if n.Kind == KindArray {
		for i, item := range n.Items {
			s.walk(item, base+"["+strconv.Itoa(i)+"]", depth+1)
		}
		return
	}

	for _, f := range n.Fields {
		path := base + "." + f.Key
		if LooksLikePriceKey(f.Key) {
			if v, ok := Coerce(f.Value); ok {
				s.out = append(s.out, Candidate{Path: path, Price: v})
			}
			if f.Value != nil && f.Value.Kind == KindObject {
				if v, ok := probe(f.Value); ok {
					s.out = append(s.out, Candidate{Path: path + "(nested)", Price: v})
				}
			}
		}
		s.walk(f.Value, path, depth+1)
	}
}

func probe(n *Node) (float64, bool) {
	for _, key := range nestedProbe {
		if v, ok := n.Get(key); ok {
			if f, ok := Coerce(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}
