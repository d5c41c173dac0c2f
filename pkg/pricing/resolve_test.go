package pricing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, data string) *Node {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(data), &v))
	return FromValue(v)
}

func TestCoerce(t *testing.T) {
	cases := []struct {
		in   *Node
		want float64
		ok   bool
	}{
		{Number(12.5), 12.5, true},
		{Number(0), 0, true},
		{Number(math.Inf(1)), 0, false},
		{Number(math.NaN()), 0, false},
		{String("R 1,250.50"), 1250.5, true},
		{String("-3"), -3, true},
		{String(""), 0, false},
		{String("free"), 0, false},
		{String("1.2.3"), 0, false},
		{Bool(true), 0, false},
		{Null(), 0, false},
		{Object(), 0, false},
		{nil, 0, false},
	}
	for _, c := range cases {
		got, ok := Coerce(c.in)
		assert.Equal(t, c.ok, ok, "%+v", c.in)
		if c.ok {
			assert.InDelta(t, c.want, got, 1e-9)
		}
	}
}

func TestResolveCanonicalBeatsDecoy(t *testing.T) {
	row := decode(t, `{"product_price": 100, "discount": {"value": 5}}`)
	res := Resolve(row)
	require.True(t, res.Found())
	assert.Equal(t, 100.0, *res.Price)
	assert.Equal(t, "product_price", res.Key)
}

func TestResolveNestedAuctionPrice(t *testing.T) {
	row := decode(t, `{"nested": {"auction_price": 250}}`)
	res := Resolve(row)
	require.True(t, res.Found())
	assert.Equal(t, 250.0, *res.Price)
	assert.Contains(t, res.Key, "auction_price")
	assert.Equal(t, "root.nested.auction_price", res.Key)
}

func TestResolveZeroIsAPrice(t *testing.T) {
	res := Resolve(decode(t, `{"product_price": 0}`))
	require.True(t, res.Found())
	assert.Equal(t, 0.0, *res.Price)
}

func TestResolveNoPrice(t *testing.T) {
	res := Resolve(decode(t, `{"title": "Eclipse", "product_price": true, "status": "active"}`))
	assert.False(t, res.Found())
	assert.Nil(t, res.Price)
	assert.Empty(t, res.Key)

	assert.False(t, Resolve(nil).Found())
	assert.False(t, Resolve(String("100")).Found())
}

func TestResolveFallsBackWhenCanonicalEmpty(t *testing.T) {
	res := Resolve(decode(t, `{"product_price": "", "PriceZAR": "R 4,500"}`))
	require.True(t, res.Found())
	assert.Equal(t, 4500.0, *res.Price)
	assert.Equal(t, "root.PriceZAR", res.Key)
}

func TestResolveTieBreakPrefersLarger(t *testing.T) {
	res := Resolve(decode(t, `{"a": {"price": 10}, "b": {"price": 20}}`))
	require.True(t, res.Found())
	assert.Equal(t, 20.0, *res.Price)
	assert.Equal(t, "root.b.price", res.Key)
}

func TestResolveNestedProbe(t *testing.T) {
	res := Resolve(decode(t, `{"amount": {"currency": "ZAR", "net": "900", "gross": "1035"}}`))
	require.True(t, res.Found())
	assert.Equal(t, 900.0, *res.Price)
	assert.Equal(t, "root.amount(nested)", res.Key)
}

func TestResolveArrays(t *testing.T) {
	res := Resolve(decode(t, `{"bids": [{"amount": 300}, {"amount": 450}]}`))
	require.True(t, res.Found())
	assert.Equal(t, 450.0, *res.Price)
	assert.Equal(t, "root.bids[1].amount", res.Key)
}

func TestResolveTerminatesOnCycles(t *testing.T) {
	row := Object(F("amount", String("R 1,200")))
	inner := Object(F("parent", row))
	row.Fields = append(row.Fields, F("self", row), F("child", inner))
	list := Array(row, row)
	row.Fields = append(row.Fields, F("list", list))

	candidates := Candidates(row)
	assert.Len(t, candidates, 1)

	res := Resolve(row)
	require.True(t, res.Found())
	assert.Equal(t, 1200.0, *res.Price)
	assert.Equal(t, "root.amount", res.Key)
}

func TestResolveDeepNestingIsCapped(t *testing.T) {
	leaf := Object(F("price", Number(1)))
	n := leaf
	for range maxDepth * 2 {
		n = Object(F("x", n))
	}
	assert.NotPanics(t, func() {
		assert.False(t, Resolve(n).Found())
	})
}

func TestScore(t *testing.T) {
	assert.Equal(t, 0, Score("root.product_price"))
	assert.Equal(t, 1, Score("root.nested.Auction_Price"))
	assert.Equal(t, 2, Score("root.priceZar"))
	assert.Equal(t, 3, Score("root.meta.price"))
	assert.Equal(t, 4, Score("root.amount"))
	assert.Equal(t, 5, Score("root.value"))
	assert.Equal(t, 9, Score("root.rand"))
}
