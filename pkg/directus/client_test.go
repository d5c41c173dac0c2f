package directus

import (
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/matst80/plat-finder/pkg/pricing"
	"github.com/matst80/plat-finder/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseUrl = "https://crm.test"

func setupHTTPMock(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
}

const itemsResponseBody = `{
  "data": [
    {
      "id": 12,
      "status": "active",
      "product_title": "Eclipse Ring",
      "product_description": "Platinum and diamond",
      "jeweller": "Emile Pitout",
      "company": " Platandia ",
      "product_price": "R 45,000",
      "hero_image": {"id": "abc", "filename_disk": "abc.jpg"},
      "product_qr": "qr-12"
    },
    {
      "id": 11,
      "title": "Stratos",
      "product_jeweller": "Nihal Shah",
      "pricing": {"auction_price": 250, "discount": {"value": 5}},
      "hero_image": null
    },
    {
      "title": "No id"
    }
  ]
}`

func TestFetchEntries(t *testing.T) {
	setupHTTPMock(t)

	var query map[string][]string
	var auth string
	httpmock.RegisterResponder(http.MethodGet, baseUrl+"/items/product",
		func(req *http.Request) (*http.Response, error) {
			query = req.URL.Query()
			auth = req.Header.Get("Authorization")
			return httpmock.NewStringResponse(http.StatusOK, itemsResponseBody), nil
		})

	c := NewClient(baseUrl+"/", "secret")
	entries, err := c.FetchEntries(t.Context(), types.DefaultFetchOptions())
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, []string{"*.*"}, query["fields"])
	assert.Equal(t, []string{"-id"}, query["sort"])
	assert.Equal(t, []string{"200"}, query["limit"])
	assert.Equal(t, []string{"active"}, query["filter[status][_eq]"])

	require.Len(t, entries, 2)
	first := entries[0]
	assert.Equal(t, types.EntryId(12), first.Id)
	assert.Equal(t, "Eclipse Ring", first.Title)
	assert.Equal(t, "Emile Pitout", first.Name)
	assert.Equal(t, "Platandia", first.Institution)
	assert.Equal(t, "Platinum and diamond", first.Description)
	require.NotNil(t, first.Price)
	assert.Equal(t, 45000.0, *first.Price)
	assert.Equal(t, "product_price", first.PriceKey)
	assert.Equal(t, baseUrl+"/assets/abc.jpg", first.ImageUrl)
	assert.Equal(t, baseUrl+"/assets/qr-12", first.QrUrl)
	assert.Equal(t, "active", first.Status)

	second := entries[1]
	assert.Equal(t, "Stratos", second.Title)
	assert.Equal(t, "Nihal Shah", second.Name)
	require.NotNil(t, second.Price)
	assert.Equal(t, 250.0, *second.Price)
	assert.Equal(t, "root.pricing.auction_price", second.PriceKey)
	assert.Empty(t, second.ImageUrl)
	assert.Equal(t, "unknown", second.Status)
}

func TestFetchEntriesHTTPError(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, baseUrl+"/items/product",
		httpmock.NewStringResponder(http.StatusForbidden, `{"errors":[{"message":"forbidden"}]}`))

	_, err := NewClient(baseUrl, "").FetchEntries(t.Context(), types.DefaultFetchOptions())
	require.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "forbidden")
}

func TestFetchEntriesBadBody(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, baseUrl+"/items/product",
		httpmock.NewStringResponder(http.StatusOK, `not json`))

	_, err := NewClient(baseUrl, "").FetchEntries(t.Context(), types.DefaultFetchOptions())
	require.Error(t, err)
}

func TestPing(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, baseUrl+"/server/ping", httpmock.NewStringResponder(http.StatusOK, "pong"))
	require.NoError(t, NewClient(baseUrl, "").Ping(t.Context()))

	httpmock.RegisterResponder(http.MethodGet, baseUrl+"/server/ping", httpmock.NewStringResponder(http.StatusServiceUnavailable, ""))
	err := NewClient(baseUrl, "").Ping(t.Context())
	require.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "Service Unavailable")
}

func TestMapRowPriceless(t *testing.T) {
	c := NewClient(baseUrl, "")
	e, ok := c.MapRow(pricing.Object(pricing.F("id", pricing.String("7"))))
	require.True(t, ok)
	assert.Equal(t, types.EntryId(7), e.Id)
	assert.Equal(t, Untitled, e.Title)
	assert.Nil(t, e.Price)
	assert.Empty(t, e.PriceKey)

	_, ok = c.MapRow(pricing.Object(pricing.F("id", pricing.String("abc"))))
	assert.False(t, ok)
}
