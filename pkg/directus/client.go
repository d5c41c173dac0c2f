package directus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matst80/plat-finder/pkg/common/jsoncompat"
	"github.com/matst80/plat-finder/pkg/pricing"
	"github.com/matst80/plat-finder/pkg/types"
)

var ErrStatus = errors.New("directus request failed")

const DefaultCollection = "product"

// Client reads auction lots from a Directus instance.
type Client struct {
	BaseUrl    string
	Token      string
	Collection string
	Debug      bool
	client     *http.Client
}

func NewClient(baseUrl, token string) *Client {
	return &Client{
		BaseUrl:    strings.TrimRight(baseUrl, "/"),
		Token:      token,
		Collection: DefaultCollection,
		client:     &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *Client) itemsUrl(opts types.FetchOptions) string {
	qs := url.Values{}
	qs.Set("fields", "*.*")
	qs.Set("sort", opts.Sort)
	qs.Set("limit", strconv.Itoa(opts.Limit))
	if opts.Status != "" {
		qs.Set("filter[status][_eq]", opts.Status)
	}
	return fmt.Sprintf("%s/items/%s?%s", c.BaseUrl, c.Collection, qs.Encode())
}

func (c *Client) do(ctx context.Context, rawUrl string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawUrl, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		defer res.Body.Close()
		details, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		text := strings.TrimSpace(string(details))
		if text == "" {
			text = http.StatusText(res.StatusCode)
		}
		return nil, fmt.Errorf("%w (%d): %s", ErrStatus, res.StatusCode, text)
	}
	return res, nil
}

type itemsResponse struct {
	Data []any `json:"data"`
}

// FetchEntries loads the active lots and maps every row to an entry.
func (c *Client) FetchEntries(ctx context.Context, opts types.FetchOptions) ([]types.Entry, error) {
	res, err := c.do(ctx, c.itemsUrl(opts))
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var body itemsResponse
	if err := jsoncompat.Decode(res.Body, &body); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	ret := make([]types.Entry, 0, len(body.Data))
	for _, raw := range body.Data {
		row := pricing.FromValue(raw)
		e, ok := c.MapRow(row)
		if !ok {
			log.Printf("[directus] Skipping row without id")
			continue
		}
		ret = append(ret, e)
	}
	if c.Debug && len(ret) > 0 {
		s := ret[0]
		log.Printf("[directus] sample id=%d title=%q price=%v priceKey=%s image=%s", s.Id, s.Title, formatPrice(s.Price), s.PriceKey, s.ImageUrl)
	}
	return ret, nil
}

// Ping checks that the instance is reachable.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.do(ctx, c.BaseUrl+"/server/ping")
	if err != nil {
		return err
	}
	return res.Body.Close()
}

func formatPrice(p *float64) string {
	if p == nil {
		return "null"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
