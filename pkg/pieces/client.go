package pieces

import (
	"bytes"
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

var ErrStatus = errors.New("supabase request failed")

const DefaultTable = "pieces"

// Client talks to the Supabase REST api holding the designer pieces table.
type Client struct {
	BaseUrl string
	ApiKey  string
	Table   string
	client  *http.Client
}

func NewClient(baseUrl, apiKey string) *Client {
	return &Client{
		BaseUrl: strings.TrimRight(baseUrl, "/"),
		ApiKey:  apiKey,
		Table:   DefaultTable,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, rawUrl string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawUrl, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.ApiKey)
	req.Header.Set("Authorization", "Bearer "+c.ApiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		defer res.Body.Close()
		details, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("%w (%d): %s", ErrStatus, res.StatusCode, strings.TrimSpace(string(details)))
	}
	return res, nil
}

// order maps the shared sort syntax ("-id") to PostgREST ("entryNo.desc").
func order(sort string) string {
	dir := "asc"
	if strings.HasPrefix(sort, "-") {
		dir = "desc"
		sort = sort[1:]
	}
	if sort == "" || sort == "id" {
		sort = "entryNo"
	}
	return sort + "." + dir
}

func (c *Client) tableUrl(qs url.Values) string {
	return fmt.Sprintf("%s/rest/v1/%s?%s", c.BaseUrl, c.Table, qs.Encode())
}

// FetchEntries reads the pieces table. The table has no status column so the
// status option is ignored.
func (c *Client) FetchEntries(ctx context.Context, opts types.FetchOptions) ([]types.Entry, error) {
	qs := url.Values{}
	qs.Set("select", "*")
	qs.Set("order", order(opts.Sort))
	if opts.Limit > 0 {
		qs.Set("limit", strconv.Itoa(opts.Limit))
	}
	req, err := c.newRequest(ctx, http.MethodGet, c.tableUrl(qs), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var rows []any
	if err := jsoncompat.Decode(res.Body, &rows); err != nil {
		return nil, fmt.Errorf("decode pieces: %w", err)
	}
	ret := make([]types.Entry, 0, len(rows))
	for _, raw := range rows {
		e, ok := MapRow(pricing.FromValue(raw))
		if !ok {
			log.Printf("[pieces] Skipping row without entryNo")
			continue
		}
		ret = append(ret, e)
	}
	return ret, nil
}

type imageUpdate struct {
	ImageUrl string `json:"image_url"`
}

// SetImageUrl writes a new image url on the piece with the given entry number.
func (c *Client) SetImageUrl(ctx context.Context, id types.EntryId, imageUrl string) error {
	data, err := jsoncompat.Marshal(imageUpdate{ImageUrl: imageUrl})
	if err != nil {
		return err
	}
	qs := url.Values{}
	qs.Set("entryNo", fmt.Sprintf("eq.%d", id))
	req, err := c.newRequest(ctx, http.MethodPatch, c.tableUrl(qs), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=minimal")
	res, err := c.do(req)
	if err != nil {
		return fmt.Errorf("update image_url for %d: %w", id, err)
	}
	return res.Body.Close()
}

// Ping checks that the project answers with its auth settings.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, c.BaseUrl+"/auth/v1/settings", nil)
	if err != nil {
		return err
	}
	res, err := c.do(req)
	if err != nil {
		return err
	}
	return res.Body.Close()
}
