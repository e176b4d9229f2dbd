// Package daosvc fetches the index content from a remote data-access service.
package daosvc

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/trezcool/tourney/core"
	"github.com/trezcool/tourney/core/devindex"
)

const indexContentPath = "/indexcontent"

// maxBodySize bounds the document read from the service.
const maxBodySize = 4 << 20

var errTooLarge = errors.New("index content too large")

// Client is a devindex.Source backed by the data-access service at conf.DAO.URL.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ devindex.Source = (*Client)(nil)

func NewClient(conf *core.Config) *Client {
	return &Client{
		baseURL: conf.DAO.URL,
		http:    &http.Client{Timeout: conf.DAO.Timeout},
	}
}

// Fetch GETs {url}/indexcontent, passing the viewer as the username query parameter.
// The body is returned undecoded.
func (c *Client) Fetch(ctx context.Context, viewer string) ([]byte, error) {
	u, err := url.Parse(c.baseURL + indexContentPath)
	if err != nil {
		return nil, errors.Wrap(err, "parsing url")
	}
	if viewer != "" {
		q := u.Query()
		q.Set("username", viewer)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "requesting index content")
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("index content: unexpected status %d", res.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading index content")
	}
	if len(body) > maxBodySize {
		return nil, errTooLarge
	}
	return body, nil
}
