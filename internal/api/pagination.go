package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodshare/backend/internal/types"
)

// maxPageSize caps ?limit= for every list endpoint
const maxPageSize = 100

// PageResponse is the paginated list envelope
type PageResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// parsePage reads ?page= and ?limit=. A limit that is missing, malformed or
// not positive falls back to defaultSize and is capped at maxPageSize. A
// malformed page is reported as page 0, which the service rejects as an
// invalid page.
func parsePage(c *gin.Context, defaultSize int) types.PageRequest {
	req := types.PageRequest{Page: 1, Limit: defaultSize}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			page = 0
		}
		req.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		req.Limit = limit
	}
	req.Limit = min(req.Limit, maxPageSize)
	return req
}

// writePage responds 200 with the envelope for one page of results
func writePage[T any](c *gin.Context, req types.PageRequest, page types.Page[T]) {
	resp := PageResponse[T]{
		Count:   page.Count,
		Results: page.Results,
	}
	if resp.Results == nil {
		resp.Results = []T{}
	}
	if req.HasNext(page.Count) {
		next := pageURL(c, req.Page+1)
		resp.Next = &next
	}
	if req.Page > 1 {
		previous := pageURL(c, req.Page-1)
		resp.Previous = &previous
	}
	c.JSON(http.StatusOK, resp)
}

// pageURL is the absolute URL of the current request with page replaced.
// Page 1 drops the parameter entirely.
func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	query := c.Request.URL.Query()
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: query.Encode(),
	}
	return u.String()
}
