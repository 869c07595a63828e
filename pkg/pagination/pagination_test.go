package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDefaults(t *testing.T) {
	req := Parse(url.Values{})
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 10, req.PerPage)
	assert.Empty(t, req.Sort)
	assert.Empty(t, req.Order)
}

func TestParseFallbacks(t *testing.T) {
	cases := []struct {
		name    string
		page    string
		perPage string
		want    PageRequest
	}{
		{"non-numeric", "abc", "xyz", PageRequest{Page: 1, PerPage: 10}},
		{"negative page", "-3", "20", PageRequest{Page: 1, PerPage: 20}},
		{"zero page", "0", "20", PageRequest{Page: 1, PerPage: 20}},
		{"empty", "", "", PageRequest{Page: 1, PerPage: 10}},
		{"per_page zero falls back", "2", "0", PageRequest{Page: 2, PerPage: 10}},
		{"per_page negative falls back", "2", "-5", PageRequest{Page: 2, PerPage: 10}},
		{"per_page capped", "1", "5000", PageRequest{Page: 1, PerPage: MaxPerPage}},
		{"valid", "3", "25", PageRequest{Page: 3, PerPage: 25}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values := url.Values{}
			if tc.page != "" {
				values.Set("page", tc.page)
			}
			if tc.perPage != "" {
				values.Set("per_page", tc.perPage)
			}
			req := Parse(values)
			assert.Equal(t, tc.want.Page, req.Page)
			assert.Equal(t, tc.want.PerPage, req.PerPage)
		})
	}
}

func TestParseIgnoresUnknownKeys(t *testing.T) {
	values := url.Values{}
	values.Set("page", "2")
	values.Set("unknown", "whatever")
	values.Set("another[0]", "x")

	req := Parse(values)
	assert.Equal(t, 2, req.Page)
	assert.Equal(t, 10, req.PerPage)
}

func TestLimitsParseUsesConfiguredBounds(t *testing.T) {
	limits := Limits{DefaultPerPage: 25, MaxPerPage: 50}

	req := limits.Parse(url.Values{})
	assert.Equal(t, 25, req.PerPage)

	values := url.Values{}
	values.Set("per_page", "500")
	assert.Equal(t, 50, limits.Parse(values).PerPage)

	values.Set("per_page", "-1")
	assert.Equal(t, 25, limits.Parse(values).PerPage)
}

func TestLimitsZeroValueFallsBackToDefaults(t *testing.T) {
	req := Limits{}.Parse(url.Values{})
	assert.Equal(t, DefaultPerPage, req.PerPage)

	values := url.Values{}
	values.Set("per_page", "5000")
	assert.Equal(t, MaxPerPage, Limits{}.Parse(values).PerPage)
}

func TestParseOrderWhitelist(t *testing.T) {
	values := url.Values{}
	values.Set("order", "DROP TABLE")
	assert.Empty(t, Parse(values).Order)

	values.Set("order", "desc")
	assert.Equal(t, OrderDesc, Parse(values).Order)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, PageCount(0, 10))
	assert.Equal(t, 1, PageCount(10, 10))
	assert.Equal(t, 1, PageCount(1, 10))
	assert.Equal(t, 3, PageCount(25, 10))
	assert.Equal(t, 25, PageCount(25, 1))
	assert.Equal(t, 0, PageCount(25, 0))
	assert.Equal(t, 0, PageCount(25, -1))
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 1, PerPage: 10}.Offset())
	assert.Equal(t, 20, PageRequest{Page: 3, PerPage: 10}.Offset())
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(PageRequest{Page: 2, PerPage: 10}, 25)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 10, meta.PerPage)
	assert.Equal(t, 25, meta.TotalCount)
	assert.Equal(t, 3, meta.PageCount)
}
