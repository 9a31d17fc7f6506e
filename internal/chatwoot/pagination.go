package chatwoot

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

// PageKind is the shape of a list response.
type PageKind int

const (
	// PageSingle is a bare object (or scalar) treated as one record.
	PageSingle PageKind = iota

	// PagePayload is a {payload, meta} envelope.
	PagePayload

	// PageArray is a bare JSON array.
	PageArray
)

// PageMeta is the pagination block of an envelope.
type PageMeta struct {
	CurrentPage float64
	AllCount    float64
	PerPage     float64
}

// HasMore reports whether another page follows. The comparison is done in
// floating point: 120 records at 50 per page continue after pages 1 and 2
// (2.4) and stop after page 3.
func (m PageMeta) HasMore() bool {
	return m.CurrentPage < m.AllCount/m.PerPage
}

// Page is a classified list response.
type Page struct {
	Kind    PageKind
	Records []interface{}
	Meta    *PageMeta
}

// ClassifyPage inspects a decoded response once.
func ClassifyPage(response interface{}) Page {
	switch v := response.(type) {
	case []interface{}:
		return Page{Kind: PageArray, Records: v}
	case map[string]interface{}:
		page := Page{Kind: PageSingle, Records: []interface{}{v}}
		if payload, ok := v["payload"]; ok && payload != nil {
			page.Kind = PagePayload
			if list, isList := payload.([]interface{}); isList {
				page.Records = list
			} else {
				page.Records = []interface{}{payload}
			}
		}
		if meta, ok := v["meta"].(map[string]interface{}); ok {
			page.Meta = &PageMeta{
				CurrentPage: metaNumber(meta, "current_page"),
				AllCount:    metaNumber(meta, "all_count"),
				PerPage:     metaNumber(meta, "per_page"),
			}
		}
		return page
	default:
		return Page{Kind: PageSingle, Records: []interface{}{response}}
	}
}

// ApplicationRequestAllItems walks a paged Application API list starting at
// page 1 and returns every record in page order. The caller's query is not
// modified. Any request error discards the records gathered so far.
func ApplicationRequestAllItems(ctx context.Context, host operation.Host, req Request) ([]interface{}, error) {
	query := make(map[string]interface{}, len(req.Query)+1)
	for k, v := range req.Query {
		query[k] = v
	}

	var records []interface{}
	for pageNumber := 1; ; pageNumber++ {
		query["page"] = pageNumber

		response, err := ApplicationRequest(ctx, host, Request{
			Method:    req.Method,
			Endpoint:  req.Endpoint,
			Body:      req.Body,
			Query:     query,
			ItemIndex: req.ItemIndex,
		})
		if err != nil {
			return nil, err
		}

		page := ClassifyPage(response)
		records = append(records, page.Records...)

		if page.Meta == nil || !page.Meta.HasMore() {
			break
		}
	}

	if records == nil {
		records = []interface{}{}
	}
	return records, nil
}

// metaNumber reads a meta field as a number. Absent or non-numeric fields
// are NaN so that HasMore stops the walk; null and "" count as 0.
func metaNumber(meta map[string]interface{}, key string) float64 {
	value, ok := meta[key]
	if !ok {
		return math.NaN()
	}
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		if strings.TrimSpace(v) == "" {
			return 0
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}
