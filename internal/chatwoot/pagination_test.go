package chatwoot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

func envelope(currentPage, allCount, perPage float64, ids ...float64) map[string]interface{} {
	payload := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		payload = append(payload, map[string]interface{}{"id": id})
	}
	return map[string]interface{}{
		"payload": payload,
		"meta": map[string]interface{}{
			"current_page": currentPage,
			"all_count":    allCount,
			"per_page":     perPage,
		},
	}
}

func TestApplicationRequestAllItems_WalksPages(t *testing.T) {
	host := newFakeHost(nil).respond(
		envelope(1, 120, 50, 1, 2),
		envelope(2, 120, 50, 3),
		envelope(3, 120, 50, 4),
	)
	query := map[string]interface{}{"sort": "name"}

	records, err := ApplicationRequestAllItems(context.Background(), host, Request{
		Method:   "GET",
		Endpoint: "contacts",
		Query:    query,
	})
	require.NoError(t, err)

	require.Len(t, host.requests, 3)
	for i, req := range host.requests {
		assert.Equal(t, i+1, req.Query["page"])
		assert.Equal(t, "name", req.Query["sort"])
		assert.Equal(t, "https://x/api/v1/accounts/3/contacts", req.URL)
	}

	var ids []float64
	for _, record := range records {
		ids = append(ids, record.(map[string]interface{})["id"].(float64))
	}
	assert.Equal(t, []float64{1, 2, 3, 4}, ids)

	assert.Equal(t, map[string]interface{}{"sort": "name"}, query, "caller query is not modified")
}

func TestApplicationRequestAllItems_SinglePageEnvelope(t *testing.T) {
	host := newFakeHost(nil).respond(envelope(1, 2, 50, 1, 2))

	records, err := ApplicationRequestAllItems(context.Background(), host, Request{Method: "GET", Endpoint: "contacts"})
	require.NoError(t, err)

	assert.Len(t, host.requests, 1)
	assert.Equal(t, []interface{}{
		map[string]interface{}{"id": float64(1)},
		map[string]interface{}{"id": float64(2)},
	}, records)
}

func TestApplicationRequestAllItems_ExactMultipleStops(t *testing.T) {
	host := newFakeHost(nil).respond(
		envelope(1, 100, 50, 1),
		envelope(2, 100, 50, 2),
	)

	records, err := ApplicationRequestAllItems(context.Background(), host, Request{Method: "GET", Endpoint: "teams"})
	require.NoError(t, err)
	assert.Len(t, host.requests, 2)
	assert.Len(t, records, 2)
}

func TestApplicationRequestAllItems_NoMeta(t *testing.T) {
	tests := []struct {
		name     string
		response interface{}
		want     []interface{}
	}{
		{
			name:     "bare array",
			response: []interface{}{map[string]interface{}{"id": float64(1)}, map[string]interface{}{"id": float64(2)}},
			want:     []interface{}{map[string]interface{}{"id": float64(1)}, map[string]interface{}{"id": float64(2)}},
		},
		{
			name:     "payload without meta",
			response: map[string]interface{}{"payload": []interface{}{"a"}, "all_count": float64(500), "per_page": float64(1)},
			want:     []interface{}{"a"},
		},
		{
			name:     "single object",
			response: map[string]interface{}{"id": float64(9)},
			want:     []interface{}{map[string]interface{}{"id": float64(9)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := newFakeHost(nil).respond(tt.response)

			records, err := ApplicationRequestAllItems(context.Background(), host, Request{Method: "GET", Endpoint: "inboxes"})
			require.NoError(t, err)
			assert.Len(t, host.requests, 1)
			assert.Equal(t, tt.want, records)
		})
	}
}

func TestApplicationRequestAllItems_ErrorDiscardsRecords(t *testing.T) {
	host := newFakeHost(nil).
		respond(envelope(1, 120, 50, 1)).
		fail(errors.New("boom"))

	records, err := ApplicationRequestAllItems(context.Background(), host, Request{Method: "GET", Endpoint: "contacts"})

	assert.Nil(t, records)
	var opErr *operation.Error
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, operation.ErrorTypeAPI, opErr.Type)
	assert.Len(t, host.requests, 2)
}

func TestPageMeta_HasMore(t *testing.T) {
	tests := []struct {
		name string
		meta PageMeta
		want bool
	}{
		{"first of three", PageMeta{CurrentPage: 1, AllCount: 120, PerPage: 50}, true},
		{"second of three", PageMeta{CurrentPage: 2, AllCount: 120, PerPage: 50}, true},
		{"last of three", PageMeta{CurrentPage: 3, AllCount: 120, PerPage: 50}, false},
		{"exact multiple", PageMeta{CurrentPage: 2, AllCount: 100, PerPage: 50}, false},
		{"empty list", PageMeta{CurrentPage: 1, AllCount: 0, PerPage: 50}, false},
		// 2.1/0.7 is 3.0000000000000004 in float64, so page 3 asks for one
		// more page even though the exact quotient is 3.
		{"float boundary over-fetches", PageMeta{CurrentPage: 3, AllCount: 2.1, PerPage: 0.7}, true},
		{"zero per page divides to +Inf", PageMeta{CurrentPage: 7, AllCount: 10, PerPage: 0}, true},
		{"zero by zero is NaN", PageMeta{CurrentPage: 1, AllCount: 0, PerPage: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.meta.HasMore())
		})
	}
}

func TestClassifyPage(t *testing.T) {
	page := ClassifyPage(map[string]interface{}{
		"payload": []interface{}{"a", "b"},
		"meta":    map[string]interface{}{"current_page": "2", "all_count": float64(10), "per_page": float64(2)},
	})
	assert.Equal(t, PagePayload, page.Kind)
	assert.Equal(t, []interface{}{"a", "b"}, page.Records)
	require.NotNil(t, page.Meta)
	assert.Equal(t, PageMeta{CurrentPage: 2, AllCount: 10, PerPage: 2}, *page.Meta)

	assert.Equal(t, PageArray, ClassifyPage([]interface{}{}).Kind)
	assert.Equal(t, PageSingle, ClassifyPage("text").Kind)
	assert.Equal(t, []interface{}{nil}, ClassifyPage(nil).Records)
}

func TestClassifyPage_IncompleteMetaStops(t *testing.T) {
	tests := []struct {
		name string
		meta map[string]interface{}
		more bool
	}{
		{"missing per_page", map[string]interface{}{"current_page": float64(1), "all_count": float64(120)}, false},
		{"missing all_count", map[string]interface{}{"current_page": float64(1), "per_page": float64(50)}, false},
		{"non-numeric per_page", map[string]interface{}{"current_page": float64(1), "all_count": float64(120), "per_page": "many"}, false},
		{"null current_page counts as zero", map[string]interface{}{"current_page": nil, "all_count": float64(120), "per_page": float64(50)}, true},
		{"numeric strings", map[string]interface{}{"current_page": "1", "all_count": "120", "per_page": "50"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := ClassifyPage(map[string]interface{}{"payload": []interface{}{}, "meta": tt.meta})
			require.NotNil(t, page.Meta)
			assert.Equal(t, tt.more, page.Meta.HasMore())
		})
	}
}
