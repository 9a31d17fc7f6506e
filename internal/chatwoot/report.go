package chatwoot

import (
	"context"
	"fmt"
	"time"

	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/operation/api"
)

var (
	reportMetrics = []string{
		"conversations_count",
		"incoming_messages_count",
		"outgoing_messages_count",
		"avg_first_response_time",
		"avg_resolution_time",
		"resolutions_count",
	}
	reportTypes = []string{"account", "agent", "inbox", "label", "team"}
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func reportParams(withID bool) []operation.ParameterInfo {
	params := []operation.ParameterInfo{
		{Name: "metric", Type: operation.ParamOptions, Description: "Metric to report", Required: true, Default: "conversations_count", Options: reportMetrics},
		{Name: "type", Type: operation.ParamOptions, Description: "Grouping of the report", Required: true, Default: "account", Options: reportTypes},
		{Name: "since", Type: operation.ParamDateTime, Description: "Start of the reporting window"},
		{Name: "until", Type: operation.ParamDateTime, Description: "End of the reporting window"},
	}
	if withID {
		params = append(params, operation.ParameterInfo{
			Name:        "id",
			Type:        operation.ParamNumber,
			Description: "ID of the agent, inbox, label or team the report is about",
			Default:     0,
		})
	}
	return params
}

func reportOperations() []*operation.Definition {
	return []*operation.Definition{
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "report",
				Operation:   "getAccountSummary",
				DisplayName: "Get Account Summary",
				Description: "Get a metric summary for the account",
				Parameters:  reportParams(false),
			},
			Handler: func(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
				return getReport(ctx, host, itemIndex, "reports", false)
			},
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "report",
				Operation:   "getAgentSummary",
				DisplayName: "Get Agent Summary",
				Description: "Get a metric summary for one agent",
				Parameters:  reportParams(true),
			},
			Handler: func(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
				return getReport(ctx, host, itemIndex, "reports", true)
			},
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "report",
				Operation:   "getConversations",
				DisplayName: "Get Conversations",
				Description: "Get conversation metrics",
				Parameters:  reportParams(false),
			},
			Handler: func(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
				return getReport(ctx, host, itemIndex, "reports/conversations", false)
			},
		},
	}
}

// getReport returns the raw response of a report endpoint.
func getReport(ctx context.Context, host operation.Host, itemIndex int, endpoint string, withID bool) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	query := map[string]interface{}{
		"metric": p.String("metric", "conversations_count"),
		"type":   p.String("type", "account"),
	}

	for _, name := range []string{"since", "until"} {
		value := p.String(name, "")
		if value == "" {
			continue
		}
		ts, err := ParseTimestamp(value)
		if err != nil {
			return nil, operation.NewValidationError(fmt.Sprintf("Parameter %q must be a date", name))
		}
		query[name] = ts.Unix()
	}

	if withID {
		id, err := p.Int("id", 0)
		if err != nil {
			return nil, err
		}
		if id != 0 {
			query["id"] = id
		}
	}

	return ApplicationRequest(ctx, host, Request{
		Method:    "GET",
		Endpoint:  endpoint,
		Query:     query,
		ItemIndex: itemIndex,
	})
}

// ParseTimestamp accepts RFC 3339 timestamps and plain dates. Values without
// a zone are read as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
