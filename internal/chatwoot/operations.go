package chatwoot

import (
	"context"
	"fmt"
	"strings"

	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/operation/api"
)

// DefaultLimit is the page size used when returnAll is off.
const DefaultLimit = 50

// Definitions returns the dispatch table entries for all three APIs.
func Definitions() []*operation.Definition {
	var defs []*operation.Definition

	// Application API
	defs = append(defs, accountOperations()...)
	defs = append(defs, agentOperations()...)
	defs = append(defs, cannedResponseOperations()...)
	defs = append(defs, contactOperations()...)
	defs = append(defs, conversationOperations()...)
	defs = append(defs, inboxOperations()...)
	defs = append(defs, messageOperations()...)
	defs = append(defs, reportOperations()...)
	defs = append(defs, teamOperations()...)
	defs = append(defs, webhookOperations()...)

	// Client API
	defs = append(defs, clientOperations()...)

	// Platform API
	defs = append(defs, platformOperations()...)

	return defs
}

// Register adds every Chatwoot operation to reg.
func Register(reg *operation.Registry) error {
	if err := reg.Register(Definitions()...); err != nil {
		return fmt.Errorf("registering chatwoot operations: %w", err)
	}
	return nil
}

// NewRegistry returns a registry holding every Chatwoot operation.
func NewRegistry() (*operation.Registry, error) {
	reg := operation.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// payloadOr returns response.payload when it is set and non-empty, else the
// response itself.
func payloadOr(response interface{}) interface{} {
	if m, ok := response.(map[string]interface{}); ok {
		if payload, found := m["payload"]; found && !isFalsy(payload) {
			return payload
		}
	}
	return response
}

func deleted(id int64) map[string]interface{} {
	return map[string]interface{}{"success": true, "id": id}
}

// listApplication serves the getAll operations of the Application API:
// returnAll drains every page, otherwise one page of limit records is fetched.
func listApplication(ctx context.Context, host operation.Host, itemIndex int, endpoint string, query map[string]interface{}) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	if p.Bool("returnAll", false) {
		return ApplicationRequestAllItems(ctx, host, Request{
			Method:    "GET",
			Endpoint:  endpoint,
			Query:     query,
			ItemIndex: itemIndex,
		})
	}

	limit, err := p.Int("limit", DefaultLimit)
	if err != nil {
		return nil, err
	}

	qs := make(map[string]interface{}, len(query)+1)
	for k, v := range query {
		qs[k] = v
	}
	qs["per_page"] = limit

	response, err := ApplicationRequest(ctx, host, Request{
		Method:    "GET",
		Endpoint:  endpoint,
		Query:     qs,
		ItemIndex: itemIndex,
	})
	if err != nil {
		return nil, err
	}
	return payloadOr(response), nil
}

// Shared parameter descriptions.

func idParam(name, description string) operation.ParameterInfo {
	return operation.ParameterInfo{
		Name:        name,
		Type:        operation.ParamNumber,
		Description: description,
		Required:    true,
	}
}

func listParams() []operation.ParameterInfo {
	return []operation.ParameterInfo{
		{
			Name:        "returnAll",
			Type:        operation.ParamBoolean,
			Description: "Whether to return all results or only up to a given limit",
			Default:     false,
		},
		{
			Name:        "limit",
			Type:        operation.ParamNumber,
			Description: "Max number of results to return",
			Default:     DefaultLimit,
		},
	}
}

func joinOptions(options []string) string {
	return strings.Join(options, ", ")
}

func withList(params ...operation.ParameterInfo) []operation.ParameterInfo {
	return append(params, listParams()...)
}

var (
	tagsList        = []string{operation.TagPaginated}
	tagsWrite       = []string{operation.TagWrite}
	tagsDestructive = []string{operation.TagWrite, operation.TagDestructive}
)

// applicationPayload sends req and unwraps the payload of the response.
func applicationPayload(ctx context.Context, host operation.Host, req Request) (interface{}, error) {
	response, err := ApplicationRequest(ctx, host, req)
	if err != nil {
		return nil, err
	}
	return payloadOr(response), nil
}

// mergeFields returns base overlaid with extra.
func mergeFields(base, extra map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
