package chatwoot

import (
	"context"
	"fmt"

	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/operation/api"
)

func cannedResponseOperations() []*operation.Definition {
	return []*operation.Definition{
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "cannedResponse",
				Operation:   "getAll",
				DisplayName: "Get Many",
				Description: "List canned responses",
				Tags:        tagsList,
				Parameters:  listParams(),
			},
			Handler: listCannedResponses,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "cannedResponse",
				Operation:   "create",
				DisplayName: "Create",
				Description: "Create a canned response",
				Tags:        tagsWrite,
				Parameters: []operation.ParameterInfo{
					{Name: "short_code", Type: operation.ParamString, Description: "Short code used to insert the response", Required: true},
					{Name: "content", Type: operation.ParamString, Description: "Message content of the response", Required: true},
				},
			},
			Handler: createCannedResponse,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "cannedResponse",
				Operation:   "delete",
				DisplayName: "Delete",
				Description: "Delete a canned response",
				Tags:        tagsDestructive,
				Parameters:  []operation.ParameterInfo{idParam("cannedResponseId", "ID of the canned response")},
			},
			Handler: deleteCannedResponse,
		},
	}
}

func listCannedResponses(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	return listApplication(ctx, host, itemIndex, "canned_responses", nil)
}

func createCannedResponse(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	shortCode, err := p.RequireString("short_code")
	if err != nil {
		return nil, err
	}
	content, err := p.RequireString("content")
	if err != nil {
		return nil, err
	}

	response, err := ApplicationRequest(ctx, host, Request{
		Method:   "POST",
		Endpoint: "canned_responses",
		Body: map[string]interface{}{
			"short_code": shortCode,
			"content":    content,
		},
		ItemIndex: itemIndex,
	})
	if err != nil {
		return nil, err
	}
	return payloadOr(response), nil
}

func deleteCannedResponse(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	id, err := api.NewParams(host, itemIndex).RequireInt("cannedResponseId")
	if err != nil {
		return nil, err
	}

	if _, err := ApplicationRequest(ctx, host, Request{
		Method:    "DELETE",
		Endpoint:  fmt.Sprintf("canned_responses/%d", id),
		ItemIndex: itemIndex,
	}); err != nil {
		return nil, err
	}
	return deleted(id), nil
}
