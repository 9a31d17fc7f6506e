package chatwoot

import (
	"context"
	"fmt"

	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/operation/api"
)

var conversationStatuses = []string{"open", "resolved", "pending", "snoozed"}

func conversationOperations() []*operation.Definition {
	return []*operation.Definition{
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "conversation",
				Operation:   "get",
				DisplayName: "Get",
				Description: "Get a conversation",
				Parameters:  []operation.ParameterInfo{idParam("conversationId", "ID of the conversation")},
			},
			Handler: getConversation,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "conversation",
				Operation:   "getAll",
				DisplayName: "Get Many",
				Description: "List conversations",
				Tags:        tagsList,
				Parameters: withList(operation.ParameterInfo{
					Name:        "filters",
					Type:        operation.ParamCollection,
					Description: "Filter by status (" + joinOptions(conversationStatuses) + "), inbox, team or assignee type (all, assigned, unassigned, me)",
					Fields:      []string{"status", "inbox_id", "team_id", "assignee_type"},
				}),
			},
			Handler: listConversations,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "conversation",
				Operation:   "create",
				DisplayName: "Create",
				Description: "Start a conversation with a contact",
				Tags:        tagsWrite,
				Parameters: []operation.ParameterInfo{
					idParam("contactId", "ID of the contact"),
					idParam("inboxId", "ID of the inbox"),
					{
						Name:        "additionalFields",
						Type:        operation.ParamCollection,
						Description: "Initial status, assignee, team and first message",
						Fields:      []string{"status", "assignee_id", "team_id", "message"},
					},
				},
			},
			Handler: createConversation,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "conversation",
				Operation:   "toggleStatus",
				DisplayName: "Toggle Status",
				Description: "Change the status of a conversation",
				Tags:        tagsWrite,
				Parameters: []operation.ParameterInfo{
					idParam("conversationId", "ID of the conversation"),
					{Name: "status", Type: operation.ParamOptions, Description: "New status", Required: true, Options: conversationStatuses},
				},
			},
			Handler: toggleConversationStatus,
		},
	}
}

func getConversation(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	conversationID, err := api.NewParams(host, itemIndex).RequireInt("conversationId")
	if err != nil {
		return nil, err
	}

	response, err := ApplicationRequest(ctx, host, Request{
		Method:    "GET",
		Endpoint:  fmt.Sprintf("conversations/%d", conversationID),
		ItemIndex: itemIndex,
	})
	if err != nil {
		return nil, err
	}
	return payloadOr(response), nil
}

func listConversations(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	filters, err := api.NewParams(host, itemIndex).Object("filters")
	if err != nil {
		return nil, err
	}

	return listApplication(ctx, host, itemIndex, "conversations", RemoveEmptyFields(filters))
}

func createConversation(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	contactID, err := p.RequireInt("contactId")
	if err != nil {
		return nil, err
	}
	inboxID, err := p.RequireInt("inboxId")
	if err != nil {
		return nil, err
	}
	additionalFields, err := p.Object("additionalFields")
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"contact_id": contactID,
		"inbox_id":   inboxID,
	}
	for k, v := range additionalFields {
		body[k] = v
	}

	response, err := ApplicationRequest(ctx, host, Request{
		Method:    "POST",
		Endpoint:  "conversations",
		Body:      RemoveEmptyFields(body),
		ItemIndex: itemIndex,
	})
	if err != nil {
		return nil, err
	}
	return payloadOr(response), nil
}

func toggleConversationStatus(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	conversationID, err := p.RequireInt("conversationId")
	if err != nil {
		return nil, err
	}
	status, err := p.RequireString("status")
	if err != nil {
		return nil, err
	}

	response, err := ApplicationRequest(ctx, host, Request{
		Method:    "POST",
		Endpoint:  fmt.Sprintf("conversations/%d/toggle_status", conversationID),
		Body:      map[string]interface{}{"status": status},
		ItemIndex: itemIndex,
	})
	if err != nil {
		return nil, err
	}
	return payloadOr(response), nil
}
