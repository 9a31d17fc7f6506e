package chatwoot

import (
	"context"
	"fmt"

	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/operation/api"
)

// WebhookEvents lists the events a webhook can subscribe to.
var WebhookEvents = []string{
	"conversation_created",
	"conversation_updated",
	"conversation_resolved",
	"conversation_opened",
	"message_created",
	"message_updated",
	"webwidget_triggered",
	"contact_created",
	"contact_updated",
}

func webhookOperations() []*operation.Definition {
	webhookID := idParam("webhookId", "ID of the webhook")
	subscriptions := "subscriptions is a list of: " + joinOptions(WebhookEvents)

	return []*operation.Definition{
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "webhook",
				Operation:   "getAll",
				DisplayName: "Get Many",
				Description: "List webhooks",
			},
			Handler: listWebhooks,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "webhook",
				Operation:   "create",
				DisplayName: "Create",
				Description: "Register a webhook",
				Tags:        tagsWrite,
				Parameters: []operation.ParameterInfo{
					{Name: "url", Type: operation.ParamString, Description: "URL events are delivered to", Required: true},
					{Name: "additionalFields", Type: operation.ParamCollection, Description: subscriptions, Fields: []string{"subscriptions"}},
				},
			},
			Handler: createWebhook,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "webhook",
				Operation:   "update",
				DisplayName: "Update",
				Description: "Update a webhook",
				Tags:        tagsWrite,
				Parameters: []operation.ParameterInfo{
					webhookID,
					{Name: "updateFields", Type: operation.ParamCollection, Description: subscriptions, Fields: []string{"url", "subscriptions"}},
				},
			},
			Handler: updateWebhook,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "webhook",
				Operation:   "delete",
				DisplayName: "Delete",
				Description: "Delete a webhook",
				Tags:        tagsDestructive,
				Parameters:  []operation.ParameterInfo{webhookID},
			},
			Handler: deleteWebhook,
		},
	}
}

// listWebhooks fetches the single page the endpoint serves.
func listWebhooks(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	return applicationPayload(ctx, host, Request{Method: "GET", Endpoint: "webhooks", ItemIndex: itemIndex})
}

func createWebhook(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	target, err := p.RequireString("url")
	if err != nil {
		return nil, err
	}
	additionalFields, err := p.Object("additionalFields")
	if err != nil {
		return nil, err
	}

	return applicationPayload(ctx, host, Request{
		Method:    "POST",
		Endpoint:  "webhooks",
		Body:      RemoveEmptyFields(mergeFields(map[string]interface{}{"url": target}, additionalFields)),
		ItemIndex: itemIndex,
	})
}

func updateWebhook(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	webhookID, err := p.RequireInt("webhookId")
	if err != nil {
		return nil, err
	}
	updateFields, err := p.Object("updateFields")
	if err != nil {
		return nil, err
	}

	return applicationPayload(ctx, host, Request{
		Method:    "PATCH",
		Endpoint:  fmt.Sprintf("webhooks/%d", webhookID),
		Body:      RemoveEmptyFields(updateFields),
		ItemIndex: itemIndex,
	})
}

func deleteWebhook(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	webhookID, err := api.NewParams(host, itemIndex).RequireInt("webhookId")
	if err != nil {
		return nil, err
	}

	if _, err := ApplicationRequest(ctx, host, Request{
		Method:    "DELETE",
		Endpoint:  fmt.Sprintf("webhooks/%d", webhookID),
		ItemIndex: itemIndex,
	}); err != nil {
		return nil, err
	}
	return deleted(webhookID), nil
}
