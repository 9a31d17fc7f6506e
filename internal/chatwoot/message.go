package chatwoot

import (
	"context"
	"fmt"

	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/operation/api"
)

const msgInvalidContentAttributes = "Content attributes must be valid JSON"

var (
	messageTypes        = []string{"incoming", "outgoing"}
	messageContentTypes = []string{"text", "input_select", "cards", "form"}
)

func messageOperations() []*operation.Definition {
	conversationID := idParam("conversationId", "ID of the conversation")

	return []*operation.Definition{
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "message",
				Operation:   "create",
				DisplayName: "Create",
				Description: "Post a message to a conversation",
				Tags:        tagsWrite,
				Parameters: []operation.ParameterInfo{
					conversationID,
					{Name: "content", Type: operation.ParamString, Description: "Message text", Required: true},
					{Name: "messageType", Type: operation.ParamOptions, Description: "Direction of the message", Default: "outgoing", Options: messageTypes},
					{
						Name:        "additionalFields",
						Type:        operation.ParamCollection,
						Description: "private, content_type (" + joinOptions(messageContentTypes) + ") and content_attributes (JSON)",
						Fields:      []string{"private", "content_type", "content_attributes"},
					},
				},
			},
			Handler: createMessage,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "message",
				Operation:   "getAll",
				DisplayName: "Get Many",
				Description: "List the messages of a conversation",
				Tags:        tagsList,
				Parameters:  withList(conversationID),
			},
			Handler: listMessages,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "message",
				Operation:   "delete",
				DisplayName: "Delete",
				Description: "Delete a message",
				Tags:        tagsDestructive,
				Parameters:  []operation.ParameterInfo{conversationID, idParam("messageId", "ID of the message")},
			},
			Handler: deleteMessage,
		},
	}
}

// createMessage returns the raw response.
func createMessage(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	conversationID, err := p.RequireInt("conversationId")
	if err != nil {
		return nil, err
	}
	content, err := p.RequireString("content")
	if err != nil {
		return nil, err
	}
	additionalFields, err := p.Object("additionalFields")
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"content":      content,
		"message_type": p.String("messageType", "outgoing"),
	}
	for k, v := range additionalFields {
		body[k] = v
	}
	if err := api.ParseJSONField(body, "content_attributes", msgInvalidContentAttributes); err != nil {
		return nil, err
	}

	return ApplicationRequest(ctx, host, Request{
		Method:    "POST",
		Endpoint:  fmt.Sprintf("conversations/%d/messages", conversationID),
		Body:      RemoveEmptyFields(body),
		ItemIndex: itemIndex,
	})
}

func listMessages(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	conversationID, err := api.NewParams(host, itemIndex).RequireInt("conversationId")
	if err != nil {
		return nil, err
	}

	return listApplication(ctx, host, itemIndex, fmt.Sprintf("conversations/%d/messages", conversationID), nil)
}

func deleteMessage(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	conversationID, err := p.RequireInt("conversationId")
	if err != nil {
		return nil, err
	}
	messageID, err := p.RequireInt("messageId")
	if err != nil {
		return nil, err
	}

	if _, err := ApplicationRequest(ctx, host, Request{
		Method:    "DELETE",
		Endpoint:  fmt.Sprintf("conversations/%d/messages/%d", conversationID, messageID),
		ItemIndex: itemIndex,
	}); err != nil {
		return nil, err
	}
	return deleted(messageID), nil
}
