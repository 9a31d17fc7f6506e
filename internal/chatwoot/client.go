package chatwoot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/operation/api"
)

const msgInvalidSubmittedValues = "Submitted values must be valid JSON"

var clientContactFields = []string{"name", "email", "phone_number", "avatar_url", "custom_attributes"}

func clientOperations() []*operation.Definition {
	contactIdentifier := operation.ParameterInfo{
		Name:        "contactIdentifier",
		Type:        operation.ParamString,
		Description: "Identifier of the contact (defaults to the credential's contact identifier)",
	}
	conversationID := idParam("conversationId", "ID of the conversation")

	return []*operation.Definition{
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIClient,
				Resource:    "clientContact",
				Operation:   "create",
				DisplayName: "Create",
				Description: "Create a contact in the inbox",
				Tags:        tagsWrite,
				Parameters: []operation.ParameterInfo{
					{Name: "identifier", Type: operation.ParamString, Description: "External identifier of the contact", Required: true},
					{Name: "additionalFields", Type: operation.ParamCollection, Description: "Contact attributes", Fields: clientContactFields},
				},
			},
			Handler: createClientContact,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIClient,
				Resource:    "clientContact",
				Operation:   "get",
				DisplayName: "Get",
				Description: "Get the contact",
				Parameters:  []operation.ParameterInfo{contactIdentifier},
			},
			Handler: getClientContact,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIClient,
				Resource:    "clientContact",
				Operation:   "update",
				DisplayName: "Update",
				Description: "Update the contact",
				Tags:        tagsWrite,
				Parameters: []operation.ParameterInfo{
					contactIdentifier,
					{Name: "additionalFields", Type: operation.ParamCollection, Description: "Contact attributes to update", Fields: clientContactFields},
				},
			},
			Handler: updateClientContact,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIClient,
				Resource:    "clientConversation",
				Operation:   "create",
				DisplayName: "Create",
				Description: "Start a conversation for a contact",
				Tags:        tagsWrite,
				Parameters: []operation.ParameterInfo{
					{Name: "contactIdentifier", Type: operation.ParamString, Description: "Identifier of the contact", Required: true},
				},
			},
			Handler: createClientConversation,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIClient,
				Resource:    "clientConversation",
				Operation:   "getAll",
				DisplayName: "Get Many",
				Description: "List the conversations of the contact",
			},
			Handler: listClientConversations,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIClient,
				Resource:    "clientConversation",
				Operation:   "getMessages",
				DisplayName: "Get Messages",
				Description: "List the messages of a conversation",
				Parameters:  []operation.ParameterInfo{conversationID},
			},
			Handler: listClientMessages,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIClient,
				Resource:    "clientMessage",
				Operation:   "create",
				DisplayName: "Create",
				Description: "Send a message as the contact",
				Tags:        tagsWrite,
				Parameters: []operation.ParameterInfo{
					conversationID,
					{Name: "content", Type: operation.ParamString, Description: "Message text", Required: true},
				},
			},
			Handler: createClientMessage,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIClient,
				Resource:    "clientMessage",
				Operation:   "update",
				DisplayName: "Update",
				Description: "Submit values for an interactive message",
				Tags:        tagsWrite,
				Parameters: []operation.ParameterInfo{
					conversationID,
					idParam("messageId", "ID of the message"),
					{Name: "submittedValues", Type: operation.ParamJSON, Description: "Values submitted for the message form", Required: true, Default: "{}"},
				},
			},
			Handler: updateClientMessage,
		},
	}
}

// clientContactPath resolves the contact the Client API call is about:
// the contactIdentifier parameter when set, else the credential's.
func clientContactPath(ctx context.Context, host operation.Host, itemIndex int) (string, error) {
	identifier := api.NewParams(host, itemIndex).String("contactIdentifier", "")
	if identifier == "" {
		creds, err := credentials(ctx, host, CredentialClient, Request{ItemIndex: itemIndex})
		if err != nil {
			return "", err
		}
		identifier = creds.String(FieldContactIdentifier)
	}
	if identifier == "" {
		return "", operation.NewMissingFieldsError([]string{"contactIdentifier"})
	}
	return "contacts/" + url.PathEscape(identifier), nil
}

func createClientContact(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	identifier, err := p.RequireString("identifier")
	if err != nil {
		return nil, err
	}
	additionalFields, err := p.Object("additionalFields")
	if err != nil {
		return nil, err
	}

	body := mergeFields(map[string]interface{}{"identifier": identifier}, additionalFields)
	if err := api.ParseJSONField(body, "custom_attributes", msgInvalidCustomAttributes); err != nil {
		return nil, err
	}

	return ClientRequest(ctx, host, Request{
		Method:    "POST",
		Endpoint:  "contacts",
		Body:      RemoveEmptyFields(body),
		ItemIndex: itemIndex,
	})
}

func getClientContact(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	path, err := clientContactPath(ctx, host, itemIndex)
	if err != nil {
		return nil, err
	}

	return ClientRequest(ctx, host, Request{Method: "GET", Endpoint: path, ItemIndex: itemIndex})
}

func updateClientContact(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	additionalFields, err := api.NewParams(host, itemIndex).Object("additionalFields")
	if err != nil {
		return nil, err
	}
	if err := api.ParseJSONField(additionalFields, "custom_attributes", msgInvalidCustomAttributes); err != nil {
		return nil, err
	}

	path, err := clientContactPath(ctx, host, itemIndex)
	if err != nil {
		return nil, err
	}

	return ClientRequest(ctx, host, Request{
		Method:    "PATCH",
		Endpoint:  path,
		Body:      RemoveEmptyFields(additionalFields),
		ItemIndex: itemIndex,
	})
}

func createClientConversation(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	contactIdentifier, err := api.NewParams(host, itemIndex).RequireString("contactIdentifier")
	if err != nil {
		return nil, err
	}

	return ClientRequest(ctx, host, Request{
		Method:    "POST",
		Endpoint:  "conversations",
		Body:      map[string]interface{}{"contact_identifier": contactIdentifier},
		ItemIndex: itemIndex,
	})
}

func listClientConversations(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	return ClientRequest(ctx, host, Request{Method: "GET", Endpoint: "conversations", ItemIndex: itemIndex})
}

func listClientMessages(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	conversationID, err := api.NewParams(host, itemIndex).RequireInt("conversationId")
	if err != nil {
		return nil, err
	}

	return ClientRequest(ctx, host, Request{
		Method:    "GET",
		Endpoint:  fmt.Sprintf("conversations/%d/messages", conversationID),
		ItemIndex: itemIndex,
	})
}

func createClientMessage(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	conversationID, err := p.RequireInt("conversationId")
	if err != nil {
		return nil, err
	}
	content, err := p.RequireString("content")
	if err != nil {
		return nil, err
	}

	return ClientRequest(ctx, host, Request{
		Method:    "POST",
		Endpoint:  fmt.Sprintf("conversations/%d/messages", conversationID),
		Body:      map[string]interface{}{"content": content},
		ItemIndex: itemIndex,
	})
}

func updateClientMessage(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	conversationID, err := p.RequireInt("conversationId")
	if err != nil {
		return nil, err
	}
	messageID, err := p.RequireInt("messageId")
	if err != nil {
		return nil, err
	}

	raw, ok := p.Raw("submittedValues")
	if !ok {
		return nil, operation.NewMissingFieldsError([]string{"submittedValues"})
	}
	submitted := raw
	if s, isString := raw.(string); isString {
		var parsed interface{}
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			return nil, &operation.Error{
				Type:    operation.ErrorTypeValidation,
				Message: msgInvalidSubmittedValues,
				Cause:   err,
			}
		}
		submitted = parsed
	}

	return ClientRequest(ctx, host, Request{
		Method:    "PATCH",
		Endpoint:  fmt.Sprintf("conversations/%d/messages/%d", conversationID, messageID),
		Body:      map[string]interface{}{"submitted_values": submitted},
		ItemIndex: itemIndex,
	})
}
