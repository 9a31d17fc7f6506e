package chatwoot

import (
	"context"
	"fmt"

	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/operation/api"
)

const msgInvalidCustomAttributes = "Custom attributes must be valid JSON"

var (
	contactFields      = []string{"name", "email", "phone_number", "avatar_url", "identifier", "custom_attributes"}
	contactSortOptions = []string{"name", "-name", "email", "-email", "-last_activity_at", "last_activity_at"}
	searchSortOptions  = []string{"name", "email", "phone_number"}
)

func contactOperations() []*operation.Definition {
	return []*operation.Definition{
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "contact",
				Operation:   "get",
				DisplayName: "Get",
				Description: "Get a contact",
				Parameters:  []operation.ParameterInfo{idParam("contactId", "ID of the contact")},
			},
			Handler: getContact,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "contact",
				Operation:   "getAll",
				DisplayName: "Get Many",
				Description: "List contacts",
				Tags:        tagsList,
				Parameters: withList(operation.ParameterInfo{
					Name:        "options",
					Type:        operation.ParamCollection,
					Description: "Sort order (sort: " + joinOptions(contactSortOptions) + ")",
					Fields:      []string{"sort"},
				}),
			},
			Handler: listContacts,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "contact",
				Operation:   "create",
				DisplayName: "Create",
				Description: "Create a contact in an inbox",
				Tags:        tagsWrite,
				Parameters: []operation.ParameterInfo{
					idParam("inboxId", "ID of the inbox the contact belongs to"),
					{Name: "additionalFields", Type: operation.ParamCollection, Description: "Contact attributes", Fields: contactFields},
				},
			},
			Handler: createContact,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "contact",
				Operation:   "update",
				DisplayName: "Update",
				Description: "Update a contact",
				Tags:        tagsWrite,
				Parameters: []operation.ParameterInfo{
					idParam("contactId", "ID of the contact"),
					{Name: "updateFields", Type: operation.ParamCollection, Description: "Contact attributes to update", Fields: contactFields},
				},
			},
			Handler: updateContact,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "contact",
				Operation:   "delete",
				DisplayName: "Delete",
				Description: "Delete a contact",
				Tags:        tagsDestructive,
				Parameters:  []operation.ParameterInfo{idParam("contactId", "ID of the contact")},
			},
			Handler: deleteContact,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "contact",
				Operation:   "search",
				DisplayName: "Search",
				Description: "Search contacts by name, email, phone number or identifier",
				Parameters: []operation.ParameterInfo{
					{Name: "query", Type: operation.ParamString, Description: "Search term", Required: true},
					{
						Name:        "options",
						Type:        operation.ParamCollection,
						Description: "Sort order and page (sort: " + joinOptions(searchSortOptions) + ")",
						Fields:      []string{"sort", "page"},
					},
				},
			},
			Handler: searchContacts,
		},
	}
}

func getContact(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	contactID, err := api.NewParams(host, itemIndex).RequireInt("contactId")
	if err != nil {
		return nil, err
	}

	response, err := ApplicationRequest(ctx, host, Request{
		Method:    "GET",
		Endpoint:  fmt.Sprintf("contacts/%d", contactID),
		ItemIndex: itemIndex,
	})
	if err != nil {
		return nil, err
	}
	return payloadOr(response), nil
}

func listContacts(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	options, err := api.NewParams(host, itemIndex).Object("options")
	if err != nil {
		return nil, err
	}

	query := map[string]interface{}{}
	if sort, ok := options["sort"]; ok && !isFalsy(sort) {
		query["sort"] = sort
	}

	return listApplication(ctx, host, itemIndex, "contacts", query)
}

func createContact(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	inboxID, err := p.RequireInt("inboxId")
	if err != nil {
		return nil, err
	}
	additionalFields, err := p.Object("additionalFields")
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{"inbox_id": inboxID}
	for k, v := range additionalFields {
		body[k] = v
	}
	if err := api.ParseJSONField(body, "custom_attributes", msgInvalidCustomAttributes); err != nil {
		return nil, err
	}

	response, err := ApplicationRequest(ctx, host, Request{
		Method:    "POST",
		Endpoint:  "contacts",
		Body:      RemoveEmptyFields(body),
		ItemIndex: itemIndex,
	})
	if err != nil {
		return nil, err
	}
	return payloadOr(response), nil
}

func updateContact(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	contactID, err := p.RequireInt("contactId")
	if err != nil {
		return nil, err
	}
	updateFields, err := p.Object("updateFields")
	if err != nil {
		return nil, err
	}
	if err := api.ParseJSONField(updateFields, "custom_attributes", msgInvalidCustomAttributes); err != nil {
		return nil, err
	}

	response, err := ApplicationRequest(ctx, host, Request{
		Method:    "PUT",
		Endpoint:  fmt.Sprintf("contacts/%d", contactID),
		Body:      RemoveEmptyFields(updateFields),
		ItemIndex: itemIndex,
	})
	if err != nil {
		return nil, err
	}
	return payloadOr(response), nil
}

func deleteContact(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	contactID, err := api.NewParams(host, itemIndex).RequireInt("contactId")
	if err != nil {
		return nil, err
	}

	if _, err := ApplicationRequest(ctx, host, Request{
		Method:    "DELETE",
		Endpoint:  fmt.Sprintf("contacts/%d", contactID),
		ItemIndex: itemIndex,
	}); err != nil {
		return nil, err
	}
	return deleted(contactID), nil
}

func searchContacts(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	q, err := p.RequireString("query")
	if err != nil {
		return nil, err
	}
	options, err := p.Object("options")
	if err != nil {
		return nil, err
	}

	query := map[string]interface{}{"q": q}
	for _, key := range []string{"sort", "page"} {
		if v, ok := options[key]; ok && !isFalsy(v) {
			query[key] = v
		}
	}

	response, err := ApplicationRequest(ctx, host, Request{
		Method:    "GET",
		Endpoint:  "contacts/search",
		Query:     query,
		ItemIndex: itemIndex,
	})
	if err != nil {
		return nil, err
	}
	return payloadOr(response), nil
}
