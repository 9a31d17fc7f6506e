package chatwoot

import (
	"context"
	"fmt"

	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/operation/api"
)

var agentRoles = []string{"agent", "administrator"}

func agentOperations() []*operation.Definition {
	return []*operation.Definition{
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "agent",
				Operation:   "getAll",
				DisplayName: "Get Many",
				Description: "List the agents of the account",
				Tags:        tagsList,
				Parameters:  listParams(),
			},
			Handler: listAgents,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "agent",
				Operation:   "create",
				DisplayName: "Create",
				Description: "Add an agent to the account",
				Tags:        tagsWrite,
				Parameters: []operation.ParameterInfo{
					{Name: "name", Type: operation.ParamString, Description: "Full name of the agent", Required: true},
					{Name: "email", Type: operation.ParamString, Description: "Email address of the agent", Required: true},
					{Name: "role", Type: operation.ParamOptions, Description: "Role of the agent", Default: "agent", Options: agentRoles},
				},
			},
			Handler: createAgent,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "agent",
				Operation:   "update",
				DisplayName: "Update",
				Description: "Update an agent",
				Tags:        tagsWrite,
				Parameters: []operation.ParameterInfo{
					idParam("agentId", "ID of the agent"),
					{Name: "updateFields", Type: operation.ParamCollection, Description: "Fields to update", Fields: []string{"name", "role", "availability", "auto_offline"}},
				},
			},
			Handler: updateAgent,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "agent",
				Operation:   "delete",
				DisplayName: "Delete",
				Description: "Remove an agent from the account",
				Tags:        tagsDestructive,
				Parameters:  []operation.ParameterInfo{idParam("agentId", "ID of the agent")},
			},
			Handler: deleteAgent,
		},
	}
}

func listAgents(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	return listApplication(ctx, host, itemIndex, "agents", nil)
}

func createAgent(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	name, err := p.RequireString("name")
	if err != nil {
		return nil, err
	}
	email, err := p.RequireString("email")
	if err != nil {
		return nil, err
	}

	return ApplicationRequest(ctx, host, Request{
		Method:   "POST",
		Endpoint: "agents",
		Body: map[string]interface{}{
			"name":  name,
			"email": email,
			"role":  p.String("role", "agent"),
		},
		ItemIndex: itemIndex,
	})
}

func updateAgent(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	agentID, err := p.RequireInt("agentId")
	if err != nil {
		return nil, err
	}
	updateFields, err := p.Object("updateFields")
	if err != nil {
		return nil, err
	}

	return ApplicationRequest(ctx, host, Request{
		Method:    "PATCH",
		Endpoint:  fmt.Sprintf("agents/%d", agentID),
		Body:      updateFields,
		ItemIndex: itemIndex,
	})
}

// deleteAgent returns the raw response, unlike the other delete operations.
func deleteAgent(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	agentID, err := api.NewParams(host, itemIndex).RequireInt("agentId")
	if err != nil {
		return nil, err
	}

	return ApplicationRequest(ctx, host, Request{
		Method:    "DELETE",
		Endpoint:  fmt.Sprintf("agents/%d", agentID),
		ItemIndex: itemIndex,
	})
}
