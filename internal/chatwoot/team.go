package chatwoot

import (
	"context"
	"fmt"

	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/operation/api"
)

func teamOperations() []*operation.Definition {
	teamID := idParam("teamId", "ID of the team")

	return []*operation.Definition{
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "team",
				Operation:   "get",
				DisplayName: "Get",
				Description: "Get a team",
				Parameters:  []operation.ParameterInfo{teamID},
			},
			Handler: getTeam,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "team",
				Operation:   "getAll",
				DisplayName: "Get Many",
				Description: "List teams",
				Tags:        tagsList,
				Parameters:  listParams(),
			},
			Handler: listTeams,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "team",
				Operation:   "create",
				DisplayName: "Create",
				Description: "Create a team",
				Tags:        tagsWrite,
				Parameters: []operation.ParameterInfo{
					{Name: "name", Type: operation.ParamString, Description: "Name of the team", Required: true},
					{Name: "additionalFields", Type: operation.ParamCollection, Description: "Team settings", Fields: []string{"description", "allow_auto_assign"}},
				},
			},
			Handler: createTeam,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "team",
				Operation:   "update",
				DisplayName: "Update",
				Description: "Update a team",
				Tags:        tagsWrite,
				Parameters: []operation.ParameterInfo{
					teamID,
					{Name: "updateFields", Type: operation.ParamCollection, Description: "Team settings to update", Fields: []string{"name", "description", "allow_auto_assign"}},
				},
			},
			Handler: updateTeam,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "team",
				Operation:   "delete",
				DisplayName: "Delete",
				Description: "Delete a team",
				Tags:        tagsDestructive,
				Parameters:  []operation.ParameterInfo{teamID},
			},
			Handler: deleteTeam,
		},
	}
}

func getTeam(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	teamID, err := api.NewParams(host, itemIndex).RequireInt("teamId")
	if err != nil {
		return nil, err
	}

	return applicationPayload(ctx, host, Request{
		Method:    "GET",
		Endpoint:  fmt.Sprintf("teams/%d", teamID),
		ItemIndex: itemIndex,
	})
}

func listTeams(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	return listApplication(ctx, host, itemIndex, "teams", nil)
}

func createTeam(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	name, err := p.RequireString("name")
	if err != nil {
		return nil, err
	}
	additionalFields, err := p.Object("additionalFields")
	if err != nil {
		return nil, err
	}

	return applicationPayload(ctx, host, Request{
		Method:    "POST",
		Endpoint:  "teams",
		Body:      RemoveEmptyFields(mergeFields(map[string]interface{}{"name": name}, additionalFields)),
		ItemIndex: itemIndex,
	})
}

func updateTeam(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	teamID, err := p.RequireInt("teamId")
	if err != nil {
		return nil, err
	}
	updateFields, err := p.Object("updateFields")
	if err != nil {
		return nil, err
	}

	return applicationPayload(ctx, host, Request{
		Method:    "PATCH",
		Endpoint:  fmt.Sprintf("teams/%d", teamID),
		Body:      RemoveEmptyFields(updateFields),
		ItemIndex: itemIndex,
	})
}

func deleteTeam(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	teamID, err := api.NewParams(host, itemIndex).RequireInt("teamId")
	if err != nil {
		return nil, err
	}

	if _, err := ApplicationRequest(ctx, host, Request{
		Method:    "DELETE",
		Endpoint:  fmt.Sprintf("teams/%d", teamID),
		ItemIndex: itemIndex,
	}); err != nil {
		return nil, err
	}
	return deleted(teamID), nil
}
