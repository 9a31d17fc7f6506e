package chatwoot

import (
	"context"
	"fmt"

	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/operation/api"
)

func inboxOperations() []*operation.Definition {
	return []*operation.Definition{
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "inbox",
				Operation:   "get",
				DisplayName: "Get",
				Description: "Get an inbox",
				Parameters:  []operation.ParameterInfo{idParam("inboxId", "ID of the inbox")},
			},
			Handler: getInbox,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "inbox",
				Operation:   "getAll",
				DisplayName: "Get Many",
				Description: "List inboxes",
				Tags:        tagsList,
				Parameters:  listParams(),
			},
			Handler: listInboxes,
		},
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "inbox",
				Operation:   "getAgentBot",
				DisplayName: "Get Agent Bot",
				Description: "Get the agent bot attached to an inbox",
				Parameters:  []operation.ParameterInfo{idParam("inboxId", "ID of the inbox")},
			},
			Handler: getInboxAgentBot,
		},
	}
}

func getInbox(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	return getInboxPath(ctx, host, itemIndex, "inboxes/%d")
}

func getInboxAgentBot(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	return getInboxPath(ctx, host, itemIndex, "inboxes/%d/agent_bot")
}

func getInboxPath(ctx context.Context, host operation.Host, itemIndex int, format string) (interface{}, error) {
	inboxID, err := api.NewParams(host, itemIndex).RequireInt("inboxId")
	if err != nil {
		return nil, err
	}

	response, err := ApplicationRequest(ctx, host, Request{
		Method:    "GET",
		Endpoint:  fmt.Sprintf(format, inboxID),
		ItemIndex: itemIndex,
	})
	if err != nil {
		return nil, err
	}
	return payloadOr(response), nil
}

func listInboxes(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	return listApplication(ctx, host, itemIndex, "inboxes", nil)
}
