package chatwoot

import (
	"context"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

func accountOperations() []*operation.Definition {
	return []*operation.Definition{
		{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIApplication,
				Resource:    "account",
				Operation:   "get",
				DisplayName: "Get",
				Description: "Get the account the credential is scoped to",
			},
			Handler: getAccount,
		},
	}
}

func getAccount(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	return ApplicationRequest(ctx, host, Request{Method: "GET", ItemIndex: itemIndex})
}
