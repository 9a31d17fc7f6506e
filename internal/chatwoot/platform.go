package chatwoot

import (
	"context"
	"fmt"

	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/operation/api"
)

// platformCRUD describes a Platform API resource served by the generic
// get/getAll/create/update/delete handlers below.
type platformCRUD struct {
	resource string
	noun     string
	path     string
	idParam  string
}

var (
	platformAccounts  = platformCRUD{resource: "platformAccount", noun: "account", path: "accounts", idParam: "accountId"}
	platformUsers     = platformCRUD{resource: "platformUser", noun: "user", path: "users", idParam: "userId"}
	platformAgentBots = platformCRUD{resource: "platformAgentBot", noun: "agent bot", path: "agent_bots", idParam: "agentBotId"}
)

func platformOperations() []*operation.Definition {
	var defs []*operation.Definition

	// Accounts
	defs = append(defs, platformAccounts.read()...)
	defs = append(defs,
		platformAccounts.define("create", "Create", "Create an account", tagsWrite,
			[]operation.ParameterInfo{{Name: "name", Type: operation.ParamString, Description: "Name of the account", Required: true}},
			platformAccounts.create(func(p *api.Params) (map[string]interface{}, error) {
				name, err := p.RequireString("name")
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"name": name}, nil
			})),
		platformAccounts.define("update", "Update", "Rename an account", tagsWrite,
			[]operation.ParameterInfo{
				idParam("accountId", "ID of the account"),
				{Name: "name", Type: operation.ParamString, Description: "New name of the account", Required: true},
			},
			platformAccounts.update(func(p *api.Params) (map[string]interface{}, error) {
				name, err := p.RequireString("name")
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"name": name}, nil
			})),
		platformAccounts.remove(),
	)

	// Users
	defs = append(defs, platformUsers.read()...)
	defs = append(defs,
		platformUsers.define("create", "Create", "Create a user", tagsWrite,
			[]operation.ParameterInfo{
				{Name: "name", Type: operation.ParamString, Description: "Full name of the user", Required: true},
				{Name: "email", Type: operation.ParamString, Description: "Email address of the user", Required: true},
				{Name: "password", Type: operation.ParamString, Description: "Initial password of the user", Required: true},
			},
			platformUsers.create(func(p *api.Params) (map[string]interface{}, error) {
				body := map[string]interface{}{}
				for _, name := range []string{"name", "email", "password"} {
					value, err := p.RequireString(name)
					if err != nil {
						return nil, err
					}
					body[name] = value
				}
				return body, nil
			})),
		platformUsers.define("update", "Update", "Rename a user", tagsWrite,
			[]operation.ParameterInfo{
				idParam("userId", "ID of the user"),
				{Name: "name", Type: operation.ParamString, Description: "New name of the user", Required: true},
			},
			platformUsers.update(func(p *api.Params) (map[string]interface{}, error) {
				name, err := p.RequireString("name")
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"name": name}, nil
			})),
		platformUsers.remove(),
	)

	// Account users
	defs = append(defs, accountUserOperations()...)

	// Agent bots
	defs = append(defs, platformAgentBots.read()...)
	defs = append(defs,
		platformAgentBots.define("create", "Create", "Create an agent bot", tagsWrite,
			[]operation.ParameterInfo{
				{Name: "name", Type: operation.ParamString, Description: "Name of the agent bot", Required: true},
				{Name: "outgoing_url", Type: operation.ParamString, Description: "URL the bot receives events on"},
			},
			platformAgentBots.create(func(p *api.Params) (map[string]interface{}, error) {
				name, err := p.RequireString("name")
				if err != nil {
					return nil, err
				}
				body := map[string]interface{}{"name": name}
				if outgoingURL := p.String("outgoing_url", ""); outgoingURL != "" {
					body["outgoing_url"] = outgoingURL
				}
				return body, nil
			})),
		platformAgentBots.define("update", "Update", "Change the outgoing URL of an agent bot", tagsWrite,
			[]operation.ParameterInfo{
				idParam("agentBotId", "ID of the agent bot"),
				{Name: "outgoing_url", Type: operation.ParamString, Description: "URL the bot receives events on", Required: true},
			},
			platformAgentBots.update(func(p *api.Params) (map[string]interface{}, error) {
				outgoingURL, err := p.RequireString("outgoing_url")
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"outgoing_url": outgoingURL}, nil
			})),
		platformAgentBots.remove(),
	)

	return defs
}

type bodyFunc func(p *api.Params) (map[string]interface{}, error)

func (c platformCRUD) define(op, display, description string, tags []string, params []operation.ParameterInfo, handler operation.Handler) *operation.Definition {
	return &operation.Definition{
		OperationInfo: operation.OperationInfo{
			API:         operation.APIPlatform,
			Resource:    c.resource,
			Operation:   op,
			DisplayName: display,
			Description: description,
			Tags:        tags,
			Parameters:  params,
		},
		Handler: handler,
	}
}

func (c platformCRUD) id() operation.ParameterInfo {
	return idParam(c.idParam, "ID of the "+c.noun)
}

func (c platformCRUD) read() []*operation.Definition {
	return []*operation.Definition{
		c.define("getAll", "Get Many", "List "+c.noun+"s", nil, nil,
			func(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
				return PlatformRequest(ctx, host, Request{Method: "GET", Endpoint: c.path, ItemIndex: itemIndex})
			}),
		c.define("get", "Get", "Get a "+c.noun, nil, []operation.ParameterInfo{c.id()},
			func(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
				id, err := api.NewParams(host, itemIndex).RequireInt(c.idParam)
				if err != nil {
					return nil, err
				}
				return PlatformRequest(ctx, host, Request{
					Method:    "GET",
					Endpoint:  fmt.Sprintf("%s/%d", c.path, id),
					ItemIndex: itemIndex,
				})
			}),
	}
}

func (c platformCRUD) create(body bodyFunc) operation.Handler {
	return func(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
		payload, err := body(api.NewParams(host, itemIndex))
		if err != nil {
			return nil, err
		}
		return PlatformRequest(ctx, host, Request{
			Method:    "POST",
			Endpoint:  c.path,
			Body:      payload,
			ItemIndex: itemIndex,
		})
	}
}

func (c platformCRUD) update(body bodyFunc) operation.Handler {
	return func(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
		p := api.NewParams(host, itemIndex)
		id, err := p.RequireInt(c.idParam)
		if err != nil {
			return nil, err
		}
		payload, err := body(p)
		if err != nil {
			return nil, err
		}
		return PlatformRequest(ctx, host, Request{
			Method:    "PATCH",
			Endpoint:  fmt.Sprintf("%s/%d", c.path, id),
			Body:      payload,
			ItemIndex: itemIndex,
		})
	}
}

func (c platformCRUD) remove() *operation.Definition {
	return c.define("delete", "Delete", "Delete a "+c.noun, tagsDestructive, []operation.ParameterInfo{c.id()},
		func(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
			id, err := api.NewParams(host, itemIndex).RequireInt(c.idParam)
			if err != nil {
				return nil, err
			}
			if _, err := PlatformRequest(ctx, host, Request{
				Method:    "DELETE",
				Endpoint:  fmt.Sprintf("%s/%d", c.path, id),
				ItemIndex: itemIndex,
			}); err != nil {
				return nil, err
			}
			return deleted(id), nil
		})
}

func accountUserOperations() []*operation.Definition {
	accountID := idParam("accountId", "ID of the account")
	userID := idParam("userId", "ID of the user")

	define := func(op, display, description string, tags []string, params []operation.ParameterInfo, handler operation.Handler) *operation.Definition {
		return &operation.Definition{
			OperationInfo: operation.OperationInfo{
				API:         operation.APIPlatform,
				Resource:    "platformAccountUser",
				Operation:   op,
				DisplayName: display,
				Description: description,
				Tags:        tags,
				Parameters:  params,
			},
			Handler: handler,
		}
	}

	return []*operation.Definition{
		define("getAll", "Get Many", "List the users of an account", nil,
			[]operation.ParameterInfo{accountID},
			func(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
				id, err := api.NewParams(host, itemIndex).RequireInt("accountId")
				if err != nil {
					return nil, err
				}
				return PlatformRequest(ctx, host, Request{
					Method:    "GET",
					Endpoint:  fmt.Sprintf("accounts/%d/account_users", id),
					ItemIndex: itemIndex,
				})
			}),
		define("create", "Create", "Add a user to an account", tagsWrite,
			[]operation.ParameterInfo{
				accountID,
				userID,
				{Name: "role", Type: operation.ParamOptions, Description: "Role of the user in the account", Default: "agent", Options: agentRoles},
			},
			createAccountUser),
		define("delete", "Delete", "Remove a user from an account", tagsDestructive,
			[]operation.ParameterInfo{accountID, userID},
			deleteAccountUser),
	}
}

func createAccountUser(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	accountID, err := p.RequireInt("accountId")
	if err != nil {
		return nil, err
	}
	userID, err := p.RequireInt("userId")
	if err != nil {
		return nil, err
	}

	return PlatformRequest(ctx, host, Request{
		Method:   "POST",
		Endpoint: fmt.Sprintf("accounts/%d/account_users", accountID),
		Body: map[string]interface{}{
			"user_id": userID,
			"role":    p.String("role", "agent"),
		},
		ItemIndex: itemIndex,
	})
}

func deleteAccountUser(ctx context.Context, host operation.Host, itemIndex int) (interface{}, error) {
	p := api.NewParams(host, itemIndex)

	accountID, err := p.RequireInt("accountId")
	if err != nil {
		return nil, err
	}
	userID, err := p.RequireInt("userId")
	if err != nil {
		return nil, err
	}

	if _, err := PlatformRequest(ctx, host, Request{
		Method:    "DELETE",
		Endpoint:  fmt.Sprintf("accounts/%d/account_users/%d", accountID, userID),
		ItemIndex: itemIndex,
	}); err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true, "accountId": accountID, "userId": userID}, nil
}
