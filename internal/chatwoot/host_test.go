package chatwoot

import (
	"context"
	"errors"
	"fmt"

	"github.com/tombee/chatwoot-connector/internal/operation"
)

// fakeHost serves parameters and credentials from maps and answers HTTP
// requests from a queue of canned responses.
type fakeHost struct {
	params      map[string]interface{}
	credentials map[string]operation.Credentials
	responses   []fakeResponse
	requests    []*operation.HTTPRequestOptions
}

type fakeResponse struct {
	body interface{}
	err  error
}

func newFakeHost(params map[string]interface{}) *fakeHost {
	return &fakeHost{
		params: params,
		credentials: map[string]operation.Credentials{
			CredentialApplication: {
				FieldBaseURL:     "https://x",
				FieldAccessToken: "app-token",
				FieldAccountID:   float64(3),
			},
			CredentialClient: {
				FieldBaseURL:           "https://x",
				FieldInboxIdentifier:   "inbox-abc",
				FieldContactIdentifier: "contact-xyz",
			},
			CredentialPlatform: {
				FieldBaseURL:             "https://x",
				FieldPlatformAccessToken: "platform-token",
			},
		},
	}
}

func (h *fakeHost) respond(bodies ...interface{}) *fakeHost {
	for _, body := range bodies {
		h.responses = append(h.responses, fakeResponse{body: body})
	}
	return h
}

func (h *fakeHost) fail(err error) *fakeHost {
	h.responses = append(h.responses, fakeResponse{err: err})
	return h
}

func (h *fakeHost) GetParameter(name string, _ int) (interface{}, bool) {
	v, ok := h.params[name]
	return v, ok
}

func (h *fakeHost) GetCredentials(_ context.Context, name string) (operation.Credentials, error) {
	creds, ok := h.credentials[name]
	if !ok {
		return nil, fmt.Errorf("no credentials named %s", name)
	}
	return creds, nil
}

func (h *fakeHost) HTTPRequest(_ context.Context, opts *operation.HTTPRequestOptions) (interface{}, error) {
	copied := *opts
	if opts.Query != nil {
		copied.Query = make(map[string]interface{}, len(opts.Query))
		for k, v := range opts.Query {
			copied.Query[k] = v
		}
	}
	h.requests = append(h.requests, &copied)

	if len(h.responses) == 0 {
		return nil, errors.New("unexpected request")
	}
	next := h.responses[0]
	h.responses = h.responses[1:]
	return next.body, next.err
}

func (h *fakeHost) NodeName() string { return "Chatwoot" }
