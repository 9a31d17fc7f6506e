package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tombee/chatwoot-connector/internal/host"
	"github.com/tombee/chatwoot-connector/internal/log"
	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/tracing"
)

// Built-in tool names.
const (
	ToolOperations = "chatwoot_operations"
	ToolVerify     = "chatwoot_verify_credentials"
)

// Arguments accepted by every operation tool in addition to its parameters.
const (
	argItems          = "items"
	argContinueOnFail = "continueOnFail"
	argWhen           = "when"
	argFilter         = "filter"
)

var reservedArgs = map[string]bool{
	argItems:          true,
	argContinueOnFail: true,
	argWhen:           true,
	argFilter:         true,
}

// ToolName returns the tool exposing def.
func ToolName(def *operation.Definition) string {
	return "chatwoot_" + def.Resource + "_" + def.Operation
}

func (s *Server) registerTools() {
	s.addTool(mcp.Tool{
		Name:        ToolOperations,
		Description: "List the Chatwoot operations exposed as tools, grouped by API.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"api": map[string]interface{}{
					"type":        "string",
					"description": "Only list operations of this API",
					"enum":        apiNames(),
				},
			},
		},
		Annotations: mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)},
	}, s.handleOperations)

	s.addTool(mcp.Tool{
		Name:        ToolVerify,
		Description: "Check that the stored credentials of an API are accepted by the Chatwoot server.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"api": map[string]interface{}{
					"type":        "string",
					"description": "API whose credentials are checked",
					"enum":        apiNames(),
				},
			},
			Required: []string{"api"},
		},
		Annotations: mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)},
	}, s.handleVerify)

	for _, def := range s.registry.List() {
		s.addTool(operationTool(def), s.operationHandler(def))
	}
}

func operationTool(def *operation.Definition) mcp.Tool {
	properties := make(map[string]interface{}, len(def.Parameters)+4)
	var required []string

	for _, param := range def.Parameters {
		properties[param.Name] = parameterSchema(param)
		if param.Required {
			required = append(required, param.Name)
		}
	}

	properties[argItems] = map[string]interface{}{
		"type":        "array",
		"description": "Input items. Parameter values starting with '=' are expressions over json and index; values starting with '$ref:' are JSON pointers into the item.",
		"items":       map[string]interface{}{"type": "object"},
	}
	properties[argContinueOnFail] = map[string]interface{}{
		"type":        "boolean",
		"description": "Report failing items as {error} records instead of aborting",
	}
	properties[argWhen] = map[string]interface{}{
		"type":        "string",
		"description": "Boolean expression selecting which items run",
	}
	properties[argFilter] = map[string]interface{}{
		"type":        "string",
		"description": "jq expression applied to the output records",
	}

	readOnly := !def.HasTag(operation.TagWrite) && !def.HasTag(operation.TagDestructive)

	return mcp.Tool{
		Name:        ToolName(def),
		Description: fmt.Sprintf("[%s API] %s", def.API, def.Description),
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: properties,
			Required:   required,
		},
		Annotations: mcp.ToolAnnotation{
			Title:           def.DisplayName + " " + def.Resource,
			ReadOnlyHint:    boolPtr(readOnly),
			DestructiveHint: boolPtr(def.HasTag(operation.TagDestructive)),
			OpenWorldHint:   boolPtr(true),
		},
	}
}

func parameterSchema(param operation.ParameterInfo) map[string]interface{} {
	schema := map[string]interface{}{
		"description": param.Description,
	}

	switch param.Type {
	case operation.ParamNumber:
		schema["type"] = "number"
	case operation.ParamBoolean:
		schema["type"] = "boolean"
	case operation.ParamOptions:
		schema["type"] = "string"
		if len(param.Options) > 0 {
			schema["enum"] = param.Options
		}
	case operation.ParamCollection:
		schema["type"] = "object"
		if len(param.Fields) > 0 {
			fields := make(map[string]interface{}, len(param.Fields))
			for _, field := range param.Fields {
				fields[field] = map[string]interface{}{}
			}
			schema["properties"] = fields
		}
	case operation.ParamDateTime:
		schema["type"] = "string"
		schema["format"] = "date-time"
	default:
		schema["type"] = "string"
	}

	if param.Default != nil {
		schema["default"] = param.Default
	}
	return schema
}

func (s *Server) operationHandler(def *operation.Definition) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := ToolName(def)

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]interface{})
		if !ok && request.Params.Arguments != nil {
			return errorResponse("Invalid arguments format"), nil
		}

		req, err := runRequest(def, args)
		if err != nil {
			return errorResponse(err.Error()), nil
		}

		ctx, correlationID := tracing.EnsureContext(ctx)
		call := &log.ToolCall{Tool: name, CorrelationID: correlationID.String(), Items: len(req.Items)}

		var result *host.RunResult
		_, err = s.middleware.Handle(call, func() (int, error) {
			var runErr error
			result, runErr = s.currentRunner().Run(ctx, req)
			if runErr != nil {
				return 0, runErr
			}
			return len(result.Records), nil
		})
		if err != nil {
			return errorResponse(errorText(err)), nil
		}

		data, err := json.MarshalIndent(result.Records, "", "  ")
		if err != nil {
			return errorResponse(fmt.Sprintf("failed to encode records: %v", err)), nil
		}
		return textResponse(string(data)), nil
	}
}

func runRequest(def *operation.Definition, args map[string]interface{}) (host.RunRequest, error) {
	req := host.RunRequest{
		API:       def.API,
		Resource:  def.Resource,
		Operation: def.Operation,
		Params:    make(map[string]interface{}, len(args)),
	}

	for k, v := range args {
		if !reservedArgs[k] {
			req.Params[k] = v
		}
	}

	if raw, ok := args[argItems]; ok && raw != nil {
		list, ok := raw.([]interface{})
		if !ok {
			return req, fmt.Errorf("%s must be an array of objects", argItems)
		}
		for i, element := range list {
			obj, ok := element.(map[string]interface{})
			if !ok {
				return req, fmt.Errorf("%s[%d] must be an object", argItems, i)
			}
			req.Items = append(req.Items, operation.Item{JSON: obj})
		}
	}

	if v, ok := args[argContinueOnFail].(bool); ok {
		req.ContinueOnFail = v
	}
	if v, ok := args[argWhen].(string); ok {
		req.When = v
	}
	if v, ok := args[argFilter].(string); ok {
		req.Filter = v
	}

	return req, nil
}

func (s *Server) handleOperations(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	filter, _ := args["api"].(string)

	var b strings.Builder
	for _, api := range operation.APIs {
		if filter != "" && string(api) != filter {
			continue
		}
		defs := s.registry.ListAPI(api)
		if len(defs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s API:\n", api)
		for _, def := range defs {
			fmt.Fprintf(&b, "  %s - %s\n", ToolName(def), def.Description)
		}
	}

	if b.Len() == 0 {
		return errorResponse(fmt.Sprintf("no operations for api %q", filter)), nil
	}
	return textResponse(b.String()), nil
}

func (s *Server) handleVerify(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	api, _ := args["api"].(string)
	if !operation.API(api).Valid() {
		return errorResponse(fmt.Sprintf("api must be one of %s", strings.Join(apiNames(), ", "))), nil
	}

	ctx, correlationID := tracing.EnsureContext(ctx)
	call := &log.ToolCall{Tool: ToolVerify, CorrelationID: correlationID.String()}

	_, err := s.middleware.Handle(call, func() (int, error) {
		return 0, s.currentRunner().Verify(ctx, operation.API(api))
	})
	if err != nil {
		return errorResponse(errorText(err)), nil
	}
	return textResponse(fmt.Sprintf("%s credentials are valid", api)), nil
}

// errorText renders an error with its suggestion when it carries one.
func errorText(err error) string {
	text := operation.Message(err)
	var opErr *operation.Error
	if errors.As(err, &opErr) && opErr.Suggestion() != "" {
		text += "\n" + opErr.Suggestion()
	}
	return text
}

func apiNames() []string {
	names := make([]string, len(operation.APIs))
	for i, api := range operation.APIs {
		names[i] = string(api)
	}
	return names
}

func boolPtr(b bool) *bool {
	return &b
}
