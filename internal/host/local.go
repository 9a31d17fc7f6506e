// Package host runs Chatwoot operations outside a workflow engine. Local
// implements operation.Host over configuration, stored secrets and an HTTP
// transport.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/chatwoot-connector/internal/expression"
	"github.com/tombee/chatwoot-connector/internal/log"
	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/operation/transport"
	"github.com/tombee/chatwoot-connector/internal/tracing"
)

const tracerName = "github.com/tombee/chatwoot-connector/internal/host"

// RequestRecorder receives one call per HTTP request.
type RequestRecorder interface {
	RecordRequest(ctx context.Context, method string, status int, duration time.Duration, err error)
}

// Options configures a Local host.
type Options struct {
	// NodeName is the name errors are attributed to
	NodeName string

	// Params are the run parameters shared by every item
	Params map[string]interface{}

	// Items are the input items; their Params override the run parameters
	Items []operation.Item

	Credentials CredentialSource
	Transport   transport.Transport

	// Evaluator resolves "=" and "$ref:" parameter values (default: expression.New())
	Evaluator *expression.Evaluator

	// Metrics, if set, records every request
	Metrics RequestRecorder

	// Logger receives request logs (default: slog.Default())
	Logger *slog.Logger
}

// Local is an operation.Host for command-line and MCP execution.
type Local struct {
	opts      Options
	evaluator *expression.Evaluator
	logger    *slog.Logger
	tracer    trace.Tracer

	mu       sync.Mutex
	resolved map[int]map[string]interface{}
}

var _ operation.Host = (*Local)(nil)

// NewLocal creates a host.
func NewLocal(opts Options) *Local {
	evaluator := opts.Evaluator
	if evaluator == nil {
		evaluator = expression.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.NodeName == "" {
		opts.NodeName = "Chatwoot"
	}

	return &Local{
		opts:      opts,
		evaluator: evaluator,
		logger:    log.WithComponent(logger, "host"),
		tracer:    otel.Tracer(tracerName),
		resolved:  make(map[int]map[string]interface{}),
	}
}

// Items returns the input items.
func (l *Local) Items() []operation.Item {
	return l.opts.Items
}

// NodeName identifies the step errors are attributed to.
func (l *Local) NodeName() string {
	return l.opts.NodeName
}

// GetParameter returns the resolved value of name for item itemIndex.
// When another parameter of the item fails to resolve, name is resolved on
// its own so the item selectors stay readable; Guard surfaces the error
// before the handler runs.
func (l *Local) GetParameter(name string, itemIndex int) (interface{}, bool) {
	params, err := l.resolve(itemIndex)
	if err == nil {
		value, ok := params[name]
		return value, ok
	}
	value, ok, err := l.resolveOne(name, itemIndex)
	if err != nil {
		return nil, false
	}
	return value, ok
}

// Guard returns a predicate that runs next and then resolves every parameter
// of the item, failing the item when an expression or reference is invalid.
// next may be nil.
func (l *Local) Guard(next operation.ItemPredicate) operation.ItemPredicate {
	return guard{host: l, next: next}
}

type guard struct {
	host *Local
	next operation.ItemPredicate
}

func (g guard) Match(ctx context.Context, item operation.Item, itemIndex int) (bool, error) {
	if g.next != nil {
		ok, err := g.next.Match(ctx, item, itemIndex)
		if err != nil || !ok {
			return ok, err
		}
	}
	if _, err := g.host.resolve(itemIndex); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Local) resolve(itemIndex int) (map[string]interface{}, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if params, ok := l.resolved[itemIndex]; ok {
		return params, nil
	}

	item := l.item(itemIndex)
	merged := make(map[string]interface{}, len(l.opts.Params)+len(item.Params))
	for k, v := range l.opts.Params {
		merged[k] = v
	}
	for k, v := range item.Params {
		merged[k] = v
	}

	env := expression.EnvFor(item, itemIndex)
	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value, err := l.evaluator.ResolveValue(name, merged[name], env)
		if err != nil {
			return nil, err
		}
		merged[name] = value
	}

	l.resolved[itemIndex] = merged
	return merged, nil
}

func (l *Local) resolveOne(name string, itemIndex int) (interface{}, bool, error) {
	item := l.item(itemIndex)
	raw, ok := item.Params[name]
	if !ok {
		raw, ok = l.opts.Params[name]
	}
	if !ok {
		return nil, false, nil
	}
	value, err := l.evaluator.ResolveValue(name, raw, expression.EnvFor(item, itemIndex))
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (l *Local) item(itemIndex int) operation.Item {
	if itemIndex >= 0 && itemIndex < len(l.opts.Items) {
		return l.opts.Items[itemIndex]
	}
	return operation.Item{}
}

// GetCredentials returns the named credential record.
func (l *Local) GetCredentials(ctx context.Context, name string) (operation.Credentials, error) {
	if l.opts.Credentials == nil {
		return nil, fmt.Errorf("no credential source configured")
	}
	return l.opts.Credentials.Credentials(ctx, name)
}

// HTTPRequest sends one JSON request and decodes the response body.
func (l *Local) HTTPRequest(ctx context.Context, opts *operation.HTTPRequestOptions) (interface{}, error) {
	req, err := buildRequest(ctx, opts)
	if err != nil {
		return nil, err
	}

	ctx, span := l.tracer.Start(ctx, "HTTP "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(req.Method),
			semconv.URLFull(req.URL),
		),
	)
	defer span.End()

	logger := l.logger.With(
		slog.String("method", req.Method),
		slog.String("url", req.URL),
	)
	log.Trace(ctx, logger, "sending request",
		slog.Any("headers", log.MaskHeaders(req.Headers)),
		slog.Any("query", req.Query),
	)

	start := time.Now()
	resp, err := l.opts.Transport.Execute(ctx, req)
	duration := time.Since(start)

	var (
		status    int
		requestID string
		tErr      *transport.TransportError
	)
	switch {
	case resp != nil:
		status = resp.StatusCode
		requestID, _ = resp.Metadata[transport.MetadataRequestID].(string)
	case errors.As(err, &tErr):
		status = tErr.StatusCode
		requestID = tErr.RequestID
	}
	if requestID != "" {
		logger = log.WithRequestID(logger, requestID)
	}

	if l.opts.Metrics != nil {
		l.opts.Metrics.RecordRequest(ctx, req.Method, status, duration, err)
	}
	if status != 0 {
		span.SetAttributes(semconv.HTTPResponseStatusCode(status))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Debug("request failed",
			slog.Int(log.StatusCodeKey, status),
			slog.Int64(log.DurationKey, duration.Milliseconds()),
			log.Error(err),
		)
		return nil, err
	}

	logger.Debug("request completed",
		slog.Int(log.StatusCodeKey, status),
		slog.Int64(log.DurationKey, duration.Milliseconds()),
	)
	span.SetAttributes(attribute.Int("http.response.body.size", len(resp.Body)))

	return decodeBody(resp.Body), nil
}

func buildRequest(ctx context.Context, opts *operation.HTTPRequestOptions) (*transport.Request, error) {
	req := &transport.Request{
		Method:  strings.ToUpper(opts.Method),
		URL:     opts.URL,
		Headers: make(map[string]string, len(opts.Headers)+1),
	}
	for k, v := range opts.Headers {
		req.Headers[k] = v
	}
	req.Headers = tracing.InjectHeaders(ctx, req.Headers)

	if len(opts.Query) > 0 {
		req.Query = make(map[string]string, len(opts.Query))
		for k, v := range opts.Query {
			s, err := queryValue(v)
			if err != nil {
				return nil, operation.NewValidationError(fmt.Sprintf("query parameter %q: %s", k, err))
			}
			req.Query[k] = s
		}
	}

	if opts.Body != nil {
		body, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, operation.NewValidationError(fmt.Sprintf("failed to encode request body: %s", err))
		}
		req.Body = body
	}

	if _, err := url.Parse(req.URL); err != nil {
		return nil, operation.NewValidationError(fmt.Sprintf("invalid request URL: %s", err))
	}

	return req, nil
}

// queryValue renders scalars as text and composite values as JSON.
func queryValue(v interface{}) (string, error) {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(v)
		return string(b), err
	}
	return cast.ToStringE(v)
}

// decodeBody returns nil for an empty body, the decoded JSON value when the
// body parses, and the raw text otherwise.
func decodeBody(body []byte) interface{} {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	var out interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		return string(body)
	}
	return out
}
