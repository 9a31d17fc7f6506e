package operation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/tombee/chatwoot-connector/internal/operation"

// Parameter names read from item 0 to select the operation.
const (
	ParamAPIType   = "apiType"
	ParamResource  = "resource"
	ParamOperation = "operation"
)

// ItemPredicate decides whether an input item is processed.
type ItemPredicate interface {
	Match(ctx context.Context, item Item, itemIndex int) (bool, error)
}

// OutputFilter transforms the final record list.
type OutputFilter interface {
	Apply(ctx context.Context, records []map[string]interface{}) ([]map[string]interface{}, error)
}

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	// ContinueOnFail turns item errors into {"error": message} records
	ContinueOnFail bool

	// When, if set, skips items for which it returns false
	When ItemPredicate

	// Filter, if set, is applied to the output records
	Filter OutputFilter

	// Observers are notified once per item
	Observers []Observer

	// Logger receives execution logs (default: slog.Default())
	Logger *slog.Logger
}

// Executor runs a registered operation over input items, one at a time.
type Executor struct {
	registry *Registry
	config   ExecutorConfig
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewExecutor creates an executor for the given registry.
func NewExecutor(registry *Registry, config ExecutorConfig) *Executor {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		registry: registry,
		config:   config,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
}

// Resolve reads apiType, resource and operation from item 0 and returns the
// matching definition.
func (e *Executor) Resolve(host Host) (*Definition, error) {
	resource := stringParam(host, ParamResource)
	operation := stringParam(host, ParamOperation)

	var missing []string
	if resource == "" {
		missing = append(missing, ParamResource)
	}
	if operation == "" {
		missing = append(missing, ParamOperation)
	}
	if len(missing) > 0 {
		return nil, NewMissingFieldsError(missing)
	}

	def, err := e.registry.Lookup(resource, operation)
	if err != nil {
		return nil, err
	}

	if apiType := stringParam(host, ParamAPIType); apiType != "" && API(apiType) != def.API {
		return nil, NewUnsupportedError(resource, operation)
	}

	return def, nil
}

// Run processes items sequentially and returns the flattened output records.
// Without ContinueOnFail the first item error aborts the run and no records
// are returned.
func (e *Executor) Run(ctx context.Context, host Host, items []Item) ([]map[string]interface{}, error) {
	if len(items) == 0 {
		return []map[string]interface{}{}, nil
	}

	def, err := e.Resolve(host)
	if err != nil {
		return nil, bindError(err, host.NodeName(), 0)
	}

	logger := e.logger.With(
		slog.String("api", string(def.API)),
		slog.String("resource", def.Resource),
		slog.String("operation", def.Operation),
	)
	logger.Debug("starting run", slog.Int("items", len(items)))

	records := make([]map[string]interface{}, 0, len(items))

	for i := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		itemRecords, err := e.runItem(ctx, host, def, items[i], i, logger)
		if err != nil {
			if !e.config.ContinueOnFail {
				return nil, err
			}
			records = append(records, map[string]interface{}{"error": Message(err)})
			continue
		}
		records = append(records, itemRecords...)
	}

	if e.config.Filter != nil {
		filtered, err := e.config.Filter.Apply(ctx, records)
		if err != nil {
			return nil, err
		}
		records = filtered
	}

	return records, nil
}

func (e *Executor) runItem(ctx context.Context, host Host, def *Definition, item Item, itemIndex int, logger *slog.Logger) ([]map[string]interface{}, error) {
	ctx, span := e.tracer.Start(ctx, "chatwoot."+def.Key().String(),
		trace.WithAttributes(
			attribute.String("chatwoot.api", string(def.API)),
			attribute.String("chatwoot.resource", def.Resource),
			attribute.String("chatwoot.operation", def.Operation),
			attribute.Int("chatwoot.item_index", itemIndex),
		),
	)
	defer span.End()

	start := time.Now()
	outcome := ItemOutcome{
		API:       def.API,
		Resource:  def.Resource,
		Operation: def.Operation,
		ItemIndex: itemIndex,
	}

	if e.config.When != nil {
		ok, err := e.config.When.Match(ctx, item, itemIndex)
		if err != nil {
			err = bindError(err, host.NodeName(), itemIndex)
			e.finish(ctx, span, &outcome, start, err, 0)
			return nil, err
		}
		if !ok {
			outcome.Outcome = OutcomeSkipped
			outcome.Duration = time.Since(start)
			span.SetAttributes(attribute.Bool("chatwoot.skipped", true))
			e.notify(ctx, outcome)
			logger.Debug("item skipped", slog.Int("item_index", itemIndex))
			return nil, nil
		}
	}

	result, err := def.Handler(ctx, host, itemIndex)
	if err != nil {
		err = bindError(err, host.NodeName(), itemIndex)
		e.finish(ctx, span, &outcome, start, err, 0)
		logger.Warn("item failed",
			slog.Int("item_index", itemIndex),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	records := Normalize(result)
	e.finish(ctx, span, &outcome, start, nil, len(records))
	logger.Debug("item completed",
		slog.Int("item_index", itemIndex),
		slog.Int("records", len(records)),
	)

	return records, nil
}

func (e *Executor) finish(ctx context.Context, span trace.Span, outcome *ItemOutcome, start time.Time, err error, records int) {
	outcome.Duration = time.Since(start)
	outcome.Records = records
	if err != nil {
		outcome.Outcome = OutcomeError
		outcome.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, Message(err))
	} else {
		outcome.Outcome = OutcomeSuccess
		span.SetAttributes(attribute.Int("chatwoot.records", records))
	}
	e.notify(ctx, *outcome)
}

func (e *Executor) notify(ctx context.Context, outcome ItemOutcome) {
	for _, observer := range e.config.Observers {
		observer.ItemCompleted(ctx, outcome)
	}
}

// Normalize converts a handler result into output records.
// Lists are spread, objects are appended as one record, nil becomes an empty
// record and any other value is wrapped as {"value": v}.
func Normalize(result interface{}) []map[string]interface{} {
	switch v := result.(type) {
	case nil:
		return []map[string]interface{}{{}}
	case map[string]interface{}:
		return []map[string]interface{}{v}
	case []map[string]interface{}:
		return v
	case []interface{}:
		records := make([]map[string]interface{}, 0, len(v))
		for _, element := range v {
			if m, ok := element.(map[string]interface{}); ok {
				records = append(records, m)
				continue
			}
			records = append(records, map[string]interface{}{"value": element})
		}
		return records
	default:
		return []map[string]interface{}{{"value": v}}
	}
}

// bindError attributes err to node and item when it does not carry a node yet.
func bindError(err error, node string, itemIndex int) error {
	var opErr *Error
	if errors.As(err, &opErr) {
		if opErr.Node == "" {
			opErr.Node = node
			opErr.ItemIndex = itemIndex
		}
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &Error{
		Message:   err.Error(),
		Node:      node,
		ItemIndex: itemIndex,
		Cause:     err,
	}
}

func stringParam(host Host, name string) string {
	value, ok := host.GetParameter(name, 0)
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
