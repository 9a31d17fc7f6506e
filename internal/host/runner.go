package host

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tombee/chatwoot-connector/internal/chatwoot"
	"github.com/tombee/chatwoot-connector/internal/expression"
	"github.com/tombee/chatwoot-connector/internal/jq"
	"github.com/tombee/chatwoot-connector/internal/log"
	"github.com/tombee/chatwoot-connector/internal/operation"
	"github.com/tombee/chatwoot-connector/internal/operation/transport"
	"github.com/tombee/chatwoot-connector/internal/tracing"
)

// RunnerConfig holds what every run shares.
type RunnerConfig struct {
	NodeName    string
	Registry    *operation.Registry
	Credentials CredentialSource
	Transport   transport.Transport

	// Metrics, if set, records requests
	Metrics RequestRecorder

	// Observers are attached to every run
	Observers []operation.Observer

	Logger *slog.Logger
}

// RunRequest describes one run of one operation.
type RunRequest struct {
	API       operation.API
	Resource  string
	Operation string

	// Params are shared by every item
	Params map[string]interface{}

	// Items are the input items. An empty list runs once with an empty item.
	Items []operation.Item

	ContinueOnFail bool

	// When is an optional boolean expression selecting items
	When string

	// Filter is an optional jq expression applied to the output records
	Filter string

	// Observers are attached to this run only
	Observers []operation.Observer
}

// RunResult is the outcome of a run.
type RunResult struct {
	Records       []map[string]interface{}
	Summary       operation.Summary
	CorrelationID tracing.CorrelationID
}

// Runner executes operations against Chatwoot with a fresh Local host per
// run.
type Runner struct {
	config    RunnerConfig
	evaluator *expression.Evaluator
	logger    *slog.Logger
}

// NewRunner creates a runner.
func NewRunner(config RunnerConfig) *Runner {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		config:    config,
		evaluator: expression.New(),
		logger:    logger,
	}
}

// Registry returns the operation registry.
func (r *Runner) Registry() *operation.Registry {
	return r.config.Registry
}

// Run executes req and returns its records. The run's correlation ID is taken
// from ctx or generated.
func (r *Runner) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	ctx, correlationID := tracing.EnsureContext(ctx)
	logger := log.WithCorrelationID(r.logger, correlationID.String())

	items := req.Items
	if len(items) == 0 {
		items = []operation.Item{{JSON: map[string]interface{}{}}}
	}

	params := make(map[string]interface{}, len(req.Params)+3)
	for k, v := range req.Params {
		params[k] = v
	}
	params[operation.ParamResource] = req.Resource
	params[operation.ParamOperation] = req.Operation
	if req.API != "" {
		params[operation.ParamAPIType] = string(req.API)
	}

	local := NewLocal(Options{
		NodeName:    r.config.NodeName,
		Params:      params,
		Items:       items,
		Credentials: r.config.Credentials,
		Transport:   r.config.Transport,
		Evaluator:   r.evaluator,
		Metrics:     r.config.Metrics,
		Logger:      logger,
	})

	var when operation.ItemPredicate
	if req.When != "" {
		w, err := expression.NewWhen(r.evaluator, req.When)
		if err != nil {
			return nil, err
		}
		when = w
	}

	var filter operation.OutputFilter
	if req.Filter != "" {
		f, err := jq.NewFilter(req.Filter)
		if err != nil {
			return nil, err
		}
		filter = f
	}

	summary := operation.NewSummaryCollector()
	observers := append([]operation.Observer{summary}, r.config.Observers...)
	observers = append(observers, req.Observers...)

	executor := operation.NewExecutor(r.config.Registry, operation.ExecutorConfig{
		ContinueOnFail: req.ContinueOnFail,
		When:           local.Guard(when),
		Filter:         filter,
		Observers:      observers,
		Logger:         logger,
	})

	records, err := executor.Run(ctx, local, local.Items())
	if err != nil {
		return nil, err
	}

	return &RunResult{
		Records:       records,
		Summary:       summary.Summary(),
		CorrelationID: correlationID,
	}, nil
}

// Verify checks the credential record of api against the server.
func (r *Runner) Verify(ctx context.Context, api operation.API) error {
	if !api.Valid() {
		return fmt.Errorf("unknown api %q", api)
	}
	ctx, _ = tracing.EnsureContext(ctx)

	local := NewLocal(Options{
		NodeName:    r.config.NodeName,
		Credentials: r.config.Credentials,
		Transport:   r.config.Transport,
		Metrics:     r.config.Metrics,
		Logger:      r.logger,
	})
	return chatwoot.VerifyCredentials(ctx, local, api)
}
