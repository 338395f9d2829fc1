package mcp

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/truckfactor/internal/decay"
	"github.com/Sumatoshi-tech/truckfactor/internal/factor"
	"github.com/Sumatoshi-tech/truckfactor/internal/filter"
	"github.com/Sumatoshi-tech/truckfactor/internal/logstore"
	"github.com/Sumatoshi-tech/truckfactor/internal/mailmap"
	"github.com/Sumatoshi-tech/truckfactor/internal/report"
	"github.com/Sumatoshi-tech/truckfactor/internal/runner"
)

// ToolNameCompute is the name of the truck-factor computation tool.
const ToolNameCompute = "truckfactor_compute"

const computeToolDescription = "Compute the truck factor of a local git repository: " +
	"the smallest set of contributors whose loss leaves less than the " +
	"critical share of the project's knowledge behind."

// Sentinel errors for tool input validation.
var (
	// ErrEmptyRepoPath indicates the repo_path parameter is empty.
	ErrEmptyRepoPath = errors.New("repo_path parameter is required and must not be empty")
	// ErrRepoPathNotAbsolute indicates the repo_path is not an absolute path.
	ErrRepoPathNotAbsolute = errors.New("repo_path must be an absolute path")
	// ErrRepoNotFound indicates the repository path does not exist.
	ErrRepoNotFound = errors.New("repository path does not exist")
	// ErrInvalidCriticalLoss indicates critical_loss is out of range.
	ErrInvalidCriticalLoss = errors.New("critical_loss must be between 0 and 1")
	// ErrInvalidMetric indicates an unknown metric name.
	ErrInvalidMetric = errors.New("metric must be \"knowledge\" or \"authorship\"")
)

// ComputeInput is the input schema for the truckfactor_compute tool.
type ComputeInput struct {
	RepoPath          string   `json:"repo_path"                    jsonschema:"absolute path to a local git repository"`
	Metric            string   `json:"metric,omitempty"             jsonschema:"tally to walk: knowledge (default) or authorship"`
	CriticalLoss      float64  `json:"critical_loss,omitempty"      jsonschema:"surviving share threshold between 0 and 1 (default 0.5)"`
	Mailmap           string   `json:"mailmap,omitempty"            jsonschema:"optional path to a mailmap file for identity resolution"`
	IncludeExtensions []string `json:"include_extensions,omitempty" jsonschema:"only analyze files with these extensions"`
	ExcludeExtensions []string `json:"exclude_extensions,omitempty" jsonschema:"skip files with these extensions"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// validateComputeInput normalizes and checks the tool input in place.
func validateComputeInput(input *ComputeInput) error {
	if input.RepoPath == "" {
		return ErrEmptyRepoPath
	}

	if !filepath.IsAbs(input.RepoPath) {
		return ErrRepoPathNotAbsolute
	}

	if _, err := os.Stat(input.RepoPath); err != nil {
		return ErrRepoNotFound
	}

	if input.Metric == "" {
		input.Metric = runner.MetricKnowledge
	}

	if input.Metric != runner.MetricKnowledge && input.Metric != runner.MetricAuthorship {
		return ErrInvalidMetric
	}

	if input.CriticalLoss == 0 {
		input.CriticalLoss = factor.DefaultCriticalLoss
	}

	if input.CriticalLoss < 0 || input.CriticalLoss > 1 {
		return ErrInvalidCriticalLoss
	}

	return nil
}

func (s *Server) handleCompute(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ComputeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := validateComputeInput(&input); err != nil {
		return errorResult(err)
	}

	resolver := mailmap.Empty()

	if input.Mailmap != "" {
		loaded, err := mailmap.Load(input.Mailmap)
		if err != nil {
			return errorResult(err)
		}

		resolver = loaded
	}

	logsDir, err := os.MkdirTemp("", "truckfactor-mcp-")
	if err != nil {
		return errorResult(err)
	}
	defer os.RemoveAll(logsDir)

	store := logstore.New(logsDir, true)
	tracer := s.tracer

	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(serverName)
	}

	_, err = runner.GenerateLogs(ctx, runner.GenerateOptions{
		RepoPath: input.RepoPath,
		Store:    store,
		Filter:   filter.New(input.IncludeExtensions, input.ExcludeExtensions),
		Logger:   s.logger,
		Tracer:   tracer,
	})
	if err != nil {
		return errorResult(err)
	}

	result, err := runner.Compute(ctx, runner.ComputeOptions{
		Store:        store,
		Resolver:     resolver,
		Model:        decay.NewModel(timeNow()),
		Metric:       input.Metric,
		CriticalLoss: input.CriticalLoss,
		Logger:       s.logger,
		Tracer:       tracer,
	})
	if err != nil {
		return errorResult(err)
	}

	doc := report.NewDocument(result)

	var rendered bytes.Buffer
	if err := report.WriteJSON(&rendered, result); err != nil {
		return errorResult(err)
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: rendered.String()},
		},
	}, ToolOutput{Data: doc}, nil
}
