package mcp

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mvp-joe/astdigest/internal/batch"
)

// AddStatsTool registers the digest_stats tool with an MCP server.
func AddStatsTool(s *server.MCPServer, deps *toolDeps) {
	tool := mcp.NewTool(
		StatsToolName,
		mcp.WithDescription("Compress every Java file under a directory without writing digests and summarise the corpus: class and method counts, method intents, class responsibilities, complexity and compression ratio."),
		mcp.WithString("path",
			mcp.Description("Directory to summarise, relative to the server root (default: the root)")),
		mcp.WithArray("include",
			mcp.Description("Glob patterns of files to include (default from config, e.g. ['**/*.java'])")),
		mcp.WithArray("exclude",
			mcp.Description("Glob patterns of files to skip (default from config)")),
		mcp.WithNumber("workers",
			mcp.Description("Number of parallel workers (default from config)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, instrument(StatsToolName, deps, createStatsHandler(deps)))
}

// createStatsHandler creates the handler function for the digest_stats tool.
func createStatsHandler(deps *toolDeps) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req StatsRequest
		if errResult := bindArguments(request, &req); errResult != nil {
			return errResult, nil
		}
		if req.Path == "" {
			req.Path = "."
		}
		dir, err := resolvePath(deps.root, req.Path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return mcp.NewToolResultError(fmt.Sprintf("%s is not a directory", req.Path)), nil
		}

		bc := deps.cfg.Batch
		include, exclude, workers := bc.Include, bc.Exclude, bc.Workers
		if req.Include != nil {
			include = req.Include
		}
		if req.Exclude != nil {
			exclude = req.Exclude
		}
		if req.Workers != nil {
			if *req.Workers < 0 {
				return mcp.NewToolResultError("workers must not be negative"), nil
			}
			workers = *req.Workers
		}

		discovery, err := batch.NewDiscovery(dir, include, exclude, bc.RespectGitignore)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid pattern: %v", err)), nil
		}
		files, err := discovery.Discover(ctx)
		if err != nil {
			return nil, fmt.Errorf("discover files: %w", err)
		}

		runner := batch.NewRunner(batch.Options{
			Engine:  deps.cfg.EngineOptions(),
			Workers: workers,
			Root:    dir,
		}, deps.cache, deps.log)
		report, err := runner.Run(ctx, files, nil)
		if err != nil {
			return nil, err
		}

		samples, err := gatherSamples(runner.Metrics().Registry())
		if err != nil {
			return nil, fmt.Errorf("gather metrics: %w", err)
		}

		response := &DigestStatsResponse{
			Root:    dir,
			Summary: report.Summary,
			Ratio:   report.Summary.Ratio(),
			Metrics: samples,
			Tools:   deps.metrics.Snapshot(),
		}
		for _, r := range report.Results {
			if r.Err != nil {
				response.Failures = append(response.Failures, FileFailure{Path: r.Path, Error: r.Err.Error()})
			}
		}
		return marshalToolResponse(response)
	}
}

// gatherSamples flattens counters and histogram counts of a registry.
func gatherSamples(g prometheus.Gatherer) ([]MetricSample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	var out []MetricSample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			sample := MetricSample{Name: mf.GetName()}
			switch {
			case m.GetCounter() != nil:
				sample.Value = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				sample.Name += "_count"
				sample.Value = float64(m.GetHistogram().GetSampleCount())
			default:
				continue
			}
			for _, lp := range m.GetLabel() {
				if sample.Labels == nil {
					sample.Labels = make(map[string]string)
				}
				sample.Labels[lp.GetName()] = lp.GetValue()
			}
			out = append(out, sample)
		}
	}
	return out, nil
}
