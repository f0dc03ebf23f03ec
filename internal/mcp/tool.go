package mcp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/mvp-joe/astdigest/internal/config"
	"github.com/mvp-joe/astdigest/internal/engine"
)

type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// AddCompressTool registers the compress_java tool with an MCP server.
func AddCompressTool(s *server.MCPServer, deps *toolDeps) {
	tool := mcp.NewTool(
		CompressToolName,
		mcp.WithDescription("Compress a Java source file into a structural digest: classes, method signatures, control flow, data flow, method intents and key comments. Pass either a path or the source text."),
		mcp.WithString("path",
			mcp.Description("Path of a .java file, relative to the server root")),
		mcp.WithString("source",
			mcp.Description("Java source text to compress instead of a file")),
		mcp.WithString("aggregation_level",
			mcp.Description("How aggressively to aggregate: 'low', 'medium' or 'high' (default from config)")),
		mcp.WithBoolean("key_mapping",
			mcp.Description("Shorten document keys and include the legend (default from config)")),
		mcp.WithNumber("max_depth",
			mcp.Description("Maximum depth of the compact syntax tree")),
		mcp.WithString("frame",
			mcp.Description("Output framing: 'none' or 'gzip+base64' (default from config)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, instrument(CompressToolName, deps, createCompressHandler(deps)))
}

// createCompressHandler creates the handler function for the compress_java tool.
func createCompressHandler(deps *toolDeps) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req CompressRequest
		if errResult := bindArguments(request, &req); errResult != nil {
			return errResult, nil
		}
		if (req.Path == "") == (req.Source == "") {
			return mcp.NewToolResultError("exactly one of path or source is required"), nil
		}

		opts, err := compressOptions(deps.cfg, req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		format, frame, err := deps.cfg.OutputFormat()
		if err != nil {
			return nil, err
		}
		if req.Frame != "" {
			if frame, err = engine.ParseFrame(req.Frame); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}

		e := engine.New(opts, deps.log)
		var doc *engine.Document
		if req.Path != "" {
			file, err := resolvePath(deps.root, req.Path)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if filepath.Ext(file) != ".java" {
				return mcp.NewToolResultError(fmt.Sprintf("%s is not a .java file", req.Path)), nil
			}
			doc, _, err = e.CompressFile(ctx, file)
			if err != nil {
				return compressFailure(err)
			}
		} else {
			doc, err = e.CompressSource(ctx, []byte(req.Source))
			if err != nil {
				return compressFailure(err)
			}
		}

		out, err := e.Encode(doc, format)
		if err != nil {
			return nil, fmt.Errorf("encode document: %w", err)
		}
		if out, err = engine.ApplyFrame(out, frame); err != nil {
			return nil, fmt.Errorf("frame document: %w", err)
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

// compressOptions applies per-call overrides to the configured engine options.
func compressOptions(cfg *config.Config, req CompressRequest) (engine.Options, error) {
	opts := cfg.EngineOptions()

	if req.AggregationLevel != "" {
		level, err := engine.ParseLevel(req.AggregationLevel)
		if err != nil {
			return opts, err
		}
		opts.Aggregation = level
	}
	if req.KeyMapping != nil {
		opts.UseKeyMapping = *req.KeyMapping
	}
	if req.MaxDepth != nil {
		if *req.MaxDepth <= 0 {
			return opts, fmt.Errorf("max_depth must be positive, got %d", *req.MaxDepth)
		}
		opts.MaxDepth = *req.MaxDepth
	}
	return opts, nil
}

// compressFailure reports an input problem to the client and aborts on cancellation.
func compressFailure(err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	return mcp.NewToolResultError(err.Error()), nil
}

// instrument records every call of a tool in the call metrics.
func instrument(name string, deps *toolDeps, next toolHandler) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		res, err := next(ctx, request)

		failure := err
		if failure == nil {
			failure = resultError(res)
		}
		deps.metrics.Record(name, time.Since(start), failure)
		if failure != nil {
			deps.log.Debug("tool call failed", zap.String("tool", name), zap.Error(failure))
		}
		return res, err
	}
}
