// Package mcptools exposes page and file conversion as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dgallion1/blockmd/internal/export"
	"github.com/dgallion1/blockmd/internal/notion"
	"github.com/dgallion1/blockmd/internal/pipeline"
	"github.com/dgallion1/blockmd/internal/source"
	"github.com/dgallion1/blockmd/internal/toc"
	"github.com/dgallion1/blockmd/internal/walker"
)

// Tools holds what the tool handlers need. The worker's store serves
// blockmd_convert_page; files are imported into their own trees.
type Tools struct {
	worker   *pipeline.Worker
	defaults pipeline.Options
	log      *slog.Logger
}

func New(w *pipeline.Worker, defaults pipeline.Options, log *slog.Logger) *Tools {
	if log == nil {
		log = slog.Default()
	}
	return &Tools{worker: w, defaults: defaults, log: log.With("component", "mcp")}
}

// NewServer returns an MCP server with every tool registered.
func NewServer(version string, t *Tools) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "blockmd", Version: version}, nil)
	t.Register(srv)
	return srv
}

// Register adds the blockmd tools to srv.
func (t *Tools) Register(srv *mcp.Server) {
	t.registerConvertPage(srv)
	t.registerConvertFile(srv)
	t.registerTOC(srv)
	t.registerFormats(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

type endpoint func(ctx context.Context, args json.RawMessage) (any, error)

// registerTool adds a tool whose result is the endpoint's value as JSON text.
func (t *Tools) registerTool(srv *mcp.Server, tool *mcp.Tool, fn endpoint) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := &mcp.CallToolResult{}
		out, err := fn(ctx, req.Params.Arguments)
		if err != nil {
			t.log.Warn("tool failed", "tool", tool.Name, "error", err)
			res.SetError(err)
			return res, nil
		}
		data, err := json.Marshal(out)
		if err != nil {
			res.SetError(fmt.Errorf("encode result: %w", err))
			return res, nil
		}
		res.Content = []mcp.Content{&mcp.TextContent{Text: string(data)}}
		return res, nil
	})
}

func decode(args json.RawMessage, v any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

var optionProperties = map[string]any{
	"format":        map[string]any{"type": "string", "enum": []string{"md", "html"}, "description": "Text output format (default md)"},
	"add_toc":       map[string]any{"type": "boolean", "description": "Prepend a table of contents"},
	"max_depth":     map[string]any{"type": "integer", "minimum": 0, "description": "Deepest block level to render"},
	"heading_shift": map[string]any{"type": "integer", "minimum": 0, "description": "Levels added to every heading"},
	"number_lists":  map[string]any{"type": "boolean", "description": "Number ordered list items sequentially"},
}

func withOptions(props map[string]any) map[string]any {
	out := make(map[string]any, len(props)+len(optionProperties))
	for k, v := range optionProperties {
		out[k] = v
	}
	for k, v := range props {
		out[k] = v
	}
	return out
}

type optionArgs struct {
	Format       string `json:"format"`
	AddTOC       *bool  `json:"add_toc"`
	MaxDepth     *int   `json:"max_depth"`
	HeadingShift *int   `json:"heading_shift"`
	NumberLists  *bool  `json:"number_lists"`
}

func (a optionArgs) apply(opts pipeline.Options) (pipeline.Options, error) {
	opts.Format = export.Markdown
	if a.Format != "" {
		f, err := export.ParseFormat(a.Format)
		if err != nil {
			return opts, err
		}
		if f != export.Markdown && f != export.HTML {
			return opts, fmt.Errorf("format %q is binary; use the CLI or HTTP API", f)
		}
		opts.Format = f
	}
	if a.AddTOC != nil {
		opts.AddTOC = *a.AddTOC
	}
	if a.MaxDepth != nil {
		opts.MaxDepth = *a.MaxDepth
	}
	if a.HeadingShift != nil {
		opts.HeadingShift = *a.HeadingShift
	}
	if a.NumberLists != nil {
		opts.NumberLists = *a.NumberLists
	}
	return opts, opts.Validate()
}

type documentResult struct {
	Title   string       `json:"title"`
	Format  string       `json:"format"`
	Content string       `json:"content"`
	Hash    string       `json:"hash"`
	Stats   walker.Stats `json:"stats"`
	Path    string       `json:"path,omitempty"`
}

func result(out *pipeline.Output) documentResult {
	return documentResult{
		Title:   out.Document.Title,
		Format:  string(out.Format),
		Content: string(out.Data),
		Hash:    out.Document.Hash,
		Stats:   out.Document.Stats,
	}
}

// --- convert page ---

type convertPageArgs struct {
	PageID string `json:"page_id"`
	Save   bool   `json:"save"`
	optionArgs
}

func (t *Tools) registerConvertPage(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "blockmd_convert_page",
		Description: "Convert a Notion page (id or URL) and its nested blocks to Markdown or HTML.",
		InputSchema: inputSchema(withOptions(map[string]any{
			"page_id": map[string]any{"type": "string", "description": "Page id or notion.so URL"},
			"save":    map[string]any{"type": "boolean", "description": "Also write the document to the output directory"},
		}), []string{"page_id"}),
	}
	t.registerTool(srv, tool, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args convertPageArgs
		if err := decode(raw, &args); err != nil {
			return nil, err
		}
		id, err := notion.ParseID(args.PageID)
		if err != nil {
			return nil, err
		}
		opts, err := args.apply(t.defaults)
		if err != nil {
			return nil, err
		}
		out, err := t.worker.Convert(ctx, id, opts)
		if err != nil {
			return nil, err
		}
		res := result(out)
		if args.Save {
			path, err := t.worker.Write(ctx, id, out, true)
			if err != nil {
				return nil, err
			}
			res.Path = path
		}
		return res, nil
	})
}

// --- convert file ---

type convertFileArgs struct {
	Path string `json:"path"`
	optionArgs
}

func (t *Tools) registerConvertFile(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "blockmd_convert_file",
		Description: "Import a local document (md, txt, csv, html, docx, pdf, json snapshot) and render it through the block converters.",
		InputSchema: inputSchema(withOptions(map[string]any{
			"path": map[string]any{"type": "string", "description": "File path to convert"},
		}), []string{"path"}),
	}
	t.registerTool(srv, tool, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args convertFileArgs
		if err := decode(raw, &args); err != nil {
			return nil, err
		}
		if args.Path == "" {
			return nil, fmt.Errorf("path is required")
		}
		opts, err := args.apply(t.defaults)
		if err != nil {
			return nil, err
		}
		imp, err := source.ForFile(args.Path)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(args.Path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		tree, err := imp.Import(f, filepath.Base(args.Path))
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", args.Path, err)
		}
		root, err := tree.Root(ctx, t.log)
		if err != nil {
			return nil, err
		}
		out, err := t.worker.Render(ctx, root, opts)
		if err != nil {
			return nil, err
		}
		return result(out), nil
	})
}

// --- toc ---

type tocArgs struct {
	Markdown string `json:"markdown"`
}

func (t *Tools) registerTOC(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "blockmd_toc",
		Description: "Build a nested Markdown table of contents from the headings of a Markdown document.",
		InputSchema: inputSchema(map[string]any{
			"markdown": map[string]any{"type": "string", "description": "Markdown text"},
		}, []string{"markdown"}),
	}
	t.registerTool(srv, tool, func(_ context.Context, raw json.RawMessage) (any, error) {
		var args tocArgs
		if err := decode(raw, &args); err != nil {
			return nil, err
		}
		headings := toc.Headings(args.Markdown)
		if headings == nil {
			headings = []toc.Heading{}
		}
		return map[string]any{"toc": toc.Build(args.Markdown), "headings": headings}, nil
	})
}

// --- formats ---

func (t *Tools) registerFormats(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "blockmd_formats",
		Description: "List importable file extensions and export formats.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	t.registerTool(srv, tool, func(_ context.Context, _ json.RawMessage) (any, error) {
		exts := make([]string, 0, len(source.SupportedExtensions))
		for ext := range source.SupportedExtensions {
			exts = append(exts, ext)
		}
		slices.Sort(exts)
		return map[string]any{"import": exts, "export": export.Formats}, nil
	})
}
