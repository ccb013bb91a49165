package server

import (
	"net/url"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"lucent/src/query"
	"lucent/src/util"
)

const serverName = "lucent"

// Run starts the language server over stdio and blocks until the client
// disconnects (spec.md §6 "LSP surface"). It plays the role src/main.go's
// run(opt) plays for "build": the one function cmd/lucent's "server"
// subcommand calls after parsing its own flags.
func Run(opt util.Options) error {
	verbosity := 1
	if opt.Verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	var w *workspace
	handler := protocol.Handler{}
	handler.Initialize = func(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
		root := rootFromParams(params)
		w = newWorkspace(root)
		if opt.Log != nil {
			opt.Log.Infow("lucent language server initializing", "root", root)
		}

		capabilities := protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncKindFull,
			DefinitionProvider: true,
			SemanticTokensProvider: protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{TokenTypes: tokenLegend},
				Full:   true,
			},
		}
		name := serverName
		return protocol.InitializeResult{
			Capabilities: capabilities,
			ServerInfo:   &protocol.InitializeResultServerInfo{Name: name},
		}, nil
	}

	handler.Initialized = func(ctx *glsp.Context, params *protocol.InitializedParams) error {
		if err := w.refreshTargets(); err != nil && opt.Log != nil {
			opt.Log.Warnw("reading targets.lucent failed", "error", err)
		}
		return nil
	}

	handler.Shutdown = func(ctx *glsp.Context) error {
		if w != nil {
			w.close()
		}
		return nil
	}

	handler.SetTrace = func(ctx *glsp.Context, params *protocol.SetTraceParams) error { return nil }

	handler.TextDocumentDidOpen = func(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
		path := uriToPath(params.TextDocument.URI)
		diags := w.open(path, params.TextDocument.Text)
		publish(ctx, diags)
		return nil
	}

	handler.TextDocumentDidChange = func(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
		path := uriToPath(params.TextDocument.URI)
		text := lastFullText(params.ContentChanges)
		if text == "" {
			return nil
		}
		diags := w.open(path, text)
		publish(ctx, diags)
		return nil
	}

	handler.TextDocumentDidSave = func(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
		diags := w.analyzeAll()
		publish(ctx, diags)
		return nil
	}

	handler.TextDocumentDidClose = func(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
		w.closeDoc(uriToPath(params.TextDocument.URI))
		return nil
	}

	handler.WorkspaceDidChangeWatchedFiles = func(ctx *glsp.Context, params *protocol.DidChangeWatchedFilesParams) error {
		if err := w.refreshTargets(); err != nil && opt.Log != nil {
			opt.Log.Warnw("refreshing targets.lucent failed", "error", err)
		}
		diags := w.analyzeAll()
		publish(ctx, diags)
		return nil
	}

	handler.TextDocumentDefinition = func(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
		path := uriToPath(params.TextDocument.URI)
		offset := offsetAt(w, path, params.Position)
		roots := w.roots()
		if len(roots) == 0 {
			roots = []string{path}
		}
		for _, root := range roots {
			loc, err := definitionAt(w, root, path, offset)
			if err != nil {
				return nil, err
			}
			if loc != nil {
				return protocol.Location{
					URI: pathToURI(loc.path),
					Range: protocol.Range{
						Start: protocol.Position{Line: protocol.UInteger(loc.line), Character: protocol.UInteger(loc.col)},
						End:   protocol.Position{Line: protocol.UInteger(loc.line), Character: protocol.UInteger(loc.col)},
					},
				}, nil
			}
		}
		return nil, nil
	}

	handler.TextDocumentSemanticTokensFull = func(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
		path := uriToPath(params.TextDocument.URI)
		f, ok := cachedFile(w, path)
		if !ok {
			return &protocol.SemanticTokens{Data: []uint32{}}, nil
		}
		tokens := scanTokens(f)
		return &protocol.SemanticTokens{Data: encodeTokens(tokens)}, nil
	}

	s := glspserver.NewServer(&handler, serverName, opt.Verbose)
	return s.RunStdio()
}

// publish sends one textDocument/publishDiagnostics notification per root,
// attributing every diagnostic from that root's build to the root file
// itself (see workspace.analyzeAll's doc comment on why).
func publish(ctx *glsp.Context, diags map[string][]query.Diagnostic) {
	for root, ds := range diags {
		lsp := make([]protocol.Diagnostic, 0, len(ds))
		for _, d := range ds {
			lsp = append(lsp, protocol.Diagnostic{
				Range:    protocol.Range{},
				Severity: severityPtr(d.Severity),
				Message:  d.Message,
				Source:   strPtr(serverName),
			})
		}
		ctx.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
			URI:         pathToURI(root),
			Diagnostics: lsp,
		})
	}
}

func severityPtr(s query.Severity) *protocol.DiagnosticSeverity {
	var out protocol.DiagnosticSeverity
	switch s {
	case query.Error:
		out = protocol.DiagnosticSeverityError
	case query.Warning:
		out = protocol.DiagnosticSeverityWarning
	case query.Help:
		out = protocol.DiagnosticSeverityHint
	default:
		out = protocol.DiagnosticSeverityInformation
	}
	return &out
}

func strPtr(s string) *string { return &s }

func rootFromParams(params *protocol.InitializeParams) string {
	if params.RootURI != nil {
		return uriToPath(*params.RootURI)
	}
	if params.RootPath != nil {
		return *params.RootPath
	}
	return "."
}

func uriToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	return u.Path
}

func pathToURI(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	return (&url.URL{Scheme: "file", Path: path}).String()
}

// lastFullText returns the newest full-document text in a full-sync
// textDocument/didChange notification. With TextDocumentSyncKindFull the
// client always sends a change event with Range left nil and Text holding
// the entire new document, so the last such event (defensively, in case a
// client batches more than one) is authoritative.
func lastFullText(changes []protocol.TextDocumentContentChangeEvent) string {
	for i := len(changes) - 1; i >= 0; i-- {
		if changes[i].Range == nil {
			return changes[i].Text
		}
	}
	return ""
}

// offsetAt converts an LSP 0-based line/character position into a byte
// offset into path's cached text, for feeding into definitionAt/wordAt.
func offsetAt(w *workspace, path string, pos protocol.Position) int {
	f, ok := cachedFile(w, path)
	if !ok {
		return 0
	}
	line := int(pos.Line)
	col := int(pos.Character)
	offset := 0
	current := 0
	for i := 0; i < len(f.Text); i++ {
		if current == line {
			break
		}
		if f.Text[i] == '\n' {
			current++
			offset = i + 1
		}
	}
	return offset + col
}
