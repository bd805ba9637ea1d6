package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/flatq/internal/config"
	"github.com/standardbeagle/flatq/internal/docio"
	"github.com/standardbeagle/flatq/internal/flat"
	"github.com/standardbeagle/flatq/internal/search"
	"github.com/standardbeagle/flatq/internal/tree"
)

var errNoDocument = errors.New("document, text or path is required")

// documentParams names the document a tool works on. Exactly one of
// Document, Text or Path is used, checked in the order Path, Text, Document.
type documentParams struct {
	Document  json.RawMessage `json:"document,omitempty"`
	Text      string          `json:"text,omitempty"`
	Path      string          `json:"path,omitempty"`
	Format    string          `json:"format,omitempty"`
	Separator string          `json:"separator,omitempty"`
}

type filterParams struct {
	PathGlob string `json:"path_glob,omitempty"`
	Where    string `json:"where,omitempty"`
}

func (f filterParams) filter() search.Filter {
	return search.Filter{PathGlob: f.PathGlob, Where: f.Where}
}

type FlattenParams struct {
	documentParams
	PreserveEmpty *bool `json:"preserve_empty,omitempty"`
	Strict        *bool `json:"strict,omitempty"`
}

type InflateParams struct {
	Flat      json.RawMessage `json:"flat"`
	Separator string          `json:"separator,omitempty"`
	Strict    *bool           `json:"strict,omitempty"`
}

type KeywordParams struct {
	documentParams
	filterParams
	Keyword       string `json:"keyword"`
	CaseSensitive *bool  `json:"case_sensitive,omitempty"`
	Fuzzy         *bool  `json:"fuzzy,omitempty"`
	KeysOnly      bool   `json:"keys_only,omitempty"`
	ValuesOnly    bool   `json:"values_only,omitempty"`
}

type QueryParams struct {
	documentParams
	filterParams
	Query         string `json:"query"`
	CaseSensitive *bool  `json:"case_sensitive,omitempty"`
	Fuzzy         *bool  `json:"fuzzy,omitempty"`
	Stem          *bool  `json:"stem,omitempty"`
	MaxResults    *int   `json:"max_results,omitempty"`
}

type TokenizeParams struct {
	Words []string `json:"words"`
}

// RankedResult is one search_query hit.
type RankedResult struct {
	Path  string     `json:"path"`
	Value *tree.Node `json:"value"`
	Score int        `json:"score"`
}

// DroppedResult is one field lost while inflating.
type DroppedResult struct {
	Path  string     `json:"path"`
	Key   string     `json:"key"`
	Value *tree.Node `json:"value"`
}

// configFor returns the server config with a per-call separator applied.
func (s *Server) configFor(sep string, apply func(*config.Config)) (*config.Config, error) {
	cfg := s.cfg.Clone()
	if sep != "" {
		cfg.Codec.Separator = sep
	}
	if apply != nil {
		apply(cfg)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *Server) loadDocument(p documentParams) (*tree.Node, error) {
	format := docio.FormatJSON
	if p.Format != "" {
		f, err := docio.ParseFormat(p.Format)
		if err != nil {
			return nil, err
		}
		format = f
	}

	switch {
	case p.Path != "":
		if p.Format == "" {
			format = docio.DetectFormat(p.Path)
		}
		doc, err := docio.LoadAs(p.Path, format)
		if err != nil {
			return nil, err
		}
		return doc.Root, nil
	case p.Text != "":
		return docio.Decode([]byte(p.Text), format)
	case len(p.Document) > 0 && string(p.Document) != "null":
		return tree.ParseJSON(p.Document)
	}
	return nil, errNoDocument
}

// engine builds a search engine for cfg that shares the server's tokenizer
// cache across calls.
func (s *Server) engine(cfg *config.Config) *search.Engine {
	m := cfg.NewMatcher()
	m.Splitter = s.splitter
	return search.NewEngine(cfg.Codec.Separator, m)
}

// flattenDocument loads the document and flattens it with cfg.
func (s *Server) flattenDocument(cfg *config.Config, p documentParams) (*flat.FlatMap, error) {
	root, err := s.loadDocument(p)
	if err != nil {
		return nil, err
	}
	codec, err := flat.New(cfg.CodecOptions())
	if err != nil {
		return nil, err
	}
	return codec.Flatten(root)
}

func withWarnings(data map[string]interface{}, unknown []UnknownField) map[string]interface{} {
	if len(unknown) > 0 {
		data["unknown_parameters"] = unknown
	}
	return data
}

func (s *Server) handleFlatten(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("flatten", func() (*mcp.CallToolResult, error) {
		var p FlattenParams
		unknown, err := decodeParams(req.Params.Arguments, &p)
		if err != nil {
			return nil, fmt.Errorf("invalid parameters: %w", err)
		}

		cfg, err := s.configFor(p.Separator, func(c *config.Config) {
			if p.PreserveEmpty != nil {
				c.Codec.PreserveEmpty = *p.PreserveEmpty
			}
			if p.Strict != nil {
				c.Codec.Strict = *p.Strict
			}
		})
		if err != nil {
			return nil, err
		}

		fm, err := s.flattenDocument(cfg, p.documentParams)
		if err != nil {
			return nil, err
		}
		return createJSONResponse(withWarnings(map[string]interface{}{
			"flat":  fm,
			"count": fm.Len(),
		}, unknown))
	})
}

func (s *Server) handleInflate(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("inflate", func() (*mcp.CallToolResult, error) {
		var p InflateParams
		unknown, err := decodeParams(req.Params.Arguments, &p)
		if err != nil {
			return nil, fmt.Errorf("invalid parameters: %w", err)
		}
		if len(p.Flat) == 0 {
			return nil, errors.New("flat is required")
		}

		cfg, err := s.configFor(p.Separator, func(c *config.Config) {
			if p.Strict != nil {
				c.Codec.Strict = *p.Strict
			}
		})
		if err != nil {
			return nil, err
		}

		fm := flat.NewFlatMap(0)
		if err := fm.UnmarshalJSON(p.Flat); err != nil {
			return nil, err
		}
		codec, err := flat.New(cfg.CodecOptions())
		if err != nil {
			return nil, err
		}
		res, err := codec.InflateReport(fm)
		if err != nil {
			return nil, err
		}

		dropped := make([]DroppedResult, 0, len(res.Dropped))
		for _, d := range res.Dropped {
			dropped = append(dropped, DroppedResult{Path: d.Path, Key: d.Key, Value: d.Value})
		}
		return createJSONResponse(withWarnings(map[string]interface{}{
			"document": res.Tree,
			"dropped":  dropped,
		}, unknown))
	})
}

func (s *Server) handleSearchKeyword(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("search_keyword", func() (*mcp.CallToolResult, error) {
		var p KeywordParams
		unknown, err := decodeParams(req.Params.Arguments, &p)
		if err != nil {
			return nil, fmt.Errorf("invalid parameters: %w", err)
		}

		cfg, err := s.configFor(p.Separator, nil)
		if err != nil {
			return nil, err
		}
		fm, err := s.flattenDocument(cfg, p.documentParams)
		if err != nil {
			return nil, err
		}

		opts := cfg.KeywordOptions()
		if p.CaseSensitive != nil {
			opts.CaseSensitive = *p.CaseSensitive
		}
		if p.Fuzzy != nil {
			opts.Fuzzy = *p.Fuzzy
		}
		opts.KeysOnly, opts.ValuesOnly = p.KeysOnly, p.ValuesOnly
		opts.Filter = p.filter()

		res, err := s.engine(cfg).SearchByKeyword(fm, p.Keyword, opts)
		if err != nil {
			return nil, err
		}
		return createJSONResponse(withWarnings(map[string]interface{}{
			"by_key":   res.ByKey,
			"by_value": res.ByValue,
			"count":    res.Len(),
		}, unknown))
	})
}

func (s *Server) handleSearchQuery(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("search_query", func() (*mcp.CallToolResult, error) {
		var p QueryParams
		unknown, err := decodeParams(req.Params.Arguments, &p)
		if err != nil {
			return nil, fmt.Errorf("invalid parameters: %w", err)
		}

		cfg, err := s.configFor(p.Separator, nil)
		if err != nil {
			return nil, err
		}
		fm, err := s.flattenDocument(cfg, p.documentParams)
		if err != nil {
			return nil, err
		}

		opts := cfg.QueryOptions()
		if p.CaseSensitive != nil {
			opts.CaseSensitive = *p.CaseSensitive
		}
		if p.Fuzzy != nil {
			opts.Fuzzy = *p.Fuzzy
		}
		if p.Stem != nil {
			opts.Stem = *p.Stem
		}
		if p.MaxResults != nil {
			opts.MaxResults = *p.MaxResults
		}
		opts.Filter = p.filter()

		ranked, err := s.engine(cfg).RankByQuery(p.Query, fm, opts)
		if err != nil {
			return nil, err
		}
		results := make([]RankedResult, 0, len(ranked))
		for _, r := range ranked {
			results = append(results, RankedResult{Path: r.Path, Value: r.Value, Score: r.Score})
		}
		return createJSONResponse(withWarnings(map[string]interface{}{
			"results": results,
			"count":   len(results),
		}, unknown))
	})
}

func (s *Server) handleTokenize(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("tokenize", func() (*mcp.CallToolResult, error) {
		var p TokenizeParams
		unknown, err := decodeParams(req.Params.Arguments, &p)
		if err != nil {
			return nil, fmt.Errorf("invalid parameters: %w", err)
		}

		type tokenized struct {
			Word   string   `json:"word"`
			Tokens []string `json:"tokens"`
		}
		out := make([]tokenized, 0, len(p.Words))
		for _, w := range p.Words {
			out = append(out, tokenized{Word: w, Tokens: s.splitter.Split(w)})
		}
		return createJSONResponse(withWarnings(map[string]interface{}{
			"results": out,
		}, unknown))
	})
}

func (s *Server) handleRoundtrip(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("roundtrip", func() (*mcp.CallToolResult, error) {
		var p documentParams
		unknown, err := decodeParams(req.Params.Arguments, &p)
		if err != nil {
			return nil, fmt.Errorf("invalid parameters: %w", err)
		}

		cfg, err := s.configFor(p.Separator, nil)
		if err != nil {
			return nil, err
		}
		root, err := s.loadDocument(p)
		if err != nil {
			return nil, err
		}
		codec, err := flat.New(cfg.CodecOptions())
		if err != nil {
			return nil, err
		}
		report, err := codec.Verify(root)
		if err != nil {
			return nil, err
		}

		data := map[string]interface{}{
			"ok":          report.OK,
			"flat_count":  report.Flat.Len(),
			"dropped":     len(report.Dropped),
			"diff":        report.Diff,
			"merge_patch": nil,
		}
		if len(report.MergePatch) > 0 {
			data["merge_patch"] = json.RawMessage(report.MergePatch)
		}
		return createJSONResponse(withWarnings(data, unknown))
	})
}
