package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL applies dir/.flatq.kdl on top of base. It returns nil, nil when
// the file does not exist.
func LoadKDL(dir string, base *Config) (*Config, error) {
	kdlPath := filepath.Join(dir, FileName)

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", kdlPath, err)
	}

	cfg, err := parseKDL(string(content), base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kdlPath, err)
	}
	return cfg, nil
}

// parseKDL applies the KDL document to a copy of base. Keys not present in
// the document keep base's values; stemming exclusions accumulate.
func parseKDL(content string, base *Config) (*Config, error) {
	if base == nil {
		base = Default()
	}
	cfg := base.Clone()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "codec":
			for _, cn := range n.Children { // codec { separator "/" strict true }
				switch nodeName(cn) {
				case "separator":
					if s, ok := firstStringArg(cn); ok {
						cfg.Codec.Separator = s
					}
				case "preserve_empty":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Codec.PreserveEmpty = b
					}
				case "strict":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Codec.Strict = b
					}
				case "max_index":
					if v, ok := firstIntArg(cn); ok {
						cfg.Codec.MaxIndex = v
					}
				case "load_concurrency":
					if v, ok := firstIntArg(cn); ok {
						cfg.Codec.LoadConcurrency = v
					}
				}
			}
		case "search":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "case_sensitive":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Search.CaseSensitive = b
					}
				case "fuzzy":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Search.Fuzzy = b
					}
				case "stem":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Search.Stem = b
					}
				case "max_results":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.MaxResults = v
					}
				}
			}
		case "fuzzy":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "threshold":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Fuzzy.Threshold = v
					}
				case "algorithm":
					if s, ok := firstStringArg(cn); ok {
						cfg.Fuzzy.Algorithm = s
					}
				case "fold_case":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Fuzzy.FoldCase = b
					}
				}
			}
		case "stemming":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Stemming.Enabled = b
					}
				case "algorithm":
					if s, ok := firstStringArg(cn); ok {
						cfg.Stemming.Algorithm = s
					}
				case "min_length":
					if v, ok := firstIntArg(cn); ok {
						cfg.Stemming.MinLength = v
					}
				case "exclusions":
					cfg.Stemming.Exclusions = dedupe(append(cfg.Stemming.Exclusions, collectStringArgs(cn)...))
				}
			}
		case "tokenizer":
			for _, cn := range n.Children {
				if nodeName(cn) == "cache_size" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Tokenizer.CacheSize = v
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				if nodeName(cn) == "debounce_ms" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		default:
			log.Printf("WARNING: unknown section '%s' in KDL config", nodeName(n))
		}
	}

	return cfg, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Helpers over the kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}
func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}
func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}
func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		log.Printf("WARNING: invalid float value for '%s' in KDL config, expected number but got %T", nodeName(n), n.Arguments[0].Value)
		return 0, false
	}
}
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// Block form: exclusions { "data" "news" }, each string is a child node name
	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
