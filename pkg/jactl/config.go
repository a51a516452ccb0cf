package jactl

import (
	"github.com/goccy/go-yaml"
)

// FileConfig is the on-disk shape of a Jactl project config file
// (SPEC_FULL.md §B3), loaded with goccy/go-yaml rather than hand-rolled
// flag parsing so nested config (e.g. per-environment overrides) is
// possible without extra plumbing.
type FileConfig struct {
	ReplMode           bool `yaml:"replMode"`
	DebugLevel         int  `yaml:"debugLevel"`
	MinScale           int  `yaml:"minScale"`
	EvaluateConstExprs bool `yaml:"evaluateConstExprs"`
	PrintLoop          bool `yaml:"printLoop"`
	NonPrintLoop       bool `yaml:"nonPrintLoop"`
}

// LoadOptionsFromYAML parses a YAML document into Options. A minScale that
// is absent from the document (or zero) becomes 10.
func LoadOptionsFromYAML(doc []byte) (*Options, error) {
	var cfg FileConfig
	if err := yaml.Unmarshal(doc, &cfg); err != nil {
		return nil, err
	}
	o := newOptions(
		WithReplMode(cfg.ReplMode),
		WithDebugLevel(cfg.DebugLevel),
		WithMinScale(cfg.MinScale),
		WithEvaluateConstExprs(cfg.EvaluateConstExprs),
		WithPrintLoop(cfg.PrintLoop),
		WithNonPrintLoop(cfg.NonPrintLoop),
	)
	if o.MinScale == 0 {
		o.MinScale = 10
	}
	return o, nil
}
