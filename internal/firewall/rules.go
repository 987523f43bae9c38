package firewall

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"grimm.is/georules/internal/logging"
)

// Rule actions.
const (
	ActionDrop   = "DROP"
	ActionAccept = "ACCEPT"
)

// Rule directory layouts.
const (
	// LayoutInPlace puts rules in the range file's path minus its extension.
	LayoutInPlace = "inplace"
	// LayoutNested puts rules in <RulesDir>/<token>.
	LayoutNested = "nested"
)

// DefaultChain is used when neither Prefix nor Chain is configured.
const DefaultChain = "INPUT"

// RuleConfig describes how rule lines are rendered and where they go.
type RuleConfig struct {
	// Prefix overrides the rendered rule prefix entirely.
	Prefix    string
	Chain     string
	Interface string
	// Actions is [DROP] or [DROP ACCEPT].
	Actions  []string
	Layout   string
	RulesDir string
}

// DefaultRuleConfig returns the DROP-only, in-place configuration.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		Chain:   DefaultChain,
		Actions: []string{ActionDrop},
		Layout:  LayoutInPlace,
	}
}

// RulePrefix renders the text placed before each range.
func (c RuleConfig) RulePrefix() string {
	if c.Prefix != "" {
		return c.Prefix
	}
	chain := c.Chain
	if chain == "" {
		chain = DefaultChain
	}
	parts := []string{"-A", chain}
	if c.Interface != "" {
		parts = append(parts, "-i", c.Interface)
	}
	parts = append(parts, "-m", "iprange", "--src-range")
	return strings.Join(parts, " ")
}

func (c RuleConfig) validate() error {
	switch {
	case len(c.Actions) == 1 && c.Actions[0] == ActionDrop:
	case len(c.Actions) == 2 && c.Actions[0] == ActionDrop && c.Actions[1] == ActionAccept:
	default:
		return fmt.Errorf("actions must be [DROP] or [DROP ACCEPT], got %v", c.Actions)
	}

	switch c.Layout {
	case "", LayoutInPlace, LayoutNested:
	default:
		return fmt.Errorf("unknown rule layout %q", c.Layout)
	}

	if strings.ContainsAny(c.RulePrefix(), "\r\n") {
		return fmt.Errorf("rule prefix must be a single line")
	}
	return nil
}

// RuleLine renders one rule.
func RuleLine(prefix, rng, action string) string {
	return prefix + " " + rng + " -j " + action
}

// Result describes the artifacts produced for one range file.
type Result struct {
	Dir       string
	Artifacts []string
	Ranges    int
	Rules     int
}

// Synthesizer turns range files into per-action rule artifacts.
type Synthesizer struct {
	fs     afero.Fs
	cfg    RuleConfig
	prefix string
	logger *logging.Logger
}

// NewSynthesizer validates cfg and returns a Synthesizer writing to fs.
func NewSynthesizer(fs afero.Fs, cfg RuleConfig, logger *logging.Logger) (*Synthesizer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Layout == "" {
		cfg.Layout = LayoutInPlace
	}
	return &Synthesizer{
		fs:     fs,
		cfg:    cfg,
		prefix: cfg.RulePrefix(),
		logger: logging.OrDefault(logger).WithComponent("rules"),
	}, nil
}

// Config returns the configuration in use.
func (s *Synthesizer) Config() RuleConfig {
	return s.cfg
}

// RuleDir returns where the rules for rangePath are written.
func (s *Synthesizer) RuleDir(rangePath string) string {
	trimmed := strings.TrimSuffix(rangePath, filepath.Ext(rangePath))
	if s.cfg.Layout != LayoutNested {
		return trimmed
	}
	root := s.cfg.RulesDir
	if root == "" {
		root = filepath.Dir(rangePath)
	}
	return filepath.Join(root, filepath.Base(trimmed))
}

// Synthesize writes one artifact per configured action for the ranges in
// rangePath, then removes rangePath. Every artifact is renamed into place
// before the range file is removed, so a failure leaves it behind.
func (s *Synthesizer) Synthesize(rangePath string) (Result, error) {
	dir := s.RuleDir(rangePath)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return Result{}, &IOError{Op: "mkdir", Path: dir, Err: err}
	}

	raw, err := afero.ReadFile(s.fs, rangePath)
	if err != nil {
		return Result{}, &IOError{Op: "read", Path: rangePath, Err: err}
	}

	var ranges []string
	for _, line := range strings.Split(string(raw), "\n") {
		if r := strings.TrimSpace(line); r != "" {
			ranges = append(ranges, r)
		}
	}

	res := Result{Dir: dir, Ranges: len(ranges)}
	for _, action := range s.cfg.Actions {
		var sb strings.Builder
		for _, r := range ranges {
			sb.WriteString(RuleLine(s.prefix, r, action))
			sb.WriteByte('\n')
		}

		path := filepath.Join(dir, action)
		if err := s.writeAtomic(path, []byte(sb.String())); err != nil {
			return res, err
		}
		res.Artifacts = append(res.Artifacts, path)
		res.Rules += len(ranges)
	}

	if err := s.fs.Remove(rangePath); err != nil {
		return res, &IOError{Op: "remove", Path: rangePath, Err: err}
	}

	s.logger.Debug("Wrote rules", "dir", dir, "ranges", res.Ranges, "rules", res.Rules)
	return res, nil
}

func (s *Synthesizer) writeAtomic(path string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")

	f, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return &IOError{Op: "create", Path: tmp, Err: err}
	}
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		s.fs.Remove(tmp)
		if werr == nil {
			werr = cerr
		}
		return &IOError{Op: "write", Path: tmp, Err: werr}
	}

	if err := s.fs.Rename(tmp, path); err != nil {
		s.fs.Remove(tmp)
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
