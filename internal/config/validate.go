package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"grimm.is/georules/internal/logging"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

var (
	interfaceNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._-]*$`)
	chainNameRegex     = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// Validate validates the entire configuration. Call ApplyDefaults first.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.SchemaVersion != CurrentSchemaVersion {
		add("schema_version", "unsupported schema version %q (supported: %s)", c.SchemaVersion, CurrentSchemaVersion)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		add("output_dir", "must not be empty")
	}
	if c.Workers < 1 {
		add("workers", "must be at least 1, got %d", c.Workers)
	}
	switch c.Collisions {
	case CollisionsFail, CollisionsSuffix:
	default:
		add("collisions", "must be %q or %q, got %q", CollisionsFail, CollisionsSuffix, c.Collisions)
	}

	if c.Source != nil {
		errs = append(errs, c.Source.validate()...)
	}
	if c.Rules != nil {
		errs = append(errs, c.Rules.validate()...)
	}
	if c.GeoIP != nil && c.GeoIP.Enabled && c.GeoIP.DatabasePath == "" {
		add("geoip.database_path", "required when geoip is enabled")
	}
	if c.Log != nil {
		if _, err := logging.ParseLevel(c.Log.Level); err != nil {
			add("log.level", "%v", err)
		}
	}

	return errs
}

func (s *SourceConfig) validate() ValidationErrors {
	var errs ValidationErrors
	if s.URL != "" && !isValidURL(s.URL) {
		errs = append(errs, ValidationError{Field: "source.url", Message: fmt.Sprintf("must be an http(s) URL, got %q", s.URL)})
	}
	switch s.Format {
	case FormatDefault, FormatGeoIPCountryWhois:
	default:
		errs = append(errs, ValidationError{Field: "source.format", Message: fmt.Sprintf("unknown format %q", s.Format)})
	}
	if d, err := time.ParseDuration(s.MaxAge); err != nil || d < 0 {
		errs = append(errs, ValidationError{Field: "source.max_age", Message: fmt.Sprintf("invalid duration %q", s.MaxAge)})
	}
	if strings.ContainsAny(s.Member, `/\`) {
		errs = append(errs, ValidationError{Field: "source.member", Message: "must be a bare file name"})
	}
	return errs
}

func (r *RulesConfig) validate() ValidationErrors {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: "rules." + field, Message: fmt.Sprintf(format, args...)})
	}

	if r.Prefix == "" && !chainNameRegex.MatchString(r.Chain) {
		add("chain", "invalid chain name %q", r.Chain)
	}
	if r.Interface != "" && !isValidInterfaceName(r.Interface) {
		add("interface", "invalid interface name %q", r.Interface)
	}
	if strings.ContainsAny(r.Prefix, "\r\n") {
		add("prefix", "must be a single line")
	}

	switch {
	case len(r.Actions) == 1 && r.Actions[0] == ActionDrop:
	case len(r.Actions) == 2 && containsString(r.Actions, ActionDrop) && containsString(r.Actions, ActionAccept):
	default:
		add("actions", "must be [%q] or [%q, %q], got %v", ActionDrop, ActionDrop, ActionAccept, r.Actions)
	}

	switch r.Layout {
	case LayoutInPlace:
		if r.RulesDir != "" {
			add("rules_dir", "only used with the %q layout", LayoutNested)
		}
	case LayoutNested:
	default:
		add("layout", "must be %q or %q, got %q", LayoutInPlace, LayoutNested, r.Layout)
	}
	return errs
}

func containsString(slice []string, s string) bool {
	for _, item := range slice {
		if item == s {
			return true
		}
	}
	return false
}

func isValidInterfaceName(name string) bool {
	if name == "" || len(name) > 15 {
		return false
	}
	return interfaceNameRegex.MatchString(name)
}

func isValidURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
