package types

import (
	"fmt"
	"go/token"
	"strings"
)

// Issue represents a lint issue found in the code base.
type Issue struct {
	Rule       string
	Category   string
	Filename   string
	Message    string
	Suggestion string
	Note       string
	Start      token.Position
	End        token.Position
	Severity   Severity
}

// Severity is the level a rule reports its issues at.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	case SeverityOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity is the inverse of Severity.String. It is case-insensitive.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return SeverityError, nil
	case "WARNING":
		return SeverityWarning, nil
	case "INFO":
		return SeverityInfo, nil
	case "OFF":
		return SeverityOff, nil
	}
	return SeverityError, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

func (s *Severity) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// ConfigRule is the per-rule section of the configuration file.
type ConfigRule struct {
	Severity Severity `yaml:"severity"`
}
