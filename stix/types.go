package stix

import (
	"time"

	"golang.org/x/xerrors"
)

const (
	SpecVersion = "2.1"

	TypeBundle    = "bundle"
	TypeIndicator = "indicator"

	PatternTypeSTIX = "stix"

	timestampFormat = "2006-01-02T15:04:05.000Z"
)

type Bundle struct {
	Type    string      `json:"type"`
	ID      string      `json:"id"`
	Objects []Indicator `json:"objects,omitempty"`
}

type Indicator struct {
	Type               string              `json:"type"`
	SpecVersion        string              `json:"spec_version"`
	ID                 string              `json:"id"`
	Created            Timestamp           `json:"created"`
	Modified           Timestamp           `json:"modified"`
	Name               string              `json:"name"`
	Description        string              `json:"description"`
	Pattern            string              `json:"pattern"`
	PatternType        string              `json:"pattern_type"`
	ValidFrom          Timestamp           `json:"valid_from"`
	ExternalReferences []ExternalReference `json:"external_references"`
}

type ExternalReference struct {
	SourceName string `json:"source_name"`
	URL        string `json:"url"`
}

// Timestamp is a UTC time rendered with millisecond precision, e.g. 2024-04-11T12:00:00.000Z
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(timestampFormat) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return xerrors.Errorf("invalid timestamp: %s", b)
	}
	parsed, err := time.Parse(time.RFC3339Nano, string(b[1:len(b)-1]))
	if err != nil {
		return xerrors.Errorf("invalid timestamp: %w", err)
	}
	t.Time = parsed.UTC()
	return nil
}
