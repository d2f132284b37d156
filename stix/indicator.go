package stix

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/misp-feeds/ics-stix-update/rss"
)

// Fingerprint returns the hex SHA-256 of the advisory link. It identifies the
// advisory URL and is not a hash of any file content, even though it is carried
// in a file hash pattern for MISP.
func Fingerprint(link string) string {
	sum := sha256.Sum256([]byte(link))
	return hex.EncodeToString(sum[:])
}

func Pattern(fingerprint string) string {
	return fmt.Sprintf("[file:hashes.'SHA-256' = '%s']", fingerprint)
}

type BuilderOption func(*Builder)

// WithClock sets the source of the run time stamped on every indicator.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// WithIDGenerator replaces the random UUIDv4 used in object ids.
func WithIDGenerator(gen func() string) BuilderOption {
	return func(b *Builder) { b.newID = gen }
}

// Builder converts advisories of one feed run. created and modified of every
// indicator are the time the Builder was made.
type Builder struct {
	sourceName string
	now        func() time.Time
	newID      func() string
	created    Timestamp
}

func NewBuilder(sourceName string, opts ...BuilderOption) *Builder {
	b := &Builder{
		sourceName: sourceName,
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(b)
	}
	b.created = NewTimestamp(b.now())
	return b
}

// BuildAll converts items in order. Each progress func is called once per item.
func (b *Builder) BuildAll(items []rss.Item, progress ...func()) []Indicator {
	return lo.Map(items, func(item rss.Item, _ int) Indicator {
		indicator := b.Build(item)
		for _, p := range progress {
			p()
		}
		return indicator
	})
}

func (b *Builder) Build(item rss.Item) Indicator {
	validFrom := b.created
	if !item.Published.IsZero() {
		validFrom = NewTimestamp(item.Published)
	}

	return Indicator{
		Type:        TypeIndicator,
		SpecVersion: SpecVersion,
		ID:          TypeIndicator + "--" + b.newID(),
		Created:     b.created,
		Modified:    b.created,
		Name:        item.Title,
		Description: item.Description,
		Pattern:     Pattern(Fingerprint(item.Link)),
		PatternType: PatternTypeSTIX,
		ValidFrom:   validFrom,
		ExternalReferences: []ExternalReference{
			{
				SourceName: b.sourceName,
				URL:        item.Link,
			},
		},
	}
}

func (b *Builder) Bundle(indicators []Indicator) Bundle {
	return Bundle{
		Type:    TypeBundle,
		ID:      TypeBundle + "--" + b.newID(),
		Objects: indicators,
	}
}
