package rss_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/misp-feeds/ics-stix-update/rss"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		inputFile string
		want      []rss.Item
		wantErr   string
	}{
		{
			name:      "happy path",
			inputFile: "testdata/ics-advisories.xml",
			want: []rss.Item{
				{
					Title:       "Siemens SIMATIC S7-1500 CPU",
					Link:        "https://www.cisa.gov/news-events/ics-advisories/icsa-24-102-01",
					Description: "<h2>1. EXECUTIVE SUMMARY</h2><p>CVSS v4 9.3</p>",
					GUID:        "/node/20581",
					Published:   time.Date(2024, 4, 11, 12, 0, 0, 0, time.UTC),
				},
				{
					Title:       "Schneider Electric Easergy Studio",
					Link:        "https://www.cisa.gov/news-events/ics-advisories/icsa-24-102-02",
					Description: "<p>Successful exploitation could allow an attacker to execute code.</p>",
					GUID:        "/node/20582",
				},
			},
		},
		{
			name:      "items at any depth",
			inputFile: "testdata/nested.xml",
			want: []rss.Item{
				{Title: "Advisory X", Link: "http://example.com/x", Description: "desc"},
				{Title: "Advisory Y", Link: "http://example.com/y", Description: "desc y"},
			},
		},
		{
			name:      "namespaced children are ignored, first link wins",
			inputFile: "testdata/atom-link.xml",
			want: []rss.Item{
				{
					Title:       "Advisory X",
					Link:        "http://example.com/x",
					Description: "desc",
					Published:   time.Date(2024, 4, 11, 12, 0, 0, 0, time.UTC),
				},
			},
		},
		{
			name:      "link is kept as written",
			inputFile: "testdata/padded-link.xml",
			want: []rss.Item{
				{Title: "Advisory X", Link: "\n  http://example.com/x\n", Description: "desc"},
			},
		},
		{
			name:      "items nested in items",
			inputFile: "testdata/nested-items.xml",
			want: []rss.Item{
				{Title: "A", Link: "http://example.com/a", Description: "outer"},
				{Title: "B", Link: "http://example.com/b", Description: "inner"},
				{Title: "C", Link: "http://example.com/c", Description: "last"},
			},
		},
		{
			name:      "ISO-8859-1 feed",
			inputFile: "testdata/latin1.xml",
			want: []rss.Item{
				{Title: "Café controller", Link: "http://example.com/cafe", Description: "Français"},
			},
		},
		{
			name:      "empty feed",
			inputFile: "testdata/empty.xml",
			want:      []rss.Item{},
		},
		{
			name:      "sad path, malformed XML",
			inputFile: "testdata/malformed.xml",
			wantErr:   "failed to decode RSS",
		},
		{
			name:      "sad path, missing fields",
			inputFile: "testdata/missing-fields.xml",
			wantErr:   "item #1: missing description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := os.ReadFile(tt.inputFile)
			require.NoError(t, err)

			got, err := rss.Parse(b)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].Title, got[i].Title)
				assert.Equal(t, tt.want[i].Link, got[i].Link)
				assert.Equal(t, tt.want[i].Description, got[i].Description)
				assert.Equal(t, tt.want[i].GUID, got[i].GUID)
				assert.True(t, tt.want[i].Published.Equal(got[i].Published),
					"published: want %s, got %s", tt.want[i].Published, got[i].Published)
			}
		})
	}
}

func TestParse_MissingFieldErrors(t *testing.T) {
	b, err := os.ReadFile("testdata/missing-fields.xml")
	require.NoError(t, err)

	_, err = rss.Parse(b)
	require.Error(t, err)

	var missing *rss.MissingFieldError
	require.True(t, xerrors.As(err, &missing))
	assert.Equal(t, &rss.MissingFieldError{Index: 1, Field: "description"}, missing)

	assert.Contains(t, err.Error(), "item #2: missing title")
	assert.Contains(t, err.Error(), "item #2: missing link")
	assert.NotContains(t, err.Error(), "item #0")
}

func TestParse_PubDateWithoutZone(t *testing.T) {
	local := time.Local
	time.Local = time.FixedZone("JST", 9*60*60)
	t.Cleanup(func() { time.Local = local })

	b, err := os.ReadFile("testdata/atom-link.xml")
	require.NoError(t, err)

	got, err := rss.Parse(b)
	require.NoError(t, err)
	require.Len(t, got, 1)
	want := time.Date(2024, 4, 11, 12, 0, 0, 0, time.UTC)
	assert.True(t, want.Equal(got[0].Published), "published: want %s, got %s", want, got[0].Published)
}
