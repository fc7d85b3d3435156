package table

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JakeFAU/xpath-scraper/internal/scrape"
)

func TestDecodeURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		column string
		want   []string
	}{
		{
			name:   "single column",
			input:  "URL\nhttps://a.example/\nhttps://b.example/\n",
			column: "URL",
			want:   []string{"https://a.example/", "https://b.example/"},
		},
		{
			name:   "column among others",
			input:  "name,URL,notes\nA,https://a.example/,x\nB,https://b.example/,y\n",
			column: "URL",
			want:   []string{"https://a.example/", "https://b.example/"},
		},
		{
			name:   "byte order mark",
			input:  "\ufeffURL\nhttps://a.example/\n",
			column: "URL",
			want:   []string{"https://a.example/"},
		},
		{
			name:   "duplicates kept",
			input:  "URL\nhttps://a.example/\nhttps://a.example/\n",
			column: "URL",
			want:   []string{"https://a.example/", "https://a.example/"},
		},
		{
			name:   "custom column",
			input:  "Link\nhttps://a.example/\n",
			column: "Link",
			want:   []string{"https://a.example/"},
		},
		{
			name:   "header only",
			input:  "URL\n",
			column: "URL",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := DecodeURLs(strings.NewReader(tc.input), tc.column, nil)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeURLsSkipsBlankCells(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	got, err := DecodeURLs(strings.NewReader("name,URL\nA,https://a.example/\nB,  \nC\n"), "URL", zap.New(core))
	require.NoError(t, err)
	require.Equal(t, []string{"https://a.example/"}, got)
	require.Equal(t, 2, logs.Len())
}

func TestDecodeURLsErrors(t *testing.T) {
	t.Parallel()

	_, err := DecodeURLs(strings.NewReader("Link\nhttps://a.example/\n"), "URL", nil)
	require.ErrorIs(t, err, ErrMissingColumn)

	_, err = DecodeURLs(strings.NewReader(""), "URL", nil)
	require.ErrorIs(t, err, ErrMissingColumn)

	_, err = DecodeURLs(strings.NewReader("URL\n\"unterminated\n"), "URL", nil)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrMissingColumn)
}

func TestReadURLsMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ReadURLs(filepath.Join(t.TempDir(), "nope.csv"), "URL", nil)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteOutcomesRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	outcomes := []scrape.Outcome{
		scrape.Succeeded("https://a.example/", "Title, with comma"),
		scrape.HTTPFailed("https://b.example/", 404),
	}
	require.NoError(t, WriteOutcomes(path, outcomes))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t,
		"URL,Information\nhttps://a.example/,\"Title, with comma\"\nhttps://b.example/,Failed to retrieve page\n",
		string(raw))

	urls, err := ReadURLs(path, HeaderURL, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"https://a.example/", "https://b.example/"}, urls)
}

func TestEncodeOutcomesEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, EncodeOutcomes(&buf, nil))
	require.Equal(t, "URL,Information\n", buf.String())
}
