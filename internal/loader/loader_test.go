package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/finsolve/deskagent/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	chunks := Split("a short document", DefaultSplitConfig())
	assert.Equal(t, []string{"a short document"}, chunks)
}

func TestSplit_EmptyText(t *testing.T) {
	assert.Nil(t, Split("   ", DefaultSplitConfig()))
}

func TestSplit_OverlappingWindows(t *testing.T) {
	words := make([]string, 0, 600)
	for i := 0; i < 600; i++ {
		words = append(words, "word")
	}
	text := strings.Join(words, " ")

	cfg := SplitConfig{ChunkSize: 1000, Overlap: 200}
	chunks := Split(text, cfg)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), cfg.ChunkSize)
		assert.NotEmpty(t, chunk)
	}

	// consecutive chunks share the overlap region
	tail := chunks[0][len(chunks[0])-50:]
	assert.Contains(t, chunks[1], strings.TrimSpace(tail))
}

func TestSplit_BreaksOnWhitespace(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta ", 100)
	chunks := Split(text, SplitConfig{ChunkSize: 100, Overlap: 20})

	for _, chunk := range chunks {
		assert.False(t, strings.HasSuffix(chunk, "alp"), "chunk should not end mid-word: %q", chunk)
	}
}

func TestLoadChunks_Markdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# Engineering\n\nMicroservices architecture notes."), 0o644))

	chunks, err := LoadChunks(Source{Domain: domain.DomainEngineering, Path: path, Format: FormatMarkdown}, DefaultSplitConfig())

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, domain.DomainEngineering, chunks[0].Domain)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Contains(t, chunks[0].Content, "Microservices")
	assert.Equal(t, path, chunks[0].Metadata["source"])
	assert.NotEmpty(t, chunks[0].ID)
}

func TestLoadChunks_CSVOneDocPerRow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hr.csv")
	csvData := "name,role\nAda,Engineer\nGrace,Manager\n"
	require.NoError(t, os.WriteFile(path, []byte(csvData), 0o644))

	chunks, err := LoadChunks(Source{Domain: domain.DomainHR, Path: path, Format: FormatCSV}, DefaultSplitConfig())

	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Contains(t, chunks[0].Content, "name: Ada")
	assert.Contains(t, chunks[0].Content, "role: Engineer")
	assert.Contains(t, chunks[1].Content, "name: Grace")
	assert.Equal(t, 1, chunks[1].ChunkIndex)
}

func TestLoadChunks_MissingFile(t *testing.T) {
	_, err := LoadChunks(Source{Domain: domain.DomainHR, Path: "/nonexistent/file.md", Format: FormatMarkdown}, DefaultSplitConfig())

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeNotFound, domainErr.Code)
}

func TestLoadChunks_EmptyDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.md")
	require.NoError(t, os.WriteFile(path, []byte("   "), 0o644))

	_, err := LoadChunks(Source{Domain: domain.DomainGeneral, Path: path, Format: FormatMarkdown}, DefaultSplitConfig())
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestDefaultSources_CoversAllDomains(t *testing.T) {
	sources := DefaultSources("resources/data")
	require.Len(t, sources, len(domain.DomainKeys))

	seen := map[domain.DomainKey]bool{}
	for _, s := range sources {
		seen[s.Domain] = true
	}
	for _, key := range domain.DomainKeys {
		assert.True(t, seen[key], "missing source for %s", key)
	}
}
