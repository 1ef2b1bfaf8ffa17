// Package loader reads department source documents and splits them into
// chunks ready for indexing.
package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/finsolve/deskagent/internal/domain"
	"github.com/google/uuid"
)

// Format identifies how a source file is parsed.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// Source is one department document to ingest.
type Source struct {
	Domain domain.DomainKey
	Path   string
	Format Format
}

// DefaultSources maps the six knowledge domains to their documents under
// dataDir.
func DefaultSources(dataDir string) []Source {
	return []Source{
		{Domain: domain.DomainEngineering, Path: filepath.Join(dataDir, "engineering", "engineering_master_doc.md"), Format: FormatMarkdown},
		{Domain: domain.DomainFinanceSummary, Path: filepath.Join(dataDir, "finance", "financial_summary.md"), Format: FormatMarkdown},
		{Domain: domain.DomainFinanceQuarterly, Path: filepath.Join(dataDir, "finance", "quarterly_financial_report.md"), Format: FormatMarkdown},
		{Domain: domain.DomainGeneral, Path: filepath.Join(dataDir, "general", "employee_handbook.md"), Format: FormatMarkdown},
		{Domain: domain.DomainHR, Path: filepath.Join(dataDir, "hr", "hr_data.csv"), Format: FormatCSV},
		{Domain: domain.DomainMarketing, Path: filepath.Join(dataDir, "marketing", "market_report_q4_2024.md"), Format: FormatMarkdown},
	}
}

// SourceFor returns the configured source for one domain.
func SourceFor(dataDir string, key domain.DomainKey) (Source, bool) {
	for _, s := range DefaultSources(dataDir) {
		if s.Domain == key {
			return s, true
		}
	}
	return Source{}, false
}

// LoadChunks reads a source document and splits it into chunks with
// provenance metadata.
func LoadChunks(src Source, cfg SplitConfig) ([]domain.Chunk, error) {
	var texts []string
	var err error

	switch src.Format {
	case FormatCSV:
		texts, err = loadCSV(src.Path)
	default:
		texts, err = loadMarkdown(src.Path)
	}
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.Chunk, 0, len(texts))
	index := 0
	for _, text := range texts {
		for _, piece := range Split(text, cfg) {
			chunks = append(chunks, domain.Chunk{
				ID:         uuid.NewString(),
				Domain:     src.Domain,
				ChunkIndex: index,
				Content:    piece,
				Metadata: map[string]string{
					"source": src.Path,
					"domain": string(src.Domain),
				},
			})
			index++
		}
	}

	if len(chunks) == 0 {
		return nil, domain.ErrEmptyDocument
	}
	return chunks, nil
}

func loadMarkdown(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeNotFound, fmt.Sprintf("source document %s not found", path), err)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return []string{string(data)}, nil
}

// loadCSV renders each data row as a "header: value" block, one document per
// row, so row-level records stay intact through splitting.
func loadCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeNotFound, fmt.Sprintf("source document %s not found", path), err)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, domain.ErrEmptyDocument
	}

	header := records[0]
	docs := make([]string, 0, len(records)-1)
	for _, row := range records[1:] {
		var b strings.Builder
		for i, value := range row {
			if i < len(header) {
				b.WriteString(header[i])
				b.WriteString(": ")
			}
			b.WriteString(value)
			b.WriteString("\n")
		}
		doc := strings.TrimSpace(b.String())
		if doc != "" {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}
