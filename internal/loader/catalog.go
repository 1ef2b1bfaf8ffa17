package loader

import "github.com/finsolve/deskagent/internal/domain"

// Catalog resolves domain keys to their source documents under a data
// directory and loads them with a fixed split configuration.
type Catalog struct {
	DataDir string
	Split   SplitConfig
}

func NewCatalog(dataDir string, split SplitConfig) Catalog {
	return Catalog{DataDir: dataDir, Split: split}
}

func (c Catalog) Load(key domain.DomainKey) ([]domain.Chunk, error) {
	src, ok := SourceFor(c.DataDir, key)
	if !ok {
		return nil, domain.ErrUnknownDomain
	}
	return LoadChunks(src, c.Split)
}
