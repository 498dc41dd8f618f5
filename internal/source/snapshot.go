package source

import (
	"context"
	"io"

	"github.com/dgallion1/blockmd/internal/memstore"
	"github.com/dgallion1/blockmd/internal/payload"
)

// SnapshotImporter loads a JSON block snapshot written by "blockmd dump".
type SnapshotImporter struct{}

func (p *SnapshotImporter) Import(r io.Reader, filename string) (*Tree, error) {
	store, root, err := memstore.ReadSnapshot(r)
	if err != nil {
		return nil, err
	}
	attrs, _ := store.Retrieve(context.Background(), root)
	title := payload.String(payload.Map(attrs, "child_page"), "title")
	if title == "" {
		title = baseTitle(filename)
	}
	return &Tree{Store: store, RootID: root, Title: title}, nil
}
