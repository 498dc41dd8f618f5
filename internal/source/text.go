package source

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/blockmd/internal/memstore"
)

// TextImporter handles plain text files. Blank lines separate paragraphs.
type TextImporter struct{}

func (p *TextImporter) Import(r io.Reader, filename string) (*Tree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	tree := newTree(baseTitle(filename))
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			tree.Add(tree.RootID, memstore.Paragraph(memstore.Text(current.String())))
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return tree, nil
}
