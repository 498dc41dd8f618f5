package convert

var registry = map[Kind]Func{
	Paragraph:        paragraph,
	TableOfContents:  paragraph,
	Toggle:           paragraph,
	Quote:            quote,
	BulletedListItem: bulleted,
	NumberedListItem: numbered,
	Heading1:         heading,
	Heading2:         heading,
	Heading3:         heading,
	Equation:         equation,
	Image:            image,
	ChildPage:        childPage,
	Bookmark:         bookmark,
	Code:             code,
	Divider:          empty,
	ColumnList:       empty,
	Table:            table,
}

// table_row is rendered by table; column content is flattened by the walker.
var excluded = map[Kind]bool{
	TableRow: true,
	Column:   true,
}

// Lookup returns the converter registered for kind.
func Lookup(kind string) (Func, bool) {
	fn, ok := registry[Kind(kind)]
	return fn, ok
}

// Excluded reports whether kind is never dispatched directly.
func Excluded(kind string) bool {
	return excluded[Kind(kind)]
}
