package usda

type parseOpts struct {
	file string
}

type ParseOption func(*parseOpts)

// ParseFile names the source in syntax errors.
func ParseFile(name string) ParseOption {
	return func(o *parseOpts) { o.file = name }
}

type EncodeOption func(*encState)

// EncodeColors colours the output for a terminal.
func EncodeColors(c *Colors) EncodeOption {
	return func(es *encState) { es.colors = c }
}

// EncodeIndent sets the number of spaces per nesting level, 4 by default.
func EncodeIndent(n int) EncodeOption {
	return func(es *encState) { es.indent = n }
}
