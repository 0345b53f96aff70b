// Package loader reads records from common tabular and document formats
// into the flat {id, text} shape the pipeline consumes. This is purely
// peripheral to the extraction core: the core only ever sees a Record.
package loader

// Record is one unit of text to extract a knowledge graph from. Fields
// beyond ID and Text are tolerated and passed through unchanged; the core
// never inspects Extra.
type Record struct {
	ID    string
	Text  string
	Extra map[string]string
}
