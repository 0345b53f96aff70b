// Package convert serializes a final triple set to interchange formats.
// The teacher has no export step of its own (its graph lives only in
// sqlite); this is grounded on the pack's rdf2go example for the *shape*
// of triple serialization, not the library itself — GraphML and
// N-Triples are both flat, write-only formats, so a parser/store
// library would be pulling in far more than this package ever needs.
package convert

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/dpeckham/kgx/triple"
)

type graphmlNode struct {
	XMLName xml.Name `xml:"node"`
	ID      string   `xml:"id,attr"`
}

type graphmlEdge struct {
	XMLName  xml.Name `xml:"edge"`
	Source   string   `xml:"source,attr"`
	Target   string   `xml:"target,attr"`
	DataData []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key  string `xml:"key,attr"`
	Text string `xml:",chardata"`
}

type graphmlGraph struct {
	XMLName     xml.Name `xml:"graph"`
	EdgeDefault string   `xml:"edgedefault,attr"`
	Nodes       []graphmlNode
	Edges       []graphmlEdge
}

type graphmlKey struct {
	XMLName  xml.Name `xml:"key"`
	ID       string   `xml:"id,attr"`
	For      string   `xml:"for,attr"`
	AttrName string   `xml:"attr.name,attr"`
	AttrType string   `xml:"attr.type,attr"`
}

type graphmlDocument struct {
	XMLName   xml.Name `xml:"graphml"`
	XMLNS     string   `xml:"xmlns,attr"`
	Keys      []graphmlKey
	Graph     graphmlGraph
}

// ToGraphML writes the final triple set as a GraphML document: one node
// per distinct entity, one edge per triple labeled with its relation.
func ToGraphML(w io.Writer, triples []triple.Triple) error {
	nodeIndex := make(map[string]string)
	var nodes []graphmlNode
	nodeID := func(label string) string {
		if id, ok := nodeIndex[label]; ok {
			return id
		}
		id := fmt.Sprintf("n%d", len(nodeIndex))
		nodeIndex[label] = id
		nodes = append(nodes, graphmlNode{ID: id})
		return id
	}

	edges := make([]graphmlEdge, 0, len(triples))
	for _, t := range triples {
		src := nodeID(t.Head)
		dst := nodeID(t.Tail)
		edges = append(edges, graphmlEdge{
			Source: src,
			Target: dst,
			DataData: []graphmlData{
				{Key: "relation", Text: t.Relation},
				{Key: "inference", Text: string(t.Inference)},
			},
		})
	}

	doc := graphmlDocument{
		XMLNS: "http://graphml.graphdrawing.org/xmlns",
		Keys: []graphmlKey{
			{ID: "relation", For: "edge", AttrName: "relation", AttrType: "string"},
			{ID: "inference", For: "edge", AttrName: "inference", AttrType: "string"},
		},
		Graph: graphmlGraph{EdgeDefault: "directed", Nodes: nodes, Edges: edges},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("convert: write graphml header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("convert: encode graphml: %w", err)
	}
	return nil
}

// ToNTriples writes the final triple set in N-Triples line-based format,
// one line per triple: the head as a blank node (whitespace replaced by
// underscores), the relation inside <...> as the predicate, and the tail
// as a quoted string literal. This domain's entities and relations are
// free text, not URIs, so no base IRI is applied.
func ToNTriples(w io.Writer, triples []triple.Triple) error {
	for _, t := range triples {
		line := fmt.Sprintf("_:%s <%s> \"%s\" .\n",
			ntBlankNode(t.Head), ntEscape(t.Relation), ntEscape(t.Tail))
		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("convert: write n-triples line: %w", err)
		}
	}
	return nil
}

func ntBlankNode(s string) string {
	replacer := strings.NewReplacer(" ", "_", "\t", "_", "\n", "_")
	return replacer.Replace(strings.TrimSpace(s))
}

func ntEscape(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return replacer.Replace(s)
}
