package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// RelevanceSearcher answers keyword queries over indexed line content with
// full-text ranking and highlighting. It complements the deterministic text
// mode: text mode for exact location, relevance mode for exploration.
type RelevanceSearcher struct {
	index bleve.Index
}

// lineDoc is one indexed line.
type lineDoc struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// NewRelevanceSearcher builds an in-memory bleve index over every non-blank
// line of the session index.
func NewRelevanceSearcher(idx *Index) (*RelevanceSearcher, error) {
	index, err := bleve.NewMemOnly(buildLineMapping())
	if err != nil {
		return nil, fmt.Errorf("create relevance index: %w", err)
	}

	batch := index.NewBatch()
	const batchSize = 1000
	docs := 0

	for _, file := range idx.files {
		for i, line := range file.lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			doc := lineDoc{Path: file.path, Line: i + 1, Text: line}
			id := file.path + ":" + strconv.Itoa(doc.Line)
			if err := batch.Index(id, doc); err != nil {
				index.Close()
				return nil, fmt.Errorf("index line %s: %w", id, err)
			}
			docs++
			if docs%batchSize == 0 {
				if err := index.Batch(batch); err != nil {
					index.Close()
					return nil, fmt.Errorf("flush relevance batch: %w", err)
				}
				batch = index.NewBatch()
			}
		}
	}
	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			index.Close()
			return nil, fmt.Errorf("flush relevance batch: %w", err)
		}
	}

	return &RelevanceSearcher{index: index}, nil
}

// buildLineMapping indexes line text with the standard analyzer and stores
// path/line for retrieval. Term vectors stay on for phrase queries.
func buildLineMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	textMapping := bleve.NewTextFieldMapping()
	textMapping.Analyzer = "standard"
	textMapping.Store = true
	textMapping.Index = true
	textMapping.IncludeTermVectors = true

	pathMapping := bleve.NewTextFieldMapping()
	pathMapping.Analyzer = "keyword"
	pathMapping.Store = true
	pathMapping.Index = true

	lineMapping := bleve.NewNumericFieldMapping()
	lineMapping.Store = true
	lineMapping.Index = false

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("text", textMapping)
	docMapping.AddFieldMappingsAt("path", pathMapping)
	docMapping.AddFieldMappingsAt("line", lineMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Search runs a bleve keyword query (boolean operators, phrases, fuzziness)
// and returns matches ordered by relevance score.
func (r *RelevanceSearcher) Search(q string, maxResults int) ([]Match, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	request := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(q), maxResults, 0, false)
	request.Fields = []string{"path", "line", "text"}
	request.Highlight = bleve.NewHighlight()

	result, err := r.index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("relevance search: %w", err)
	}

	matches := make([]Match, 0, len(result.Hits))
	for _, hit := range result.Hits {
		m := Match{Score: hit.Score}
		if path, ok := hit.Fields["path"].(string); ok {
			m.Path = path
		}
		if line, ok := hit.Fields["line"].(float64); ok {
			m.Line = int(line)
			m.StartLine = m.Line
			m.EndLine = m.Line
		}
		if text, ok := hit.Fields["text"].(string); ok {
			m.Preview = text
		}
		if fragments, ok := hit.Fragments["text"]; ok && len(fragments) > 0 {
			m.Preview = fragments[0]
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Close releases the in-memory index.
func (r *RelevanceSearcher) Close() error {
	return r.index.Close()
}
