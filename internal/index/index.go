// Package index loads serialized site search indexes and answers weighted
// full-text queries against them.
//
// The serialized form is the elasticlunr document format that static site
// generators emit. Loading feeds the stored documents into an in-memory
// bleve index; ranking, tokenization and stemming are bleve's.
package index

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/search/query"

	"sitesearch/internal/domain"
)

var (
	// ErrNotStored is returned when the serialized index was built without a document store
	ErrNotStored = errors.New("serialized index does not store documents")
	// ErrNoDocuments is returned when the document store is empty
	ErrNoDocuments = errors.New("serialized index has no documents")
)

// BoolMode selects how query terms combine within a field
type BoolMode string

const (
	BoolOR  BoolMode = "OR"
	BoolAND BoolMode = "AND"
)

// FieldOptions configures a searched field
type FieldOptions struct {
	Boost float64
}

// SearchOptions mirrors the option bag the site's search script passes
type SearchOptions struct {
	Fields map[string]FieldOptions
	Bool   BoolMode
	Limit  int
}

// DefaultSearchOptions weights title matches twice as high as body matches
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Fields: map[string]FieldOptions{
			"title": {Boost: 2},
			"body":  {Boost: 1},
		},
		Bool:  BoolOR,
		Limit: domain.MaxResults,
	}
}

// Index is a loaded, read-only search index
type Index struct {
	bleve  bleve.Index
	fields []string
	docs   map[string]domain.Document
}

// Load builds a queryable index from its serialized form
func Load(s *Serialized) (*Index, error) {
	if s == nil {
		return nil, ErrNotAvailable
	}
	if !s.DocumentStore.Save {
		return nil, ErrNotStored
	}
	if len(s.DocumentStore.Docs) == 0 {
		return nil, ErrNoDocuments
	}

	fields := s.Fields
	if len(fields) == 0 {
		fields = []string{"title", "body"}
	}

	analyzer := standard.Name
	if isEnglish(s.Lang) {
		analyzer = en.AnalyzerName
	}

	docMapping := bleve.NewDocumentMapping()
	for _, field := range fields {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = analyzer
		fm.Store = false
		docMapping.AddFieldMappingsAt(field, fm)
	}
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = analyzer
	indexMapping.DefaultMapping = docMapping

	bi, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	docs := make(map[string]domain.Document, len(s.DocumentStore.Docs))
	batch := bi.NewBatch()
	for ref, stored := range s.DocumentStore.Docs {
		data := make(map[string]any, len(fields))
		for _, field := range fields {
			data[field] = stringValue(stored[field])
		}
		if err := batch.Index(ref, data); err != nil {
			bi.Close()
			return nil, fmt.Errorf("failed to index document %q: %w", ref, err)
		}
		docs[ref] = domain.Document{
			Ref:   ref,
			Title: stringValue(stored["title"]),
			Body:  stringValue(stored["body"]),
		}
	}
	if err := bi.Batch(batch); err != nil {
		bi.Close()
		return nil, fmt.Errorf("failed to index documents: %w", err)
	}

	return &Index{bleve: bi, fields: fields, docs: docs}, nil
}

// Search runs a weighted query across the configured fields and returns hits
// ordered by score, ties broken by ref
func (idx *Index) Search(q string, opts SearchOptions) ([]domain.ResultEntry, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	if len(opts.Fields) == 0 {
		opts.Fields = DefaultSearchOptions().Fields
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = len(idx.docs)
	}

	operator := query.MatchQueryOperatorOr
	if opts.Bool == BoolAND {
		operator = query.MatchQueryOperatorAnd
	}

	// Deterministic field order keeps scoring stable across runs
	names := make([]string, 0, len(opts.Fields))
	for name := range opts.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	clauses := make([]query.Query, 0, len(names))
	for _, name := range names {
		boost := opts.Fields[name].Boost
		if boost <= 0 {
			boost = 1
		}
		mq := bleve.NewMatchQuery(q)
		mq.SetField(name)
		mq.SetBoost(boost)
		mq.SetOperator(operator)
		clauses = append(clauses, mq)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(clauses...), limit, 0, false)
	req.SortBy([]string{"-_score", "_id"})

	res, err := idx.bleve.Search(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	results := make([]domain.ResultEntry, 0, len(res.Hits))
	for _, hit := range res.Hits {
		results = append(results, domain.ResultEntry{Ref: hit.ID, Score: hit.Score})
	}
	return results, nil
}

// Document returns the stored document for ref
func (idx *Index) Document(ref string) (domain.Document, bool) {
	doc, ok := idx.docs[ref]
	return doc, ok
}

// Len returns the number of indexed documents
func (idx *Index) Len() int {
	return len(idx.docs)
}

// Fields returns the indexed field names
func (idx *Index) Fields() []string {
	return append([]string(nil), idx.fields...)
}

// Close releases the underlying index
func (idx *Index) Close() error {
	return idx.bleve.Close()
}

func isEnglish(lang string) bool {
	switch strings.ToLower(lang) {
	case "", "en", "english":
		return true
	}
	return false
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
