// Package search indexes fetched trigger and action definitions in memory
// so operators can find them with query string syntax. The index is
// rebuilt from every list refresh and never persisted.
package search

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"

	"github.com/hawkular/hawkular-alerts-console/pkg/types"
)

const (
	KindTrigger = "trigger"
	KindAction  = "action"

	DefaultLimit = 20
)

// Document is the indexed form of a definition.
type Document struct {
	Kind        string   `json:"kind"`
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Plugin      string   `json:"plugin,omitempty"`
	Severity    string   `json:"severity,omitempty"`
	Enabled     bool     `json:"enabled"`
	Tags        []string `json:"tags,omitempty"`
	Properties  []string `json:"properties,omitempty"`
}

// Hit is a search result.
type Hit struct {
	Kind   string  `json:"kind"`
	ID     string  `json:"id"`
	Plugin string  `json:"plugin,omitempty"`
	Score  float64 `json:"score"`
}

// Index is a replaceable in-memory bleve index.
type Index struct {
	logger *zap.Logger

	mu  sync.RWMutex
	idx bleve.Index
}

// New creates an empty index.
func New(log *zap.Logger) (*Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	return &Index{logger: log, idx: idx}, nil
}

// Rebuild replaces the index content with triggers and actions.
func (i *Index) Rebuild(triggers []types.FullTrigger, actions []types.ActionDefinition) error {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	b := idx.NewBatch()
	for _, ft := range triggers {
		if ft.Trigger == nil {
			continue
		}
		doc := triggerDocument(ft.Trigger)
		if err := b.Index(docID(KindTrigger, "", doc.ID), doc); err != nil {
			_ = idx.Close()
			return fmt.Errorf("failed to index trigger %s: %w", doc.ID, err)
		}
	}
	for _, def := range actions {
		doc := actionDocument(def)
		if err := b.Index(docID(KindAction, def.ActionPlugin, def.ActionID), doc); err != nil {
			_ = idx.Close()
			return fmt.Errorf("failed to index action %s/%s: %w", def.ActionPlugin, def.ActionID, err)
		}
	}
	if err := idx.Batch(b); err != nil {
		_ = idx.Close()
		return fmt.Errorf("failed to index definitions: %w", err)
	}

	i.mu.Lock()
	old := i.idx
	i.idx = idx
	i.mu.Unlock()
	if err := old.Close(); err != nil {
		i.logger.Warn("Failed to close previous index", zap.Error(err))
	}

	i.logger.Debug("Search index rebuilt", zap.Int("triggers", len(triggers)), zap.Int("actions", len(actions)))
	return nil
}

// Search runs a query string query ("cpu", "+kind:action plugin:email",
// "tags:env*") and returns at most limit hits, best first.
func (i *Index) Search(query string, limit int) ([]Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(query), limit, 0, false)

	i.mu.RLock()
	res, err := i.idx.Search(req)
	i.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		kind, plugin, id := parseDocID(h.ID)
		hits = append(hits, Hit{Kind: kind, ID: id, Plugin: plugin, Score: h.Score})
	}
	return hits, nil
}

// Close releases the index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.idx.Close()
}

func triggerDocument(t *types.Trigger) Document {
	return Document{
		Kind:        KindTrigger,
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Severity:    string(t.Severity),
		Enabled:     t.Enabled,
		Tags:        pairs(t.Tags),
	}
}

func actionDocument(def types.ActionDefinition) Document {
	return Document{
		Kind:       KindAction,
		ID:         def.ActionID,
		Plugin:     def.ActionPlugin,
		Properties: pairs(def.Properties),
	}
}

// pairs flattens a map into sorted "key:value" terms.
func pairs(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+":"+v)
	}
	sort.Strings(out)
	return out
}

func docID(kind, plugin, id string) string {
	if plugin == "" {
		return kind + "/" + id
	}
	return kind + "/" + plugin + "/" + id
}

func parseDocID(s string) (kind, plugin, id string) {
	kind, rest, _ := strings.Cut(s, "/")
	if kind == KindAction {
		plugin, id, _ = strings.Cut(rest, "/")
		return kind, plugin, id
	}
	return kind, "", rest
}
