// Package appwritetest provides an in-memory document store that understands
// the same queries as the Appwrite client, for use in tests.
package appwritetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/netchat/netchat/internal/appwrite"
	"github.com/netchat/netchat/internal/models"
)

// Call records one request made against the store.
type Call struct {
	Method     string
	Collection string
	Queries    []appwrite.Query
}

// Store holds documents per collection in insertion order.
type Store struct {
	mu          sync.Mutex
	collections map[string][]map[string]any
	calls       []Call
	nextID      int
	clock       time.Time

	// Err, when set, is returned by every operation.
	Err error
}

// New creates an empty store.
func New() *Store {
	return &Store{
		collections: make(map[string][]map[string]any),
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Insert adds a document directly, bypassing call recording. Missing $id and
// $createdAt attributes are filled in.
func (s *Store) Insert(collection string, doc map[string]any) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(collection, doc)
}

func (s *Store) insertLocked(collection string, doc map[string]any) map[string]any {
	stored := make(map[string]any, len(doc)+2)
	for k, v := range doc {
		stored[k] = v
	}
	if _, ok := stored["$id"]; !ok {
		s.nextID++
		stored["$id"] = "doc" + strconv.Itoa(s.nextID)
	}
	if _, ok := stored["$createdAt"]; !ok {
		s.clock = s.clock.Add(time.Second)
		stored["$createdAt"] = appwrite.FormatTime(s.clock)
	}
	s.collections[collection] = append(s.collections[collection], stored)
	return stored
}

// Documents returns a copy of the documents of a collection.
func (s *Store) Documents(collection string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, len(s.collections[collection]))
	copy(out, s.collections[collection])
	return out
}

// Calls returns the recorded calls.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsTo returns the recorded calls against one collection.
func (s *Store) CallsTo(collection string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Collection == collection {
			out = append(out, c)
		}
	}
	return out
}

// ListDocuments applies equal, orderDesc, cursorAfter and limit, in that order.
func (s *Store) ListDocuments(_ context.Context, collection string, queries ...appwrite.Query) (*appwrite.DocumentList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: "list", Collection: collection, Queries: queries})
	if s.Err != nil {
		return nil, s.Err
	}

	docs := make([]map[string]any, 0, len(s.collections[collection]))
	for _, d := range s.collections[collection] {
		if matches(d, queries) {
			docs = append(docs, d)
		}
	}

	limit := -1
	for _, q := range queries {
		switch q.Method {
		case "orderDesc":
			attr := q.Attribute
			sort.SliceStable(docs, func(i, j int) bool {
				return fmt.Sprint(docs[i][attr]) > fmt.Sprint(docs[j][attr])
			})
		case "limit":
			limit = toInt(q.Values[0])
		}
	}
	for _, q := range queries {
		if q.Method == "cursorAfter" {
			cursor := fmt.Sprint(q.Values[0])
			idx := -1
			for i, d := range docs {
				if d["$id"] == cursor {
					idx = i
					break
				}
			}
			if idx < 0 {
				return nil, fmt.Errorf("cursor %s: %w", cursor, models.ErrNotFound)
			}
			docs = docs[idx+1:]
		}
	}

	total := len(docs)
	if limit >= 0 && len(docs) > limit {
		docs = docs[:limit]
	}

	list := &appwrite.DocumentList{Total: total}
	for _, d := range docs {
		raw, err := json.Marshal(d)
		if err != nil {
			return nil, err
		}
		list.Documents = append(list.Documents, raw)
	}
	return list, nil
}

// GetDocument decodes the document with the given id into out.
func (s *Store) GetDocument(_ context.Context, collection, id string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: "get", Collection: collection})
	if s.Err != nil {
		return s.Err
	}

	for _, d := range s.collections[collection] {
		if d["$id"] == id {
			raw, err := json.Marshal(d)
			if err != nil {
				return err
			}
			return json.Unmarshal(raw, out)
		}
	}
	return fmt.Errorf("document %s: %w", id, models.ErrNotFound)
}

// CreateDocument stores data, assigning an id when documentID is appwrite.UniqueID.
func (s *Store) CreateDocument(_ context.Context, collection, documentID string, data any, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: "create", Collection: collection})
	if s.Err != nil {
		return s.Err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if documentID != appwrite.UniqueID {
		doc["$id"] = documentID
	}
	stored := s.insertLocked(collection, doc)

	if out == nil {
		return nil
	}
	raw, err = json.Marshal(stored)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func matches(doc map[string]any, queries []appwrite.Query) bool {
	for _, q := range queries {
		if q.Method != "equal" {
			continue
		}
		got := fmt.Sprint(doc[q.Attribute])
		ok := false
		for _, v := range q.Values {
			if fmt.Sprint(v) == got {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		i, _ := strconv.Atoi(fmt.Sprint(v))
		return i
	}
}
