package appwrite

import "encoding/json"

// Query is a single filter, ordering, or pagination predicate understood by the
// document listing endpoint. It serializes to the JSON query syntax.
type Query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

// Equal matches documents whose attribute equals one of values.
func Equal(attribute string, values ...any) Query {
	return Query{Method: "equal", Attribute: attribute, Values: values}
}

// Limit caps the number of returned documents.
func Limit(n int) Query {
	return Query{Method: "limit", Values: []any{n}}
}

// OrderDesc sorts by attribute, newest or largest first.
func OrderDesc(attribute string) Query {
	return Query{Method: "orderDesc", Attribute: attribute}
}

// CursorAfter starts the page after the document with the given id.
func CursorAfter(documentID string) Query {
	return Query{Method: "cursorAfter", Values: []any{documentID}}
}

// String returns the wire form of the query.
func (q Query) String() string {
	b, _ := json.Marshal(q)
	return string(b)
}
