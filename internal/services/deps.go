package services

import (
	"context"

	"github.com/netchat/netchat/internal/appwrite"
)

// DocumentStore is the subset of the remote document store the services use.
// *appwrite.Client satisfies it.
type DocumentStore interface {
	ListDocuments(ctx context.Context, collectionID string, queries ...appwrite.Query) (*appwrite.DocumentList, error)
	GetDocument(ctx context.Context, collectionID, documentID string, out any) error
	CreateDocument(ctx context.Context, collectionID, documentID string, data any, out any) error
}

// PasswordHasher hashes and verifies channel passwords.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(encoded, candidate string) (bool, error)
}

// IPSource resolves the public IP a network channel is keyed on.
type IPSource interface {
	PublicIP(ctx context.Context) (string, error)
}
