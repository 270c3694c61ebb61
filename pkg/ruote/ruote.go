// Package ruote is a client for the RStor ruote REST API.
//
// The API is a tree of resources. Navigation starts at Client.Root and walks
// the tree by plain child names ("users", "sso") or by keyed lookup
// ("id" -> "343"); the resulting Resource executes one of the five verb
// operations, each mapped onto an HTTP method against the resource's URL.
// Unknown names fail locally, before any request is issued.
package ruote

import (
	"context"
	"errors"
)

// ErrUnknownResource marks a child lookup for a name the API does not serve.
var ErrUnknownResource = errors.New("unknown resource")

// ErrNoKeyedLookup marks a keyed lookup of a kind the resource does not
// support.
var ErrNoKeyedLookup = errors.New("no keyed lookup")

// Resource is one node of the API tree. Implementations are immutable;
// navigation returns new resources and never performs I/O.
type Resource interface {
	// Child returns the named child resource.
	Child(name string) (Resource, error)

	// ChildByKey returns the child identified by a key of the given kind,
	// such as ("id", "343").
	ChildByKey(kind, key string) (Resource, error)

	// Create posts the payload to the resource collection.
	Create(ctx context.Context, payload map[string]any) (*Response, error)

	// Retrieve fetches the resource.
	Retrieve(ctx context.Context) (*Response, error)

	// Update applies a partial modification from the payload.
	Update(ctx context.Context, payload map[string]any) (*Response, error)

	// Replace swaps the resource for the payload wholesale.
	Replace(ctx context.Context, payload map[string]any) (*Response, error)

	// Delete removes the resource.
	Delete(ctx context.Context) (*Response, error)
}
