// Package datasource is the client side of the remote document store that
// holds the dashboard's collections.
//
// A Source answers two kinds of request: an equality-filtered scan of a
// collection (Query) and a point read by document id (Lookup). HTTPSource
// talks to the store's REST endpoint; MemorySource keeps documents in process
// and counts calls, which is what the cache tests assert against.
//
// Errors are classified with the sentinels ErrNotFound, ErrPermissionDenied,
// ErrUnavailable, ErrInvalidRequest and ErrMalformedResponse, always wrapped
// in a *QueryError naming the collection.
package datasource
