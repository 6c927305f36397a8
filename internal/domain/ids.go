package domain

import "github.com/oklog/ulid/v2"

// NewID returns a new record id. ULIDs sort by creation time, so ids minted
// by different clients still order sensibly next to server-assigned ones.
func NewID() string { return ulid.Make().String() }
