package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/JakeFAU/showcrawl/internal/show"
)

// ContentType is the media type of an encoded snapshot.
const ContentType = "application/json"

// Encode renders snap as the indented JSON document consumers read. The output
// is deterministic for a given snapshot, so digests of it are stable.
func Encode(snap show.Snapshot) ([]byte, error) {
	if snap.Errors == nil {
		snap.Errors = []show.SourceError{}
	}
	if snap.Shows == nil {
		snap.Shows = []show.ShowRecord{}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}
