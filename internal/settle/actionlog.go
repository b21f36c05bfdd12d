package settle

import (
	"fmt"
	"strings"

	"poker-platform/internal/game"
)

// leafSerialise is the canonical `|`-joined string form of one hand's
// action records, per record: playerId:action:amount:phase:timestamp.
func leafSerialise(records []game.MultiActionRecord) string {
	parts := make([]string, len(records))
	for i, r := range records {
		parts[i] = fmt.Sprintf("%s:%s:%d:%s:%d", r.PlayerID, r.Action.String(), r.Amount, r.Phase.String(), r.TimestampMs)
	}
	return strings.Join(parts, "|")
}

// LeafHash hashes one hand's action records into a single 32-byte
// keccak-256 leaf for the settlement Merkle tree.
func LeafHash(records []game.MultiActionRecord) Hash {
	return keccak256([]byte(leafSerialise(records)))
}
