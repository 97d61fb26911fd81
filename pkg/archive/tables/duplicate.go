package tables

// Duplicate is the payload of the duplicate table (§3, §4.8): keyed by
// tx hash (hashmap), empty payload — presence in the chain alone is the
// BIP30 "a coinbase with this hash already exists" signal.
type Duplicate struct{}

const DuplicateSize = 0

func (Duplicate) Encode([]byte) {}

func DecodeDuplicate([]byte) Duplicate { return Duplicate{} }
