package audit

// Entry is one line in the hash-chained JSONL decision log.
// All fields are scalars or structs (no map[string]any) to guarantee
// deterministic json.Marshal field order for reproducible hashing.
type Entry struct {
	Timestamp   string `json:"ts"`
	Direction   string `json:"direction"` // outgoing | incoming
	Destination string `json:"destination,omitempty"`
	Action      string `json:"action"`
	Reason      string `json:"reason,omitempty"`
	PIIFound    int    `json:"pii_found,omitempty"`
	Secrets     int    `json:"secrets_found,omitempty"`
	PrevHash    string `json:"prev_hash"`
}
