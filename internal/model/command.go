package model

// Envelope is one externally supplied command record. Batches arrive as
// JSON-Lines, one envelope per line, and are applied in order.
type Envelope struct {
	ID       string  `json:"id"`
	Actor    string  `json:"actor"`
	IssuedAt string  `json:"issued_at"`
	Command  Command `json:"command"`
}

type Command struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Result reports the outcome of applying one envelope. Error strings carry a
// taxonomy tag prefix: NOT_FOUND, UNSUPPORTED, READ_FAIL, VALIDATION.
type Result struct {
	For     string   `json:"for"`
	OK      bool     `json:"ok"`
	Error   string   `json:"error,omitempty"`
	Effects []string `json:"effects,omitempty"`
}
