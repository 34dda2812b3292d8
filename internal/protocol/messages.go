package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	SessionID       string   `json:"session_id"`
	Seed            int64    `json:"seed"`
	StructureSet    string   `json:"structure_set"`
	Pool            []string `json:"pool"`
	ConfigDigest    string   `json:"config_digest,omitempty"`
}

// LOCATE (client -> server). Seed defaults to the server's seed and
// MaxRadius to the configured radius when zero. A seed override also
// regenerates the biome map.
type LocateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RequestID       string `json:"request_id,omitempty"`
	Target          string `json:"target"`
	Start           [3]int `json:"start"`
	Seed            *int64 `json:"seed,omitempty"`
	MaxRadius       int    `json:"max_radius,omitempty"`
}

type LocateResultMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	RequestID       string   `json:"request_id"`
	Found           bool     `json:"found"`
	Target          string   `json:"target"`
	Chunk           [2]int   `json:"chunk"`
	Pos             [3]int   `json:"pos"`
	Biome           string   `json:"biome,omitempty"`
	Distance        int      `json:"distance"`
	ChunksSearched  int      `json:"chunks_searched"`
	Radius          int      `json:"radius"`
	Message         string   `json:"message"`
	Suggestions     []string `json:"suggestions,omitempty"`
}

// DECIDE (client -> server). An empty Biome means "sample the world"
// generated from Seed.
type DecideMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RequestID       string `json:"request_id,omitempty"`
	Chunk           [2]int `json:"chunk"`
	Seed            *int64 `json:"seed,omitempty"`
	Biome           string `json:"biome,omitempty"`
}

type DecideResultMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	RequestID       string  `json:"request_id"`
	Chunk           [2]int  `json:"chunk"`
	Biome           string  `json:"biome"`
	PlacementChunk  bool    `json:"placement_chunk"`
	Frequency       float64 `json:"frequency"`
	Roll            float64 `json:"roll"`
	Gated           bool    `json:"gated"`
	StructureID     string  `json:"structure_id,omitempty"`
}

// RESOLVE (client -> server)
type ResolveMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RequestID       string `json:"request_id,omitempty"`
}

type ResolveResultMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	RequestID       string            `json:"request_id"`
	StructureSet    string            `json:"structure_set"`
	Strategy        string            `json:"strategy"`
	Spacing         int               `json:"spacing"`
	Separation      int               `json:"separation"`
	Salt            int32             `json:"salt"`
	SpreadType      string            `json:"spread_type"`
	LocateOffset    [3]int            `json:"locate_offset"`
	Exclusion       *ExclusionRef     `json:"exclusion_zone,omitempty"`
	Sources         map[string]string `json:"sources"`
	Warnings        []string          `json:"warnings,omitempty"`
}

type ExclusionRef struct {
	OtherSet string `json:"other_set"`
	Chunks   int    `json:"chunks"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RequestID       string `json:"request_id,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}

func NewError(requestID, code, message string) ErrorMsg {
	return ErrorMsg{
		Type:            TypeError,
		ProtocolVersion: Version,
		RequestID:       requestID,
		Code:            code,
		Message:         message,
	}
}
