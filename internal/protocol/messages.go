package protocol

// HELLO (client -> session layer)
type HelloMsg struct {
	Type              string       `json:"type"`
	ProtocolVersion   string       `json:"protocol_version"`
	SupportedVersions []string     `json:"supported_versions,omitempty"`
	PlayerName        string       `json:"player_name"`
	LobbyID           string       `json:"lobby_id"`
	Capabilities      Capabilities `json:"capabilities,omitempty"`
	Auth              *HelloAuth   `json:"auth,omitempty"`
}

type Capabilities struct {
	AckRequired bool `json:"ack_required,omitempty"`
	TradeFetch  bool `json:"trade_fetch,omitempty"`
	MaxQueue    int  `json:"max_queue,omitempty"`
}

type HelloAuth struct {
	Token string `json:"token,omitempty"`
}

// WELCOME (session layer -> client)
type WelcomeMsg struct {
	Type               string             `json:"type"`
	ProtocolVersion    string             `json:"protocol_version"`
	SelectedVersion    string             `json:"selected_version,omitempty"`
	ServerCapabilities ServerCapabilities `json:"server_capabilities,omitempty"`
	SessionID          string             `json:"session_id,omitempty"`
	PlayerName         string             `json:"player_name"`
	LobbyID            string             `json:"lobby_id"`
	ResumeToken        string             `json:"resume_token,omitempty"`
	TurnOrder          []string           `json:"turn_order,omitempty"`
	StateEveryMs       int                `json:"state_every_ms,omitempty"`
}

type ServerCapabilities struct {
	Ack         bool `json:"ack,omitempty"`
	Idempotency bool `json:"idempotency,omitempty"`
	TradeFetch  bool `json:"trade_fetch,omitempty"`
}

// ACK (session layer -> client): optional acknowledgement of one ACT.
type AckMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	AckFor          string   `json:"ack_for"`
	OK              bool     `json:"ok"`
	Code            string   `json:"code,omitempty"`
	Message         string   `json:"message,omitempty"`
	Reasons         []string `json:"reasons,omitempty"`
	ServerTurn      int      `json:"server_turn,omitempty"`
}

// TRADE (session layer -> client): out-of-band hydration of a single offer
// referenced by a historical log id. Best effort; absence is not an error.
type TradeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Found           bool        `json:"found"`
	Offer           *TradeState `json:"offer,omitempty"`
}
