package chessdto

import "encoding/json"

// Socket message types.
const (
	TypeMove        = "move"
	TypeForfeit     = "forfeit"
	TypeUndo        = "undo"
	TypeReset       = "reset"
	TypeAI          = "ai"
	TypeDelete      = "delete"
	TypeReqGameData = "req-game-data"

	TypeMoveResult  = "move-result"
	TypeGameData    = "game-data"
	TypeGameInfo    = "game-info"
	TypeGameStats   = "game-stats"
	TypeAlert       = "alert"
	TypeDeletedGame = "deleted-game"
)

// Envelope frames every socket message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MoveRequest carries [row, col] pairs. They stay raw so malformed shapes
// can be reported as input errors.
type MoveRequest struct {
	Src json.RawMessage `json:"src"`
	Dst json.RawMessage `json:"dst"`
}

// MoveResult answers every state-changing request. Code is 0 on success,
// 1 for input or permission errors and 2 for moves the rules forbid.
type MoveResult struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
}

// GamePayload is the broadcast snapshot of a position.
type GamePayload struct {
	Data   string `json:"d"`
	Moved  string `json:"m"`
	Taken  string `json:"t"`
	Winner string `json:"w"`
}

// GameData is a payload plus the side on the move.
type GameData struct {
	GamePayload
	Turn string `json:"go"`
}

type GameStats struct {
	Players    int `json:"ppl"`
	Max        int `json:"max"`
	Spectators int `json:"spec"`
}

// GameInfo tells a freshly attached client who it is.
type GameInfo struct {
	Name            string `json:"name"`
	Role            string `json:"role"`
	Host            bool   `json:"host"`
	Admin           bool   `json:"admin,omitempty"`
	Single          bool   `json:"single"`
	AI              bool   `json:"ai"`
	AllowSpectators bool   `json:"as"`
	Rows            int    `json:"rows"`
	Cols            int    `json:"cols"`
}

type Alert struct {
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
}

// CreateGameRequest is the body of POST /api/games.
type CreateGameRequest struct {
	Name            string `json:"name"`
	Password        string `json:"password"`
	Single          bool   `json:"single"`
	AI              bool   `json:"ai"`
	AllowSpectators *bool  `json:"as,omitempty"`
}

// JoinRequest is the body of POST /api/games/{name}/join.
type JoinRequest struct {
	User      string `json:"user"`
	Password  string `json:"password"`
	Spectator bool   `json:"spectator"`
}

type JoinResponse struct {
	Token     string `json:"token"`
	ExpiresMS int64  `json:"expires_ms"`
}

type GameSummary struct {
	Name  string    `json:"name"`
	Stats GameStats `json:"stats"`
	Over  bool      `json:"over"`
}
