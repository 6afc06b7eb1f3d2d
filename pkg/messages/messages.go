package messages

import "encoding/json"

// Message types
const (
	MessageTypeClientJoin         = "join"
	MessageTypeClientAnswer       = "answer"
	MessageTypeClientFinish       = "finish"
	MessageTypeServerStart        = "start"
	MessageTypeServerAnswerResult = "answer_result"
	MessageTypeServerGameOver     = "game_over"
	MessageTypeServerError        = "error"
)

// Message represents a generic message for serialization/deserialization
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ClientJoin is the first message sent on a new connection.
type ClientJoin struct {
	PlayerID string `json:"playerID"`
}

// ClientAnswer submits one answer for one question of a game.
type ClientAnswer struct {
	GameID         string `json:"gameID"`
	QuestionID     string `json:"questionID"`
	SelectedOption string `json:"selectedOption"`
}

// ClientFinish requests that a game be finished.
type ClientFinish struct {
	GameID string `json:"gameID"`
}

// ServerStart notifies a paired player that its match is starting.
type ServerStart struct {
	GameID      string   `json:"gameID"`
	QuestionIDs []string `json:"questionIDs"`
}

// ServerAnswerResult reports the outcome of one submitted answer
// to the submitting player only.
type ServerAnswerResult struct {
	Correct bool `json:"correct"`
	Score   int  `json:"score"`
}

// ServerGameOver carries a player's own final score.
type ServerGameOver struct {
	Score int `json:"score"`
}

// ServerError reports a rejected client message.
type ServerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewMessage builds a Message with a JSON-encoded payload.
func NewMessage(messageType string, payload interface{}) (*Message, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:    messageType,
		Payload: b,
	}, nil
}
