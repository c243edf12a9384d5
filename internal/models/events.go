package models

// Event types pushed over the websocket.
const (
	EventOnlineUsersChanged = "onlineUsersChanged"
	EventNewChatMessage     = "newChatMessage"
	EventNewNotification    = "newNotification"
	EventTyping             = "typing"
	EventPong               = "pong"
)

// Event is the envelope of every frame sent to a client.
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// UserEvent is relayed between instances over redis. Frame is the already
// encoded Event so receivers can push it as-is.
type UserEvent struct {
	UserID string `json:"userId"`
	Origin string `json:"origin"`
	Frame  []byte `json:"frame"`
}

// ClientMessage is an inbound frame from a connected client.
type ClientMessage struct {
	Type string            `json:"type"`
	Data ClientMessageData `json:"data"`
}

type ClientMessageData struct {
	To string `json:"to"`
}

type TypingData struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName,omitempty"`
	Typing   bool   `json:"typing"`
}
