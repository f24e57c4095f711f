package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Event names on the wire. Clients match them byte for byte.
const (
	EventUserJoined               = "user_joined"
	EventSystemMessage            = "system_message"
	EventChatMessage              = "chat_message"
	EventInitialDocumentContent   = "initial_document_content"
	EventDocumentUpdateToServer   = "document_update_to_server"
	EventDocumentUpdateFromServer = "document_update_from_server"
	EventActiveUsers              = "active_users"
	EventError                    = "error"
)

// Envelope is one WebSocket text frame: a named event and its JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ChatMessage is the payload of chat_message.
type ChatMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// outboundFrame keeps Data typed so empty strings still serialize as "".
type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

var (
	errMissingEvent = errors.New("envelope has no event name")
	errNullPayload  = errors.New("payload is null")
)

// DecodeEnvelope parses a raw frame.
func DecodeEnvelope(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}

	if env.Event == "" {
		return Envelope{}, errMissingEvent
	}

	return env, nil
}

// EncodeFrame builds the wire frame for event with data.
func EncodeFrame(event string, data any) ([]byte, error) {
	frame, err := json.Marshal(outboundFrame{Event: event, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", event, err)
	}

	return frame, nil
}

// decodeString extracts a JSON string payload. A null or absent payload is rejected.
func decodeString(data json.RawMessage) (string, error) {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", err
	}
	if s == nil {
		return "", errNullPayload
	}

	return *s, nil
}

// checkChatMessage accepts any JSON object whose sender/text, when present, are strings.
func checkChatMessage(data json.RawMessage) (ChatMessage, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return ChatMessage{}, errors.New("chat message must be a JSON object")
	}

	var msg ChatMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ChatMessage{}, err
	}

	return msg, nil
}
