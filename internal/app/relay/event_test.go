package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name      string
		frame     string
		wantEvent string
		wantData  string
		wantErr   bool
	}{
		{name: "string data", frame: `{"event":"document_update_to_server","data":"abc"}`, wantEvent: EventDocumentUpdateToServer, wantData: `"abc"`},
		{name: "object data", frame: `{"event":"chat_message","data":{"sender":"a","text":"b"}}`, wantEvent: EventChatMessage, wantData: `{"sender":"a","text":"b"}`},
		{name: "no data", frame: `{"event":"user_joined"}`, wantEvent: EventUserJoined},
		{name: "empty event", frame: `{"event":"","data":1}`, wantErr: true},
		{name: "array", frame: `[1,2]`, wantErr: true},
		{name: "garbage", frame: `{{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := DecodeEnvelope([]byte(tt.frame))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantEvent, env.Event)
			if tt.wantData == "" {
				assert.Empty(t, env.Data)
			} else {
				assert.JSONEq(t, tt.wantData, string(env.Data))
			}
		})
	}
}

func TestEncodeFrame(t *testing.T) {
	frame, err := EncodeFrame(EventInitialDocumentContent, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"initial_document_content","data":""}`, string(frame))

	frame, err = EncodeFrame(EventChatMessage, json.RawMessage(`{"sender":"a","text":"b","extra":true}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"chat_message","data":{"sender":"a","text":"b","extra":true}}`, string(frame))

	_, err = EncodeFrame(EventChatMessage, make(chan int))
	assert.Error(t, err)
}

func TestDecodeString(t *testing.T) {
	s, err := decodeString(json.RawMessage(`"hello"`))
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	s, err = decodeString(json.RawMessage(`""`))
	require.NoError(t, err)
	assert.Empty(t, s)

	for _, bad := range []string{`null`, ``, `42`, `{}`, `["a"]`} {
		_, err := decodeString(json.RawMessage(bad))
		assert.Error(t, err, bad)
	}
}

func TestCheckChatMessage(t *testing.T) {
	msg, err := checkChatMessage(json.RawMessage(` {"sender":"a","text":"b"}`))
	require.NoError(t, err)
	assert.Equal(t, ChatMessage{Sender: "a", Text: "b"}, msg)

	msg, err = checkChatMessage(json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, ChatMessage{}, msg)

	for _, bad := range []string{`"text"`, `null`, `[]`, `{"sender":1}`, ``} {
		_, err := checkChatMessage(json.RawMessage(bad))
		assert.Error(t, err, bad)
	}
}
