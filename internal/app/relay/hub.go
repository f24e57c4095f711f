/*
Package relay implements the real-time broadcast hubs.

A Hub owns a roster of live connections and, for the document kind, the single
shared document. All reads and writes of that state happen on the goroutine
running Hub.Run; the exported methods only enqueue commands and wait for them
to be applied. Fan-out is a non-blocking enqueue on each recipient, so one
slow or dead peer never holds up the others.
*/
package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"relayhub/internal/app/user"
	"relayhub/internal/pkg/errs"
	"relayhub/internal/pkg/logx"
	"relayhub/internal/pkg/metrics"
)

// Kind selects the relay behaviour of a Hub.
type Kind string

const (
	// KindChat relays chat messages to everyone and join/leave notices to the others.
	KindChat Kind = "chat"

	// KindDocument keeps one shared document (last write wins) and publishes the roster.
	KindDocument Kind = "document"
)

const (
	commandBuffer = 256

	// logPreviewRunes caps how much document text goes into a log line.
	logPreviewRunes = 50
)

// ErrHubStopped is returned by operations issued after Stop.
var ErrHubStopped = errors.New("hub stopped")

// Connection is one live client session as the Hub sees it.
type Connection interface {
	// ID is the transport-assigned unique identifier.
	ID() string

	// Name is the display name declared at handshake, possibly empty.
	Name() string

	// Send enqueues a frame without blocking.
	Send(frame []byte) error

	// Close releases the session. It must be idempotent.
	Close() error
}

type member struct {
	conn        Connection
	participant user.Participant
}

// Snapshot is a point-in-time view of a Hub.
type Snapshot struct {
	Kind           Kind               `json:"kind"`
	Connections    int                `json:"connections"`
	DocumentLength int                `json:"documentLength"`
	Participants   []user.Participant `json:"participants"`
}

type command interface{ hubCommand() }

type cmdConnect struct {
	conn Connection
	done chan struct{}
}

type cmdDisconnect struct {
	conn Connection
	done chan struct{}
}

type cmdEvent struct {
	conn Connection
	env  Envelope
	done chan struct{}
}

type cmdSnapshot struct {
	reply chan Snapshot
}

func (cmdConnect) hubCommand()    {}
func (cmdDisconnect) hubCommand() {}
func (cmdEvent) hubCommand()      {}
func (cmdSnapshot) hubCommand()   {}

// Hub is a single-loop broadcast relay.
type Hub struct {
	kind Kind

	// roster maps connection id to its member. Owned by Run.
	roster map[string]*member

	// document is the shared text of a KindDocument hub. Owned by Run.
	document string

	commands chan command

	stopChan chan struct{}
	stopOnce sync.Once

	// done is closed once Run has returned and released every connection.
	done chan struct{}

	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewHub creates a Hub of the given kind. Call Run to start it.
func NewHub(kind Kind, m *metrics.Metrics) *Hub {
	return &Hub{
		kind:     kind,
		roster:   make(map[string]*member),
		commands: make(chan command, commandBuffer),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
		metrics:  m,
		logger:   logx.Component("hub").With().Str("hub", string(kind)).Logger(),
	}
}

// Kind returns the hub kind.
func (h *Hub) Kind() Kind {
	return h.kind
}

// Run processes commands until Stop is called.
func (h *Hub) Run() {
	defer close(h.done)
	defer h.releaseAll()

	h.logger.Info().Msg("Hub loop started.")

	for {
		select {
		case cmd := <-h.commands:
			h.handle(cmd)
		case <-h.stopChan:
			h.logger.Info().Msg("Hub loop stopping.")
			return
		}
	}
}

// Stop ends the Run loop. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stopChan) })
}

// Done is closed after the Run loop has exited.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Connect registers conn, sends it the initial state and publishes the roster.
func (h *Hub) Connect(conn Connection) error {
	done := make(chan struct{})
	return h.exec(cmdConnect{conn: conn, done: done}, done)
}

// Disconnect removes conn. Unknown or replaced connections are ignored.
func (h *Hub) Disconnect(conn Connection) error {
	done := make(chan struct{})
	return h.exec(cmdDisconnect{conn: conn, done: done}, done)
}

// Receive decodes a raw inbound frame from conn and applies it.
// Undecodable frames are answered with a private error event.
func (h *Hub) Receive(conn Connection, frame []byte) error {
	env, err := DecodeEnvelope(frame)
	if err != nil {
		h.logger.Warn().Err(err).Str("connection_id", conn.ID()).Msg("Client sent a malformed frame.")
		h.reject(conn, "malformed", errs.NewError(errs.ErrEventMalformed))
		return nil
	}

	return h.dispatch(conn, env)
}

// ReceiveChatMessage relays msg to every connection, the sender included.
func (h *Hub) ReceiveChatMessage(conn Connection, msg ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode chat message: %w", err)
	}

	return h.dispatch(conn, Envelope{Event: EventChatMessage, Data: data})
}

// AnnounceJoin tells every other connection that username joined.
func (h *Hub) AnnounceJoin(conn Connection, username string) error {
	data, err := json.Marshal(username)
	if err != nil {
		return fmt.Errorf("encode username: %w", err)
	}

	return h.dispatch(conn, Envelope{Event: EventUserJoined, Data: data})
}

// UpdateDocument replaces the shared document and relays it to everyone but conn.
func (h *Hub) UpdateDocument(conn Connection, content string) error {
	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	return h.dispatch(conn, Envelope{Event: EventDocumentUpdateToServer, Data: data})
}

// Snapshot returns the current roster and document size.
func (h *Hub) Snapshot() (Snapshot, error) {
	reply := make(chan Snapshot, 1)

	select {
	case h.commands <- cmdSnapshot{reply: reply}:
	case <-h.stopChan:
		return Snapshot{Kind: h.kind}, ErrHubStopped
	}

	select {
	case s := <-reply:
		return s, nil
	case <-h.done:
		return Snapshot{Kind: h.kind}, ErrHubStopped
	}
}

func (h *Hub) dispatch(conn Connection, env Envelope) error {
	done := make(chan struct{})
	return h.exec(cmdEvent{conn: conn, env: env, done: done}, done)
}

// exec enqueues cmd and waits until the loop has applied it.
func (h *Hub) exec(cmd command, done <-chan struct{}) error {
	select {
	case <-h.stopChan:
		return ErrHubStopped
	default:
	}

	select {
	case h.commands <- cmd:
	case <-h.stopChan:
		return ErrHubStopped
	}

	select {
	case <-done:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

func (h *Hub) handle(cmd command) {
	switch c := cmd.(type) {
	case cmdConnect:
		h.handleConnect(c.conn)
		close(c.done)
	case cmdDisconnect:
		h.handleDisconnect(c.conn)
		close(c.done)
	case cmdEvent:
		h.handleEvent(c.conn, c.env)
		close(c.done)
	case cmdSnapshot:
		c.reply <- h.snapshot()
	}
}

func (h *Hub) handleConnect(conn Connection) {
	id := conn.ID()
	participant := user.Participant{
		Username: user.DisplayName(conn.Name(), id),
		ID:       id,
	}

	if existing, ok := h.roster[id]; ok {
		if existing.conn == conn {
			h.logger.Warn().Str("connection_id", id).Msg("Connection registered twice, ignoring.")
			return
		}

		h.logger.Warn().Str("connection_id", id).Msg("Connection id reused. Closing the previous session.")
		_ = existing.conn.Close()
	} else {
		h.metrics.ConnectionOpened(string(h.kind))
	}

	h.roster[id] = &member{conn: conn, participant: participant}

	h.logger.Info().
		Str("connection_id", id).
		Str("username", participant.Username).
		Int("total_connections", len(h.roster)).
		Msg("Client connected.")

	if h.kind == KindDocument {
		h.sendTo(conn, EventInitialDocumentContent, h.document)
		h.broadcast(EventActiveUsers, h.participants(), "")
	}
}

func (h *Hub) handleDisconnect(conn Connection) {
	id := conn.ID()

	current, ok := h.roster[id]
	if !ok {
		h.logger.Debug().Str("connection_id", id).Msg("Disconnect for unknown connection ignored.")
		return
	}

	if current.conn != conn {
		h.logger.Info().Str("connection_id", id).Msg("Disconnect for stale connection ignored.")
		return
	}

	delete(h.roster, id)
	h.metrics.ConnectionClosed(string(h.kind))
	_ = conn.Close()

	h.logger.Info().
		Str("connection_id", id).
		Str("username", current.participant.Username).
		Int("total_connections", len(h.roster)).
		Msg("Client disconnected.")

	switch h.kind {
	case KindDocument:
		h.broadcast(EventActiveUsers, h.participants(), "")
	case KindChat:
		h.broadcast(EventSystemMessage, "A user has left the chat.", id)
	}
}

func (h *Hub) handleEvent(conn Connection, env Envelope) {
	current, ok := h.roster[conn.ID()]
	if !ok || current.conn != conn {
		h.logger.Warn().
			Str("connection_id", conn.ID()).
			Str("event", env.Event).
			Msg("Event from unregistered connection dropped.")
		h.metrics.EventRejected(string(h.kind), "unregistered")
		return
	}

	switch {
	case h.kind == KindChat && env.Event == EventChatMessage:
		h.relayChatMessage(conn, env.Data)
	case h.kind == KindChat && env.Event == EventUserJoined:
		h.announceJoin(conn, env.Data)
	case h.kind == KindDocument && env.Event == EventDocumentUpdateToServer:
		h.updateDocument(conn, env.Data)
	default:
		h.logger.Warn().
			Str("connection_id", conn.ID()).
			Str("event", env.Event).
			Msg("Client sent an unsupported event.")
		h.metrics.EventRejected(string(h.kind), "unsupported")
	}
}

func (h *Hub) relayChatMessage(conn Connection, data json.RawMessage) {
	msg, err := checkChatMessage(data)
	if err != nil {
		h.logger.Warn().Err(err).Str("connection_id", conn.ID()).Msg("Invalid chat_message payload.")
		h.reject(conn, "invalid_payload", errs.NewError(errs.ErrEventPayloadInvalid, EventChatMessage))
		return
	}

	h.logger.Debug().
		Str("connection_id", conn.ID()).
		Str("sender", msg.Sender).
		Int("text_bytes", len(msg.Text)).
		Msg("Relaying chat message.")

	h.broadcast(EventChatMessage, data, "")
}

func (h *Hub) announceJoin(conn Connection, data json.RawMessage) {
	username, err := decodeString(data)
	if err != nil {
		h.logger.Warn().Err(err).Str("connection_id", conn.ID()).Msg("Invalid user_joined payload.")
		h.reject(conn, "invalid_payload", errs.NewError(errs.ErrEventPayloadInvalid, EventUserJoined))
		return
	}

	h.logger.Info().Str("connection_id", conn.ID()).Str("username", username).Msg("User joined the chat.")

	h.broadcast(EventSystemMessage, username+" has joined the chat.", conn.ID())
}

func (h *Hub) updateDocument(conn Connection, data json.RawMessage) {
	content, err := decodeString(data)
	if err != nil {
		h.logger.Warn().Err(err).Str("connection_id", conn.ID()).Msg("Invalid document_update_to_server payload.")
		h.reject(conn, "invalid_payload", errs.NewError(errs.ErrEventPayloadInvalid, EventDocumentUpdateToServer))
		return
	}

	h.document = content

	h.logger.Debug().
		Str("connection_id", conn.ID()).
		Str("preview", preview(content)).
		Int("document_bytes", len(content)).
		Msg("Document updated.")

	h.broadcast(EventDocumentUpdateFromServer, content, conn.ID())
}

// broadcast enqueues event to every member except excludeID.
func (h *Hub) broadcast(event string, payload any, excludeID string) {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to encode broadcast frame.")
		return
	}

	delivered := 0
	for id, m := range h.roster {
		if id == excludeID {
			continue
		}
		if h.deliver(m.conn, event, frame) {
			delivered++
		}
	}

	h.metrics.EventRelayed(string(h.kind), event, delivered)
}

// sendTo enqueues event to conn only.
func (h *Hub) sendTo(conn Connection, event string, payload any) {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to encode frame.")
		return
	}

	if h.deliver(conn, event, frame) {
		h.metrics.EventRelayed(string(h.kind), event, 1)
	}
}

// deliver isolates one recipient: a failed send is logged, counted and the
// recipient is closed so its read pump disconnects it.
func (h *Hub) deliver(conn Connection, event string, frame []byte) bool {
	if err := conn.Send(frame); err != nil {
		h.logger.Warn().
			Err(err).
			Str("connection_id", conn.ID()).
			Str("event", event).
			Msg("Send to client failed. Closing connection.")
		h.metrics.SendFailed(string(h.kind))
		_ = conn.Close()
		return false
	}

	return true
}

// reject answers conn with a private error event.
func (h *Hub) reject(conn Connection, reason string, customErr *errs.CustomError) {
	h.metrics.EventRejected(string(h.kind), reason)

	frame, err := EncodeFrame(EventError, customErr)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode error frame.")
		return
	}

	if err := conn.Send(frame); err != nil {
		h.logger.Warn().Err(err).Str("connection_id", conn.ID()).Msg("Failed to queue error frame.")
	}
}

// participants returns the roster sorted by username, then id.
func (h *Hub) participants() []user.Participant {
	list := make([]user.Participant, 0, len(h.roster))
	for _, m := range h.roster {
		list = append(list, m.participant)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Username != list[j].Username {
			return list[i].Username < list[j].Username
		}
		return list[i].ID < list[j].ID
	})

	return list
}

func (h *Hub) snapshot() Snapshot {
	return Snapshot{
		Kind:           h.kind,
		Connections:    len(h.roster),
		DocumentLength: len(h.document),
		Participants:   h.participants(),
	}
}

// releaseAll closes every remaining connection when the loop exits.
func (h *Hub) releaseAll() {
	for id, m := range h.roster {
		_ = m.conn.Close()
		delete(h.roster, id)
		h.metrics.ConnectionClosed(string(h.kind))
	}

	h.logger.Info().Msg("Hub loop finished. All connections released.")
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= logPreviewRunes {
		return s
	}

	return string([]rune(s)[:logPreviewRunes]) + "..."
}
