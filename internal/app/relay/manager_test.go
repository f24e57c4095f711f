package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager(t *testing.T) {
	mgr := NewManager(nil)

	chat := mgr.Hub(KindChat)
	doc := mgr.Hub(KindDocument)
	require.NotNil(t, chat)
	require.NotNil(t, doc)
	assert.Nil(t, mgr.Hub(Kind("video")))

	require.NoError(t, doc.Connect(newMockConn("d1", "dora")))
	require.NoError(t, doc.UpdateDocument(newMockConn("nobody", ""), "ignored"))
	require.NoError(t, chat.Connect(newMockConn("c1", "")))
	require.NoError(t, chat.Connect(newMockConn("c2", "")))

	stats := mgr.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, KindChat, stats[0].Kind)
	assert.Equal(t, 2, stats[0].Connections)
	assert.Equal(t, KindDocument, stats[1].Kind)
	assert.Equal(t, 1, stats[1].Connections)
	assert.Equal(t, 0, stats[1].DocumentLength)

	mgr.Shutdown()
	assert.NotPanics(t, mgr.Shutdown)

	select {
	case <-chat.Done():
	default:
		t.Fatal("chat hub still running after Shutdown")
	}
	assert.Empty(t, mgr.Stats())
}
