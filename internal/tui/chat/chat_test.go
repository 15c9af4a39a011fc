package chat

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/JustZavala/onboard/internal/chat"
	"github.com/JustZavala/onboard/internal/tui/testfixtures"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(ctx context.Context, system string, history []chat.Message) (string, error) {
	f.calls++
	return f.reply, f.err
}

// runBatch executes cmd and every command it batches, returning the messages.
func runBatch(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runBatch(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findReply(t *testing.T, msgs []tea.Msg) ReplyMsg {
	t.Helper()
	for _, msg := range msgs {
		if r, ok := msg.(ReplyMsg); ok {
			return r
		}
	}
	t.Fatalf("no ReplyMsg in %v", msgs)
	return ReplyMsg{}
}

func TestChat_SendAndReceive(t *testing.T) {
	conv := chat.NewConversation("sys")
	fc := &fakeCompleter{reply: "¡Hola! ¿En qué te ayudo?"}
	m := New(conv, fc)
	m.Update(tea.WindowSizeMsg{Width: testfixtures.TestTermWidth, Height: testfixtures.TestTermHeight})

	m.input.SetValue("hola")
	_, cmd := m.Update(tea.KeyPressMsg{Text: "enter"})
	require.True(t, m.waiting)
	require.Empty(t, m.input.Value(), "input is cleared on submit")

	reply := findReply(t, runBatch(cmd))
	require.NoError(t, reply.Err)
	require.Equal(t, 1, fc.calls)

	m.Update(reply)
	require.False(t, m.waiting)
	require.Len(t, conv.History(), 2)

	out := testfixtures.Plain(m.viewport.View())
	require.Contains(t, out, "Tú")
	require.Contains(t, out, "hola")
	require.Contains(t, out, "Asistente")
	require.Contains(t, out, "¿En qué te ayudo?")
}

func TestChat_EmptyInputIgnored(t *testing.T) {
	fc := &fakeCompleter{}
	m := New(chat.NewConversation(""), fc)

	m.input.SetValue("   ")
	_, cmd := m.Update(tea.KeyPressMsg{Text: "enter"})
	require.Nil(t, cmd)
	require.False(t, m.waiting)
}

func TestChat_NoSecondSubmitWhileWaiting(t *testing.T) {
	fc := &fakeCompleter{reply: "ok"}
	m := New(chat.NewConversation(""), fc)

	m.input.SetValue("uno")
	_, first := m.Update(tea.KeyPressMsg{Text: "enter"})
	require.NotNil(t, first)

	m.input.SetValue("dos")
	_, second := m.Update(tea.KeyPressMsg{Text: "enter"})
	require.Nil(t, second)
	require.Equal(t, "dos", m.input.Value(), "text is kept for later")
}

func TestChat_ErrorShown(t *testing.T) {
	m := New(chat.NewConversation(""), &fakeCompleter{})

	m.waiting = true
	m.Update(ReplyMsg{Err: errors.New("status 401")})

	require.False(t, m.waiting)
	require.Equal(t, "status 401", m.err)
}

func TestChat_ResetClearsTranscript(t *testing.T) {
	conv := chat.NewConversation("sys")
	_, err := conv.Send(context.Background(), &fakeCompleter{reply: "r"}, "q")
	require.NoError(t, err)
	m := New(conv, &fakeCompleter{})

	m.Update(tea.KeyPressMsg{Text: "ctrl+l"})

	require.Empty(t, conv.History())
	require.Contains(t, testfixtures.Plain(m.viewport.View()), "Habla o escribe")
}

func TestChat_Quit(t *testing.T) {
	m := New(chat.NewConversation(""), &fakeCompleter{})
	_, cmd := m.Update(tea.KeyPressMsg{Text: "esc"})
	require.NotNil(t, cmd)
	require.Equal(t, tea.QuitMsg{}, cmd())
}

func TestRenderMarkdown(t *testing.T) {
	out := testfixtures.Plain(renderMarkdown("**negrita** y texto", 40))
	require.Contains(t, out, "negrita")
	require.NotContains(t, out, "**")
}
