package gateway

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahul/agentloop/internal/agent"
)

type fakeBot struct {
	updates chan tgbotapi.Update
	sent    []tgbotapi.MessageConfig
	stopped bool
}

func (b *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return b.updates
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.sent = append(b.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) StopReceivingUpdates() {
	b.stopped = true
}

type fakeRunner struct {
	outcome   agent.Outcome
	err       error
	questions []string
}

func (r *fakeRunner) Run(_ context.Context, question string) (agent.Outcome, error) {
	r.questions = append(r.questions, question)
	return r.outcome, r.err
}

func message(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{UserName: "tester"},
	}}
}

func TestTelegramGateway_Start(t *testing.T) {
	bot := &fakeBot{updates: make(chan tgbotapi.Update, 3)}
	runner := &fakeRunner{outcome: agent.Outcome{Kind: agent.TurnsExhausted, Turns: 5}}
	tg := &TelegramGateway{Bot: bot, Runner: runner}

	bot.updates <- message(7, "What's the weather?")
	bot.updates <- tgbotapi.Update{}
	bot.updates <- message(8, "   ")
	close(bot.updates)

	require.NoError(t, tg.Start(context.Background()))
	assert.Equal(t, []string{"What's the weather?"}, runner.questions)
	require.Len(t, bot.sent, 1)
	assert.Equal(t, int64(7), bot.sent[0].ChatID)
	assert.Equal(t, "Agent stopped due to max turns (5) without finding a final answer.", bot.sent[0].Text)
}

func TestTelegramGateway_RunErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "no plan", err: agent.ErrNoPlan, expected: "I couldn't come up with a plan for that. Could you rephrase the question?"},
		{name: "service down", err: agent.ErrServiceUnavailable, expected: troubleReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot := &fakeBot{}
			tg := &TelegramGateway{Bot: bot, Runner: &fakeRunner{err: tt.err}}
			require.NoError(t, tg.handle(context.Background(), message(1, "q")))
			require.Len(t, bot.sent, 1)
			assert.Equal(t, tt.expected, bot.sent[0].Text)
		})
	}
}

func TestTelegramGateway_Stop(t *testing.T) {
	bot := &fakeBot{}
	tg := &TelegramGateway{Bot: bot}

	require.NoError(t, tg.Stop())
	assert.True(t, bot.stopped)
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	parts := splitMessage("aaaa\nbbbb\ncccc", 10)
	assert.Equal(t, []string{"aaaa\nbbbb\n", "cccc"}, parts)

	long := strings.Repeat("x", 25)
	parts = splitMessage(long, 10)
	assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)}, parts)
}
