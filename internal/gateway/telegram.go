package gateway

import (
	"context"
	"errors"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rahul/agentloop/internal/agent"
)

// maxMessageLen is Telegram's limit on a single text message.
const maxMessageLen = 4096

const troubleReply = "I'm having trouble thinking right now..."

// botAPI is the part of *tgbotapi.BotAPI the gateway uses.
type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	StopReceivingUpdates()
}

// TelegramGateway answers each incoming message with one agent run.
// Messages are handled one at a time.
type TelegramGateway struct {
	Bot    botAPI
	Runner agent.Runner
}

func NewTelegramGateway(token string, runner agent.Runner) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &TelegramGateway{
		Bot:    bot,
		Runner: runner,
	}, nil
}

func (tg *TelegramGateway) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := tg.handle(ctx, update); err != nil {
				log.Printf("Error replying: %v", err)
			}
		}
	}
}

func (tg *TelegramGateway) handle(ctx context.Context, update tgbotapi.Update) error {
	if update.Message == nil || strings.TrimSpace(update.Message.Text) == "" {
		return nil
	}

	from := "unknown"
	if update.Message.From != nil {
		from = update.Message.From.UserName
	}
	log.Printf("[%s] %s", from, update.Message.Text)

	outcome, err := tg.Runner.Run(ctx, update.Message.Text)
	reply := outcome.String()
	switch {
	case errors.Is(err, agent.ErrNoPlan):
		reply = "I couldn't come up with a plan for that. Could you rephrase the question?"
	case err != nil:
		log.Printf("Error thinking: %v", err)
		reply = troubleReply
	}

	return tg.sendText(update.Message.Chat.ID, reply)
}

func (tg *TelegramGateway) sendText(chatID int64, text string) error {
	for _, part := range splitMessage(text, maxMessageLen) {
		msg := tgbotapi.NewMessage(chatID, part)
		if _, err := tg.Bot.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}

// splitMessage breaks text into chunks of at most limit runes, preferring
// line boundaries.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var parts []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i > limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
