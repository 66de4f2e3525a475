package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"discord-chat-importer/internal/ports"
)

// DiscordMessenger реализует интерфейс Messenger поверх сессии discordgo.
type DiscordMessenger struct {
	session *discordgo.Session
}

// NewDiscordMessenger создает новый экземпляр DiscordMessenger.
func NewDiscordMessenger(session *discordgo.Session) ports.Messenger {
	return &DiscordMessenger{session: session}
}

// Send отправляет подготовленный пакет в канал.
func (m *DiscordMessenger) Send(ctx context.Context, channelID string, batch *discordgo.MessageSend) (string, error) {
	msg, err := m.session.ChannelMessageSendComplex(channelID, batch, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to send message batch: %w", err)
	}
	return msg.ID, nil
}

// Say отправляет обычное текстовое сообщение.
func (m *DiscordMessenger) Say(ctx context.Context, channelID, content string) (string, error) {
	msg, err := m.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	return msg.ID, nil
}

// React добавляет реакцию к сообщению.
func (m *DiscordMessenger) React(ctx context.Context, channelID, messageID, emojiAPIName string) error {
	if err := m.session.MessageReactionAdd(channelID, messageID, emojiAPIName, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to add reaction %s: %w", emojiAPIName, err)
	}
	return nil
}

// SuppressEmbeds убирает авто-раскрытие ссылок в отправленном сообщении.
func (m *DiscordMessenger) SuppressEmbeds(ctx context.Context, channelID, messageID string) error {
	edit := &discordgo.MessageEdit{
		Channel: channelID,
		ID:      messageID,
		Flags:   discordgo.MessageFlagsSuppressEmbeds,
	}
	if _, err := m.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to suppress embeds: %w", err)
	}
	return nil
}
