package ports

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"discord-chat-importer/internal/domain"
)

// DataSource определяет интерфейс для получения исходного файла экспорта.
type DataSource interface {
	// Fetch загружает данные из источника и возвращает их в виде байтового среза.
	Fetch() ([]byte, error)
}

// Parser определяет интерфейс для парсинга файла экспорта.
type Parser interface {
	// Parse преобразует сырые данные в структурированную модель экспорта.
	Parse(data []byte) (*domain.Export, error)
}

// Messenger определяет низкоуровневые операции отправки, которые ядро
// воспроизведения потребляет, но не реализует. Реализация живет на границе
// с Discord-сессией.
type Messenger interface {
	// Send отправляет подготовленный пакет в канал и возвращает ID сообщения.
	Send(ctx context.Context, channelID string, batch *discordgo.MessageSend) (string, error)
	// Say отправляет обычное текстовое сообщение и возвращает его ID.
	Say(ctx context.Context, channelID, content string) (string, error)
	// React добавляет реакцию к сообщению. emojiAPIName — "name:id" для
	// кастомных эмодзи, сам глиф для юникодных.
	React(ctx context.Context, channelID, messageID, emojiAPIName string) error
	// SuppressEmbeds убирает авто-раскрытие ссылок в уже отправленном сообщении.
	SuppressEmbeds(ctx context.Context, channelID, messageID string) error
}
