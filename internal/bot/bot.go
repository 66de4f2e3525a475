// Package bot содержит границу с Discord: обработку команд, разбор опций
// и реализацию операций отправки поверх discordgo.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"discord-chat-importer/internal/adapters/parser"
	"discord-chat-importer/internal/adapters/source"
	"discord-chat-importer/internal/media"
	"discord-chat-importer/internal/ports"
	"discord-chat-importer/internal/replay"
)

const (
	commandPrefix = "/"

	importCommand = "import"
	cancelCommand = "cancel"
	helpCommand   = "help"
)

// Bot представляет собой основной объект Discord-бота.
type Bot struct {
	session    *discordgo.Session
	messenger  ports.Messenger
	parser     ports.Parser
	registry   *replay.Registry
	controller *replay.Controller
	logger     *slog.Logger
}

// NewBot создает и инициализирует новый экземпляр бота.
func NewBot(token string, delay time.Duration, logger *slog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	messenger := NewDiscordMessenger(session)

	b := &Bot{
		session:    session,
		messenger:  messenger,
		parser:     parser.NewJsonParser(),
		registry:   replay.NewRegistry(),
		controller: replay.NewController(messenger, delay, logger),
		logger:     logger,
	}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)
	return b, nil
}

// Registry возвращает реестр активных запусков (для статусного HTTP-сервера).
func (b *Bot) Registry() *replay.Registry {
	return b.registry
}

// Start открывает сессию и блокируется до отмены контекста.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	<-ctx.Done()
	b.logger.Info("Context cancelled, stopping bot...")
	return b.session.Close()
}

func (b *Bot) onReady(_ *discordgo.Session, ready *discordgo.Ready) {
	b.logger.Info("Authorized on account", slog.String("username", ready.User.Username))
}

// onMessageCreate обрабатывает входящее сообщение и распознает команды.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}
	if !strings.HasPrefix(m.Content, commandPrefix) {
		return
	}

	command, args, _ := strings.Cut(strings.TrimPrefix(m.Content, commandPrefix), " ")
	ctx := context.Background()

	switch command {
	case importCommand:
		b.handleImport(ctx, m.ChannelID, args)
	case cancelCommand:
		b.handleCancel(ctx, m.ChannelID)
	case helpCommand:
		b.handleHelp(ctx, m.ChannelID)
	}
}

// handleImport выполняет полный цикл импорта: разбор аргументов, загрузку
// экспорта, построение индекса медиафайлов и воспроизведение.
func (b *Bot) handleImport(ctx context.Context, channelID, args string) {
	logger := b.logger.With(slog.String("channel_id", channelID))

	tokens := SplitArgs(args)
	if len(tokens) == 0 || strings.TrimSpace(tokens[0]) == "" {
		b.reply(ctx, channelID, "Command requires a path to a JSON file.")
		return
	}

	jsonPath := tokens[0]
	mediaPath := ""
	optionTokens := tokens[1:]
	if len(optionTokens) > 0 && !strings.HasPrefix(optionTokens[0], "--") {
		mediaPath = optionTokens[0]
		optionTokens = optionTokens[1:]
	}

	opts, err := ParseOptions(optionTokens)
	if err != nil {
		b.reply(ctx, channelID, fmt.Sprintf("Error parsing options: %v", err))
		return
	}

	data, err := source.ForPath(jsonPath).Fetch()
	if err != nil {
		logger.Warn("не удалось загрузить файл экспорта", "path", jsonPath, "error", err)
		b.reply(ctx, channelID, fmt.Sprintf("Error reading JSON: %v", err))
		return
	}

	export, err := b.parser.Parse(data)
	if err != nil {
		logger.Warn("не удалось разобрать файл экспорта", "path", jsonPath, "error", err)
		b.reply(ctx, channelID, fmt.Sprintf("Error parsing JSON: %v", err))
		return
	}

	run, err := b.registry.Begin(channelID)
	if err != nil {
		if errors.Is(err, replay.ErrAlreadyRunning) {
			b.reply(ctx, channelID, "An import is already running in this channel.")
			return
		}
		logger.Error("не удалось зарегистрировать запуск", "error", err)
		return
	}
	defer b.registry.Finish(channelID)

	idx, cleanup := media.Build(ctx, mediaPath, media.ExportNameStem(jsonPath), logger)
	defer cleanup()

	logger.Info("запуск воспроизведения", "run_id", run.ID, "messages", len(export.Messages))
	outcome := b.controller.Replay(ctx, channelID, export, idx, opts, run.Token)
	logger.Info("воспроизведение завершено", "run_id", run.ID,
		"processed", outcome.Processed, "cancelled", outcome.Cancelled)
}

// handleCancel запрашивает отмену активного воспроизведения в канале.
func (b *Bot) handleCancel(ctx context.Context, channelID string) {
	if b.registry.Cancel(channelID) {
		b.reply(ctx, channelID, "Cancelling import...")
		return
	}
	b.reply(ctx, channelID, "No ongoing import in this channel.")
}

// handleHelp отправляет справку и гасит авто-раскрытие ссылок в ней.
func (b *Bot) handleHelp(ctx context.Context, channelID string) {
	messageID, err := b.messenger.Say(ctx, channelID, helpText)
	if err != nil {
		b.logger.Warn("не удалось отправить справку", "error", err)
		return
	}
	if err := b.messenger.SuppressEmbeds(ctx, channelID, messageID); err != nil {
		b.logger.Warn("не удалось погасить embed'ы справки", "error", err)
	}
}

func (b *Bot) reply(ctx context.Context, channelID, content string) {
	if _, err := b.messenger.Say(ctx, channelID, content); err != nil {
		b.logger.Warn("не удалось отправить ответ", "channel_id", channelID, "error", err)
	}
}

const helpText = "# Chat Importer\n" +
	"`/import <json_path> [media_path] [options]`\n" +
	"Imports messages from JSON files generated by [DiscordChatExporter](https://github.com/Tyrrrz/DiscordChatExporter) " +
	"and replaces expired links with previously downloaded media files.\n" +
	"- `<json_path>`: Path or URL of the exported JSON file (required).\n" +
	"- `[media_path]`: Directory, ZIP archive or ZIP URL with downloaded media files (optional).\n" +
	"Options:\n" +
	"- `--no-guild`: Hide guild/server name from message footer.\n" +
	"- `--no-category`: Hide category name from message footer.\n" +
	"- `--no-channel`: Hide channel name from message footer.\n" +
	"- `--no-timestamp`: Hide message timestamps.\n" +
	"- `--no-mentions`: Skip converting @mentions to clickable Discord mentions.\n" +
	"- `--no-reactions`: Skip importing reactions entirely.\n" +
	"- `--no-embed`: Skip creating embeds (only works with `--outside`).\n" +
	"- `--button`: Display reactions as buttons instead of native Discord reactions.\n" +
	"- `--reaction-users`: Show detailed list of users who reacted to each message.\n" +
	"- `--outside`: Send metadata embed separately from attachments.\n" +
	"- `--disable-button`: Make reaction buttons unclickable (only works with `--button`).\n" +
	"- `--range <start,end>`: Import messages within specified range (zero-indexed).\n" +
	"- `--range-start <n>`: Set starting message index for import range.\n" +
	"- `--range-end <n>`: Set ending message index for import range.\n" +
	"- `--first <n>`: Import only the first N messages.\n" +
	"- `--last <n>`: Import only the last N messages.\n" +
	"`/cancel`\n" +
	"- Cancels the ongoing import in the current channel.\n" +
	"`/help`\n" +
	"- Shows this help message."
