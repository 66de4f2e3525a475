// Package replay управляет последовательным воспроизведением выбранных
// сообщений экспорта в живой канал.
package replay

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"discord-chat-importer/internal/compose"
	"discord-chat-importer/internal/domain"
	"discord-chat-importer/internal/media"
	"discord-chat-importer/internal/ports"
	"discord-chat-importer/internal/transform"
)

// Canceller — read-only представление признака отмены, которое наблюдает
// контроллер. Сам токен создается диспетчером на каждый запуск.
type Canceller interface {
	Cancelled() bool
}

// Token — признак отмены одного запуска воспроизведения.
type Token struct {
	flag atomic.Bool
}

// NewToken создает новый токен отмены.
func NewToken() *Token {
	return &Token{}
}

// Cancel взводит признак отмены. Может вызываться из любой горутины.
func (t *Token) Cancel() {
	t.flag.Store(true)
}

// Cancelled сообщает, была ли запрошена отмена.
func (t *Token) Cancelled() bool {
	return t.flag.Load()
}

// Outcome — итог одного запуска воспроизведения.
type Outcome struct {
	Cancelled bool
	Processed int
}

// Controller последовательно прогоняет сообщения через конвейер
// восстановления и отправляет результат через Messenger.
type Controller struct {
	messenger ports.Messenger
	delay     time.Duration
	log       *slog.Logger
}

// NewController создает новый экземпляр Controller. delay ≤ 0 заменяется
// паузой по умолчанию.
func NewController(messenger ports.Messenger, delay time.Duration, log *slog.Logger) *Controller {
	if delay <= 0 {
		delay = domain.MessageDelay
	}
	return &Controller{messenger: messenger, delay: delay, log: log}
}

// SelectMessages выбирает воспроизводимый поддиапазон. Приоритет селекторов:
// явный [start,end] > первые N > последние N > весь список; невалидный
// селектор проваливается к следующему по приоритету.
func SelectMessages(messages []domain.Message, opts domain.ImportOptions) []domain.Message {
	n := len(messages)

	if opts.RangeStart != nil && opts.RangeEnd != nil {
		start, end := *opts.RangeStart, *opts.RangeEnd
		if start <= end && start < n {
			if end > n-1 {
				end = n - 1
			}
			return messages[start : end+1]
		}
	}
	if opts.First != nil && *opts.First > 0 {
		return messages[:min(*opts.First, n)]
	}
	if opts.Last != nil && *opts.Last > 0 {
		return messages[n-min(*opts.Last, n):]
	}
	return messages
}

// Replay воспроизводит выбранные сообщения экспорта в канал. Признак отмены
// опрашивается перед каждым сообщением: начатое сообщение досылается целиком,
// следующее уже не начинается.
func (c *Controller) Replay(ctx context.Context, channelID string, export *domain.Export, idx *media.Index, opts domain.ImportOptions, cancel Canceller) Outcome {
	selected := SelectMessages(export.Messages, opts)
	if len(selected) == 0 {
		c.say(ctx, channelID, "No messages to import.")
		return Outcome{}
	}

	c.say(ctx, channelID, fmt.Sprintf("Importing %d messages...", len(selected)))

	composer := compose.New(export, opts, c.log)
	seen := media.NewSeenPaths()

	outcome := Outcome{}
	for i := range selected {
		if cancel != nil && cancel.Cancelled() {
			outcome.Cancelled = true
			break
		}
		c.processMessage(ctx, channelID, &selected[i], composer, idx, seen, opts)
		outcome.Processed++
	}

	c.say(ctx, channelID, c.summary(export, opts, outcome))
	return outcome
}

// processMessage восстанавливает одно сообщение: разрешает аватар и медиа,
// преобразует текст, собирает пакеты и отправляет их по порядку.
func (c *Controller) processMessage(ctx context.Context, channelID string, msg *domain.Message, composer *compose.Composer, idx *media.Index, seen media.SeenPaths, opts domain.ImportOptions) {
	var avatar *media.LocalFile
	if !opts.NoEmbed {
		if found, ok := idx.ResolveAvatar(msg.Author.ID); ok {
			avatar = &found
		}
	}

	filter := func(att domain.Attachment) bool { return domain.IsImageFile(att.FileName) }
	if opts.Outside {
		filter = func(domain.Attachment) bool { return true }
	}
	sources := media.CollectSources(msg, idx, seen, filter)

	content := transform.ApplyMentions(msg.Content, msg.Mentions, opts.NoMentions)
	content = transform.ApplyInlineEmojis(content, msg.InlineEmojis)

	var lastSentID string
	for _, batch := range composer.Compose(msg, content, avatar, sources) {
		id, err := c.messenger.Send(ctx, channelID, batch)
		c.pause()
		if err != nil {
			// Неудавшаяся отправка роняет только этот пакет.
			c.log.Warn("не удалось отправить пакет", "channel_id", channelID, "error", err)
			continue
		}
		lastSentID = id
	}

	if opts.ReactionUsers && len(msg.Reactions) > 0 {
		if listing := transform.UserListing(msg.Reactions); listing != "" {
			c.say(ctx, channelID, "Reactions:\n"+listing)
		}
	}

	if lastSentID != "" && !opts.Buttons && !opts.NoReactions && len(msg.Reactions) > 0 {
		for _, apiName := range transform.ReactionAPINames(msg.Reactions) {
			if err := c.messenger.React(ctx, channelID, lastSentID, apiName); err != nil {
				c.log.Warn("не удалось добавить реакцию", "emoji", apiName, "error", err)
			}
			c.pause()
		}
	}
}

// summary строит итоговое сообщение: при отмене — фиксированный текст, иначе
// сводка с теми же флагами видимости, что и футеры сообщений.
func (c *Controller) summary(export *domain.Export, opts domain.ImportOptions, outcome Outcome) string {
	if outcome.Cancelled {
		return "Import cancelled"
	}
	if footer := compose.Footer(export, opts); footer != "" {
		return "Successfully imported " + footer
	}
	return "Successfully imported"
}

func (c *Controller) say(ctx context.Context, channelID, content string) {
	if _, err := c.messenger.Say(ctx, channelID, content); err != nil {
		c.log.Warn("не удалось отправить служебное сообщение", "channel_id", channelID, "error", err)
	}
	c.pause()
}

// pause выдерживает фиксированную паузу после каждой операции отправки.
func (c *Controller) pause() {
	time.Sleep(c.delay)
}
