// Package compose собирает из одного исходного сообщения упорядоченный
// список исходящих пакетов, укладывающихся в лимиты Discord.
package compose

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"discord-chat-importer/internal/domain"
	"discord-chat-importer/internal/media"
	"discord-chat-importer/internal/transform"
)

// Composer строит пакеты сообщений для одного экспорта с фиксированным
// набором опций.
type Composer struct {
	export *domain.Export
	opts   domain.ImportOptions
	log    *slog.Logger
}

// New создает новый экземпляр Composer.
func New(export *domain.Export, opts domain.ImportOptions, log *slog.Logger) *Composer {
	return &Composer{export: export, opts: opts, log: log}
}

// UserProfileURL возвращает ссылку на профиль пользователя Discord.
func UserProfileURL(userID string) string {
	return fmt.Sprintf("https://discord.com/users/%s", userID)
}

// Footer собирает текст футера из имен сервера, категории и канала
// с учетом флагов видимости. Пустые части опускаются.
func Footer(export *domain.Export, opts domain.ImportOptions) string {
	var parts []string
	if !opts.NoGuild && export.Guild.Name != "" {
		parts = append(parts, export.Guild.Name)
	}
	if !opts.NoCategory && export.Channel.Category != "" {
		parts = append(parts, export.Channel.Category)
	}
	if !opts.NoChannel && export.Channel.Name != "" {
		parts = append(parts, export.Channel.Name)
	}
	return strings.Join(parts, " | ")
}

// Compose строит пакеты для одного сообщения. content — уже преобразованный
// текст, avatar — локальный файл аватара (может отсутствовать), sources —
// разрешенные источники медиа.
func (c *Composer) Compose(msg *domain.Message, content string, avatar *media.LocalFile, sources []domain.MediaSource) []*discordgo.MessageSend {
	if c.opts.Outside {
		return c.composeDetached(msg, content, avatar, sources)
	}
	if len(sources) == 0 {
		return c.composeText(msg, content, avatar)
	}
	return c.composeImages(msg, content, avatar, sources)
}

// composeText — режим без медиа: один пакет с единственным embed'ом.
// Пустой текст без аватара не дает ничего.
func (c *Composer) composeText(msg *domain.Message, content string, avatar *media.LocalFile) []*discordgo.MessageSend {
	if content == "" && avatar == nil {
		return nil
	}
	embed := c.metadataEmbed(msg, avatarName(avatar))
	embed.Description = content

	send := &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}
	c.attachAvatar(send, avatar)
	c.attachButtons(send, msg.Reactions)
	return []*discordgo.MessageSend{send}
}

// composeImages — постраничный режим: источники вычерпываются в пакеты
// по ≤10 embed'ов и ≤10 локальных вложений. Удалённое изображение занимает
// только слот embed'а; локальное — слот вложения и слот embed'а, потому что
// его нужно загрузить и сослаться на него из embed'а.
func (c *Composer) composeImages(msg *domain.Message, content string, avatar *media.LocalFile, sources []domain.MediaSource) []*discordgo.MessageSend {
	embedURL := UserProfileURL(msg.Author.ID)

	var batches []*discordgo.MessageSend
	remaining := sources
	first := true
	for len(remaining) > 0 {
		send, consumed := c.imageBatch(msg, content, avatar, remaining, first, embedURL)
		if len(send.Embeds) > 0 {
			batches = append(batches, send)
		}
		if consumed == 0 {
			break
		}
		remaining = remaining[consumed:]
		first = false
	}

	if len(batches) > 0 {
		c.attachButtons(batches[len(batches)-1], msg.Reactions)
	}
	return batches
}

// imageBatch наполняет один пакет из головы списка источников и возвращает
// количество потребленных источников. Первый пакет несет вложение аватара
// (в счет лимита) и метаданные в первом embed'е.
func (c *Composer) imageBatch(msg *domain.Message, content string, avatar *media.LocalFile, sources []domain.MediaSource, first bool, embedURL string) (*discordgo.MessageSend, int) {
	send := &discordgo.MessageSend{}
	if first {
		c.attachAvatar(send, avatar)
	}

	consumed := 0
	for _, src := range sources {
		if len(send.Embeds) >= domain.MaxEmbeds {
			break
		}
		if src.IsLocal() && len(send.Files) >= domain.MaxAttachments {
			break
		}

		var embed *discordgo.MessageEmbed
		if first && len(send.Embeds) == 0 {
			embed = c.metadataEmbed(msg, avatarName(avatar))
			embed.Description = content
		} else {
			// Пустой embed с тем же URL: платформа визуально группирует
			// изображения с общей ссылкой в одно сообщение.
			embed = &discordgo.MessageEmbed{}
		}
		embed.URL = embedURL

		if src.IsLocal() {
			file := c.loadLocal(src.LocalPath, src.FileName)
			if file == nil {
				consumed++
				continue
			}
			send.Files = append(send.Files, file)
			embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + src.FileName}
		} else {
			embed.Image = &discordgo.MessageEmbedImage{URL: src.RemoteURL}
		}

		send.Embeds = append(send.Embeds, embed)
		consumed++
	}
	return send, consumed
}

// composeDetached — режим отделения метаданных от вложений. Удалённые ссылки
// дописываются к тексту, локальные файлы уходят пачками по ≤10; первая пачка
// несет объединенный текст обычным содержимым.
func (c *Composer) composeDetached(msg *domain.Message, content string, avatar *media.LocalFile, sources []domain.MediaSource) []*discordgo.MessageSend {
	var locals []*discordgo.File
	var remotes []string
	for _, src := range sources {
		if src.IsLocal() {
			if file := c.loadLocal(src.LocalPath, src.FileName); file != nil {
				locals = append(locals, file)
			}
			continue
		}
		remotes = append(remotes, src.RemoteURL)
	}

	combined := content
	if len(remotes) > 0 {
		if combined != "" {
			combined += "\n"
		}
		combined += strings.Join(remotes, "\n")
	}

	var batches []*discordgo.MessageSend
	if !c.opts.NoEmbed {
		send := &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{c.metadataEmbed(msg, avatarName(avatar))},
		}
		c.attachAvatar(send, avatar)
		batches = append(batches, send)
	}

	if combined != "" || len(locals) > 0 {
		firstChunk := true
		for {
			n := min(len(locals), domain.MaxAttachments)
			send := &discordgo.MessageSend{Files: locals[:n]}
			if firstChunk && combined != "" {
				send.Content = combined
			}
			batches = append(batches, send)
			locals = locals[n:]
			firstChunk = false
			if len(locals) == 0 {
				break
			}
		}
	}

	// Ряд кнопок достается последнему фактически собранному пакету;
	// без пакетов вложений им оказывается пакет метаданных.
	if len(batches) > 0 {
		c.attachButtons(batches[len(batches)-1], msg.Reactions)
	}
	return batches
}

// metadataEmbed строит embed с метаданными: автор со ссылкой на профиль и
// иконкой, футер, отметка времени (правка предпочтительнее) и акцентный цвет.
func (c *Composer) metadataEmbed(msg *domain.Message, avatarFileName string) *discordgo.MessageEmbed {
	author := &discordgo.MessageEmbedAuthor{
		Name: msg.Author.Name,
		URL:  UserProfileURL(msg.Author.ID),
	}
	if avatarFileName != "" {
		author.IconURL = "attachment://" + avatarFileName
	} else {
		author.IconURL = msg.Author.AvatarURL
	}

	embed := &discordgo.MessageEmbed{Author: author}

	if footer := Footer(c.export, c.opts); footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	}

	if !c.opts.NoTimestamp {
		raw := msg.TimestampEdited
		if raw == "" {
			raw = msg.Timestamp
		}
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			embed.Timestamp = ts.Format(time.RFC3339)
		}
	}

	if color, ok := transform.ParseAccentColor(msg.Author.Color); ok {
		embed.Color = color
	}
	return embed
}

// attachAvatar прикладывает локальный файл аватара к пакету. Файл, который
// не читается, молча пропускается.
func (c *Composer) attachAvatar(send *discordgo.MessageSend, avatar *media.LocalFile) {
	if avatar == nil {
		return
	}
	if file := c.loadLocal(avatar.Path, avatar.Name); file != nil {
		send.Files = append(send.Files, file)
	}
}

// attachButtons добавляет ряд декоративных кнопок-реакций к пакету.
func (c *Composer) attachButtons(send *discordgo.MessageSend, reactions []domain.Reaction) {
	if !c.opts.Buttons || len(reactions) == 0 {
		return
	}
	buttons := transform.ReactionButtons(reactions, c.opts.DisableButton)
	send.Components = []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: buttons},
	}
}

// loadLocal читает локальный файл в память. Ошибка чтения роняет только этот
// источник, не пакет.
func (c *Composer) loadLocal(path, name string) *discordgo.File {
	data, err := os.ReadFile(path)
	if err != nil {
		c.log.Warn("не удалось прочитать локальный файл, источник пропущен", "path", path, "error", err)
		return nil
	}
	return &discordgo.File{Name: name, Reader: bytes.NewReader(data)}
}

func avatarName(avatar *media.LocalFile) string {
	if avatar == nil {
		return ""
	}
	return avatar.Name
}
