package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// ImageExtensions — расширения файлов, которые считаются изображениями,
// в порядке приоритета поиска аватаров.
var ImageExtensions = []string{"jpg", "jpeg", "png", "webp", "gif", "avif"}

const (
	// MaxEmbeds — лимит Discord на количество embed'ов в одном сообщении.
	MaxEmbeds = 10
	// MaxAttachments — лимит Discord на количество вложений в одном сообщении.
	MaxAttachments = 10
	// MessageDelay — пауза между отправками, чтобы не упираться в rate limit.
	MessageDelay = 100 * time.Millisecond
	// MaxVariantIndex — верхняя граница перебора нумерованных дубликатов
	// (<stem>_NNN.<ext>). Трёхзначная схема именования сама задаёт предел.
	MaxVariantIndex = 999
)

// Export представляет корневую структуру файла экспорта DiscordChatExporter.
// После загрузки структура не изменяется.
type Export struct {
	Guild    GuildInfo   `json:"guild"`
	Channel  ChannelInfo `json:"channel"`
	Messages []Message   `json:"messages"`
}

// GuildInfo представляет сервер, из которого был сделан экспорт.
type GuildInfo struct {
	Name string `json:"name"`
}

// ChannelInfo представляет канал, из которого был сделан экспорт.
type ChannelInfo struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Message представляет одно сообщение в экспорте.
type Message struct {
	Content         string       `json:"content"`
	Author          Author       `json:"author"`
	Timestamp       string       `json:"timestamp"`
	TimestampEdited string       `json:"timestampEdited"`
	Attachments     []Attachment `json:"attachments"`
	Mentions        []Mention    `json:"mentions"`
	InlineEmojis    []Emoji      `json:"inlineEmojis"`
	Reactions       []Reaction   `json:"reactions"`
}

// Author представляет автора сообщения.
type Author struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	Color     string `json:"color"`
}

// Attachment представляет вложение с устаревшей удалённой ссылкой.
type Attachment struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

// Mention представляет упоминание пользователя в тексте сообщения.
type Mention struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
}

// Emoji представляет эмодзи: кастомное (с ID) или юникодное (без ID).
type Emoji struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	IsAnimated bool   `json:"isAnimated"`
	ImageURL   string `json:"imageUrl"`
}

// Reaction представляет реакцию на сообщение. Поля count и users в экспортах
// встречаются в разных формах, поэтому хранятся сырыми и разбираются лениво.
type Reaction struct {
	Emoji Emoji             `json:"emoji"`
	Count json.RawMessage   `json:"count"`
	Users []json.RawMessage `json:"users"`
}

// MediaSource представляет один источник медиафайла: локальный файл,
// найденный в индексе, либо исходная удалённая ссылка.
type MediaSource struct {
	// LocalPath — путь к локальному файлу; пустой для удалённых источников.
	LocalPath string
	// FileName — имя файла, под которым вложение будет отправлено.
	FileName string
	// RemoteURL — исходная ссылка; пустая для локальных источников.
	RemoteURL string
}

// LocalSource создает источник из локального файла.
func LocalSource(path, fileName string) MediaSource {
	return MediaSource{LocalPath: path, FileName: fileName}
}

// RemoteSource создает источник из удалённой ссылки.
func RemoteSource(url string) MediaSource {
	return MediaSource{RemoteURL: url}
}

// IsLocal сообщает, указывает ли источник на локальный файл.
func (s MediaSource) IsLocal() bool {
	return s.LocalPath != ""
}

// IsImage сообщает, похож ли источник на изображение по расширению имени.
func (s MediaSource) IsImage() bool {
	if s.IsLocal() {
		return IsImageFile(s.FileName)
	}
	return IsImageFile(s.RemoteURL)
}

// IsImageFile проверяет расширение имени файла по списку ImageExtensions.
func IsImageFile(fileName string) bool {
	lower := strings.ToLower(fileName)
	for _, ext := range ImageExtensions {
		if strings.HasSuffix(lower, "."+ext) {
			return true
		}
	}
	return false
}

// ImportOptions содержит разобранные опции команды import.
type ImportOptions struct {
	NoGuild       bool
	NoCategory    bool
	NoChannel     bool
	NoTimestamp   bool
	NoMentions    bool
	NoReactions   bool
	NoEmbed       bool
	Buttons       bool
	ReactionUsers bool
	Outside       bool
	DisableButton bool
	RangeStart    *int
	RangeEnd      *int
	First         *int
	Last          *int
}
