// Package transform переписывает сырой текст экспорта и преобразует
// реакции в нативные реакции, кнопки и человекочитаемые списки.
package transform

import (
	"fmt"
	"strconv"
	"strings"

	"discord-chat-importer/internal/domain"
)

// ApplyMentions заменяет литеральные подстроки "@<никнейм-или-имя>" на
// кликабельные упоминания "<@id>". Замена — обычная подстановка подстроки,
// без учета границ слов: совпадения в произвольном тексте тоже заменяются.
func ApplyMentions(content string, mentions []domain.Mention, disabled bool) string {
	if disabled {
		return content
	}
	for _, mention := range mentions {
		display := mention.Nickname
		if display == "" {
			display = mention.Name
		}
		pattern := "@" + display
		clickable := fmt.Sprintf("<@%s>", mention.ID)
		content = strings.ReplaceAll(content, pattern, clickable)
	}
	return content
}

// ApplyInlineEmojis заменяет литеральные ":<shortcode>:" на платформенные
// ссылки кастомных эмодзи. Юникодные эмодзи (без ID) не трогаются.
func ApplyInlineEmojis(content string, emojis []domain.Emoji) string {
	for _, emoji := range emojis {
		if emoji.ID == "" {
			continue
		}
		code := fmt.Sprintf(":%s:", emoji.Code)
		content = strings.ReplaceAll(content, code, MessageFormat(emoji))
	}
	return content
}

// ParseAccentColor разбирает hex-строку цвета (допускается ведущий '#').
// Невалидный ввод дает false и никогда не является фатальным.
func ParseAccentColor(hex string) (int, bool) {
	value, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return 0, false
	}
	return int(value), true
}
