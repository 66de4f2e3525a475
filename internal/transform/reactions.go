package transform

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"discord-chat-importer/internal/domain"
)

// buttonPadding — невидимый префикс из word joiner и hair space. Нужен только
// для того, чтобы кнопки с одинаковым отображаемым числом не склеивались
// визуально и не дедуплицировались.
const buttonPadding = "\u2060\u200a\u2060\u200a\u2060\u200a\u2060\u200a\u2060\u200a\u2060"

// MessageFormat возвращает форму эмодзи для текста сообщения:
// "<:name:id>" или "<a:name:id>" для кастомных, имя для юникодных.
func MessageFormat(emoji domain.Emoji) string {
	if emoji.ID != "" {
		if emoji.IsAnimated {
			return fmt.Sprintf("<a:%s:%s>", emoji.Name, emoji.ID)
		}
		return fmt.Sprintf("<:%s:%s>", emoji.Name, emoji.ID)
	}
	return emoji.Name
}

// APIName возвращает форму эмодзи для REST-вызова добавления реакции:
// "name:id" для кастомных, сам глиф для юникодных.
func APIName(emoji domain.Emoji) string {
	if emoji.ID != "" {
		return fmt.Sprintf("%s:%s", emoji.Name, emoji.ID)
	}
	return emoji.Name
}

// ComponentEmoji возвращает форму эмодзи для компонента-кнопки.
func ComponentEmoji(emoji domain.Emoji) *discordgo.ComponentEmoji {
	if emoji.ID != "" {
		return &discordgo.ComponentEmoji{
			Name:     emoji.Name,
			ID:       emoji.ID,
			Animated: emoji.IsAnimated,
		}
	}
	return &discordgo.ComponentEmoji{Name: emoji.Name}
}

// ResolveCount возвращает счетчик реакции. Корректное JSON-число берется
// как есть, любая другая форма дает 1.
func ResolveCount(reaction domain.Reaction) int64 {
	var n json.Number
	if err := json.Unmarshal(reaction.Count, &n); err != nil {
		return 1
	}
	value, err := n.Int64()
	if err != nil {
		return 1
	}
	return value
}

// ReactionAPINames возвращает идентификаторы реакций для поштучного
// добавления к отправленному сообщению.
func ReactionAPINames(reactions []domain.Reaction) []string {
	names := make([]string, 0, len(reactions))
	for _, reaction := range reactions {
		names = append(names, APIName(reaction.Emoji))
	}
	return names
}

// ReactionButtons превращает реакции в декоративные (нефункциональные)
// кнопки: эмодзи плюс счетчик с невидимым префиксом.
func ReactionButtons(reactions []domain.Reaction, disabled bool) []discordgo.MessageComponent {
	buttons := make([]discordgo.MessageComponent, 0, len(reactions))
	for _, reaction := range reactions {
		buttons = append(buttons, discordgo.Button{
			CustomID: fmt.Sprintf("dummy_reaction_%s", reaction.Emoji.Code),
			Label:    fmt.Sprintf("%s%d", buttonPadding, ResolveCount(reaction)),
			Style:    discordgo.SecondaryButton,
			Emoji:    ComponentEmoji(reaction.Emoji),
			Disabled: disabled,
		})
	}
	return buttons
}

// UserListing строит человекочитаемый список «кто реагировал»: по строке на
// реакцию в форме "<emoji> : <@id>, …". Реакции без единого распознанного
// пользователя опускаются.
func UserListing(reactions []domain.Reaction) string {
	var lines []string
	for _, reaction := range reactions {
		var mentions []string
		for _, raw := range reaction.Users {
			var user struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(raw, &user); err != nil || user.ID == "" {
				continue
			}
			mentions = append(mentions, fmt.Sprintf("<@%s>", user.ID))
		}
		if len(mentions) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s : %s", MessageFormat(reaction.Emoji), strings.Join(mentions, ", ")))
	}
	return strings.Join(lines, "\n")
}
