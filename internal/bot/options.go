package bot

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"discord-chat-importer/internal/domain"
)

// SplitArgs разбивает строку аргументов по пробелам с поддержкой двойных
// кавычек: путь с пробелами можно взять в кавычки.
func SplitArgs(input string) []string {
	var tokens []string
	var current strings.Builder
	insideQuotes := false

	for _, r := range input {
		if r == '"' {
			insideQuotes = !insideQuotes
			continue
		}
		if unicode.IsSpace(r) && !insideQuotes {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			continue
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// ParseOptions разбирает флаги команды import и проверяет их сочетания.
// Невалидное сочетание отклоняется до любой отправки.
func ParseOptions(args []string) (domain.ImportOptions, error) {
	var opts domain.ImportOptions

	parseValue := func(index *int, flag string) (int, error) {
		*index++
		if *index >= len(args) {
			return 0, fmt.Errorf("Missing value for %s", flag)
		}
		value, err := strconv.Atoi(args[*index])
		if err != nil || value < 0 {
			return 0, fmt.Errorf("Invalid value for %s", flag)
		}
		return value, nil
	}

	for index := 0; index < len(args); index++ {
		switch arg := args[index]; arg {
		case "--no-guild":
			opts.NoGuild = true
		case "--no-category":
			opts.NoCategory = true
		case "--no-channel":
			opts.NoChannel = true
		case "--no-timestamp":
			opts.NoTimestamp = true
		case "--no-mentions":
			opts.NoMentions = true
		case "--no-reactions":
			opts.NoReactions = true
		case "--no-embed":
			opts.NoEmbed = true
		case "--button":
			opts.Buttons = true
		case "--reaction-users":
			opts.ReactionUsers = true
		case "--outside":
			opts.Outside = true
		case "--disable-button":
			opts.DisableButton = true
		case "--range":
			index++
			if index >= len(args) {
				return opts, fmt.Errorf("Missing value for --range")
			}
			start, end, ok := strings.Cut(args[index], ",")
			if !ok {
				return opts, fmt.Errorf("Invalid format for --range. Use start,end")
			}
			startValue, err := strconv.Atoi(start)
			if err != nil || startValue < 0 {
				return opts, fmt.Errorf("Invalid start value in --range")
			}
			endValue, err := strconv.Atoi(end)
			if err != nil || endValue < 0 {
				return opts, fmt.Errorf("Invalid end value in --range")
			}
			opts.RangeStart = &startValue
			opts.RangeEnd = &endValue
		case "--range-start":
			value, err := parseValue(&index, "--range-start")
			if err != nil {
				return opts, err
			}
			opts.RangeStart = &value
		case "--range-end":
			value, err := parseValue(&index, "--range-end")
			if err != nil {
				return opts, err
			}
			opts.RangeEnd = &value
		case "--first":
			value, err := parseValue(&index, "--first")
			if err != nil {
				return opts, err
			}
			opts.First = &value
		case "--last":
			value, err := parseValue(&index, "--last")
			if err != nil {
				return opts, err
			}
			opts.Last = &value
		default:
			return opts, fmt.Errorf("Unknown option: %s", arg)
		}
	}

	if opts.NoReactions && opts.Buttons {
		return opts, fmt.Errorf("--no-reactions and --button cannot be used together")
	}
	if opts.DisableButton && !opts.Buttons {
		return opts, fmt.Errorf("--disable-button can only be used with --button")
	}
	if opts.NoEmbed && !opts.Outside {
		return opts, fmt.Errorf("--no-embed can only be used with --outside")
	}

	return opts, nil
}
