package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitArgs(t *testing.T) {
	t.Run("Разбиение по пробелам", func(t *testing.T) {
		tokens := SplitArgs("export.json media --button")
		assert.Equal(t, []string{"export.json", "media", "--button"}, tokens)
	})

	t.Run("Кавычки сохраняют пробелы внутри токена", func(t *testing.T) {
		tokens := SplitArgs(`"my export.json" "media files" --outside`)
		assert.Equal(t, []string{"my export.json", "media files", "--outside"}, tokens)
	})

	t.Run("Лишние пробелы схлопываются", func(t *testing.T) {
		tokens := SplitArgs("  a   b  ")
		assert.Equal(t, []string{"a", "b"}, tokens)
	})

	t.Run("Пустая строка дает пустой список", func(t *testing.T) {
		assert.Empty(t, SplitArgs(""))
		assert.Empty(t, SplitArgs("   "))
	})
}

func TestParseOptions(t *testing.T) {
	t.Run("Булевы флаги", func(t *testing.T) {
		opts, err := ParseOptions([]string{
			"--no-guild", "--no-category", "--no-channel", "--no-timestamp",
			"--no-mentions", "--reaction-users", "--outside",
		})
		require.NoError(t, err)

		assert.True(t, opts.NoGuild)
		assert.True(t, opts.NoCategory)
		assert.True(t, opts.NoChannel)
		assert.True(t, opts.NoTimestamp)
		assert.True(t, opts.NoMentions)
		assert.True(t, opts.ReactionUsers)
		assert.True(t, opts.Outside)
		assert.False(t, opts.Buttons)
	})

	t.Run("Диапазон через запятую", func(t *testing.T) {
		opts, err := ParseOptions([]string{"--range", "3,7"})
		require.NoError(t, err)
		require.NotNil(t, opts.RangeStart)
		require.NotNil(t, opts.RangeEnd)
		assert.Equal(t, 3, *opts.RangeStart)
		assert.Equal(t, 7, *opts.RangeEnd)
	})

	t.Run("Диапазон отдельными флагами", func(t *testing.T) {
		opts, err := ParseOptions([]string{"--range-start", "2", "--range-end", "9"})
		require.NoError(t, err)
		assert.Equal(t, 2, *opts.RangeStart)
		assert.Equal(t, 9, *opts.RangeEnd)
	})

	t.Run("Первые и последние N", func(t *testing.T) {
		opts, err := ParseOptions([]string{"--first", "5"})
		require.NoError(t, err)
		assert.Equal(t, 5, *opts.First)

		opts, err = ParseOptions([]string{"--last", "3"})
		require.NoError(t, err)
		assert.Equal(t, 3, *opts.Last)
	})

	t.Run("Невалидные значения отклоняются", func(t *testing.T) {
		cases := [][]string{
			{"--first"},
			{"--first", "abc"},
			{"--first", "-1"},
			{"--range"},
			{"--range", "5"},
			{"--range", "a,b"},
			{"--range", "-1,5"},
		}
		for _, args := range cases {
			_, err := ParseOptions(args)
			assert.Error(t, err, "args: %v", args)
		}
	})

	t.Run("Неизвестная опция отклоняется", func(t *testing.T) {
		_, err := ParseOptions([]string{"--bogus"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Unknown option: --bogus")
	})

	t.Run("Несовместимые сочетания отклоняются", func(t *testing.T) {
		_, err := ParseOptions([]string{"--no-reactions", "--button"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--no-reactions and --button")

		_, err = ParseOptions([]string{"--disable-button"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--disable-button can only be used with --button")

		_, err = ParseOptions([]string{"--no-embed"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--no-embed can only be used with --outside")
	})

	t.Run("Разрешенные сочетания проходят", func(t *testing.T) {
		opts, err := ParseOptions([]string{"--button", "--disable-button"})
		require.NoError(t, err)
		assert.True(t, opts.Buttons)
		assert.True(t, opts.DisableButton)

		opts, err = ParseOptions([]string{"--outside", "--no-embed"})
		require.NoError(t, err)
		assert.True(t, opts.Outside)
		assert.True(t, opts.NoEmbed)
	})
}
