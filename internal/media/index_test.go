package media

import (
	"archive/zip"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discord-chat-importer/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
}

func TestBuild(t *testing.T) {
	t.Run("Пустой путь дает отсутствие индекса", func(t *testing.T) {
		idx, cleanup := Build(context.Background(), "", "export", testLogger())
		defer cleanup()
		assert.Nil(t, idx)
	})

	t.Run("Несуществующий корень деградирует до отсутствия индекса", func(t *testing.T) {
		idx, cleanup := Build(context.Background(), "/non/existing/root", "export", testLogger())
		defer cleanup()
		assert.Nil(t, idx)
	})

	t.Run("Корень без подкаталогов сканируется целиком", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "Photo.PNG"))

		idx, cleanup := Build(context.Background(), root, "export", testLogger())
		defer cleanup()
		require.NotNil(t, idx)

		seen := NewSeenPaths()
		found := idx.ResolveAttachmentVariants("photo.png", seen)
		require.Len(t, found, 1)
		assert.Equal(t, filepath.Join(root, "Photo.PNG"), found[0].Path)
	})

	t.Run("Сканируются только известные подкаталоги", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "avatars", "111.png"))
		writeFile(t, filepath.Join(root, "unrelated", "stray.png"))
		writeFile(t, filepath.Join(root, "channels", "my-export", "pic.png"))

		idx, cleanup := Build(context.Background(), root, "my-export", testLogger())
		defer cleanup()
		require.NotNil(t, idx)

		_, ok := idx.ResolveAvatar("111")
		assert.True(t, ok)

		seen := NewSeenPaths()
		assert.NotEmpty(t, idx.ResolveAttachmentVariants("pic.png", seen))
		assert.Empty(t, idx.ResolveAttachmentVariants("stray.png", seen))
	})

	t.Run("Отсутствие именованного подкаталога откатывается на весь channels", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "channels", "other-export", "pic.png"))

		idx, cleanup := Build(context.Background(), root, "my-export", testLogger())
		defer cleanup()
		require.NotNil(t, idx)

		seen := NewSeenPaths()
		assert.NotEmpty(t, idx.ResolveAttachmentVariants("pic.png", seen))
	})

	t.Run("ZIP-архив распаковывается и сканируется", func(t *testing.T) {
		zipPath := filepath.Join(t.TempDir(), "media.zip")
		zipFile, err := os.Create(zipPath)
		require.NoError(t, err)

		writer := zip.NewWriter(zipFile)
		entry, err := writer.Create("avatars/222.jpg")
		require.NoError(t, err)
		_, err = entry.Write([]byte("jpeg-data"))
		require.NoError(t, err)
		require.NoError(t, writer.Close())
		require.NoError(t, zipFile.Close())

		idx, cleanup := Build(context.Background(), zipPath, "export", testLogger())
		defer cleanup()
		require.NotNil(t, idx)

		avatar, ok := idx.ResolveAvatar("222")
		require.True(t, ok)
		assert.Equal(t, "222.jpg", avatar.Name)
	})
}

func TestResolveAvatar(t *testing.T) {
	t.Run("Расширения перебираются в порядке приоритета", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "111.png"))
		writeFile(t, filepath.Join(root, "111.jpeg"))

		idx, cleanup := Build(context.Background(), root, "export", testLogger())
		defer cleanup()
		require.NotNil(t, idx)

		avatar, ok := idx.ResolveAvatar("111")
		require.True(t, ok)
		// jpeg стоит раньше png в списке приоритетов
		assert.Equal(t, "111.jpeg", avatar.Name)
	})

	t.Run("Отсутствие аватара дает false", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "other.png"))

		idx, cleanup := Build(context.Background(), root, "export", testLogger())
		defer cleanup()

		_, ok := idx.ResolveAvatar("999")
		assert.False(t, ok)
	})

	t.Run("Нулевой индекс безопасен", func(t *testing.T) {
		var idx *Index
		_, ok := idx.ResolveAvatar("111")
		assert.False(t, ok)
	})
}

func TestResolveAttachmentVariants(t *testing.T) {
	t.Run("Каждый файл заявляется ровно один раз", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "a.png"))
		writeFile(t, filepath.Join(root, "a_001.png"))
		writeFile(t, filepath.Join(root, "a_002.png"))
		writeFile(t, filepath.Join(root, "a_003.png"))
		// a_004.png отсутствует — перебор останавливается

		idx, cleanup := Build(context.Background(), root, "export", testLogger())
		defer cleanup()
		require.NotNil(t, idx)

		seen := NewSeenPaths()
		found := idx.ResolveAttachmentVariants("a.png", seen)
		require.Len(t, found, 4)
		assert.Equal(t, "a.png", found[0].Name)
		assert.Equal(t, "a_001.png", found[1].Name)
		assert.Equal(t, "a_002.png", found[2].Name)
		assert.Equal(t, "a_003.png", found[3].Name)

		// Повторное разрешение в том же запуске не дает ничего
		assert.Empty(t, idx.ResolveAttachmentVariants("a.png", seen))
	})

	t.Run("Перебор дубликатов останавливается на первом пропуске", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "b.png"))
		writeFile(t, filepath.Join(root, "b_001.png"))
		writeFile(t, filepath.Join(root, "b_003.png"))

		idx, cleanup := Build(context.Background(), root, "export", testLogger())
		defer cleanup()

		seen := NewSeenPaths()
		found := idx.ResolveAttachmentVariants("b.png", seen)
		require.Len(t, found, 2)
		assert.Equal(t, "b_001.png", found[1].Name)
	})

	t.Run("Поиск не зависит от регистра имени", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "Image.PNG"))

		idx, cleanup := Build(context.Background(), root, "export", testLogger())
		defer cleanup()

		seen := NewSeenPaths()
		assert.NotEmpty(t, idx.ResolveAttachmentVariants("image.png", seen))
	})
}

func TestCollectSources(t *testing.T) {
	t.Run("Ненайденное вложение откатывается на удалённую ссылку", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "local.png"))

		idx, cleanup := Build(context.Background(), root, "export", testLogger())
		defer cleanup()

		msg := &domain.Message{Attachments: []domain.Attachment{
			{URL: "https://cdn.example.com/local.png", FileName: "local.png"},
			{URL: "https://cdn.example.com/missing.png", FileName: "missing.png"},
		}}

		seen := NewSeenPaths()
		sources := CollectSources(msg, idx, seen, func(domain.Attachment) bool { return true })
		require.Len(t, sources, 2)
		assert.True(t, sources[0].IsLocal())
		assert.False(t, sources[1].IsLocal())
		assert.Equal(t, "https://cdn.example.com/missing.png", sources[1].RemoteURL)
	})

	t.Run("Без индекса все источники удалённые", func(t *testing.T) {
		msg := &domain.Message{Attachments: []domain.Attachment{
			{URL: "https://cdn.example.com/a.png", FileName: "a.png"},
		}}

		sources := CollectSources(msg, nil, NewSeenPaths(), func(domain.Attachment) bool { return true })
		require.Len(t, sources, 1)
		assert.False(t, sources[0].IsLocal())
	})

	t.Run("Фильтр отсеивает вложения", func(t *testing.T) {
		msg := &domain.Message{Attachments: []domain.Attachment{
			{URL: "https://cdn.example.com/a.png", FileName: "a.png"},
			{URL: "https://cdn.example.com/doc.pdf", FileName: "doc.pdf"},
		}}

		sources := CollectSources(msg, nil, NewSeenPaths(), func(att domain.Attachment) bool {
			return domain.IsImageFile(att.FileName)
		})
		require.Len(t, sources, 1)
		assert.Equal(t, "https://cdn.example.com/a.png", sources[0].RemoteURL)
	})
}

func TestExportNameStem(t *testing.T) {
	assert.Equal(t, "my-export", ExportNameStem("/data/exports/my-export.json"))
	assert.Equal(t, "my-export", ExportNameStem("https://example.com/files/my-export.json"))
	assert.Equal(t, "plain", ExportNameStem("plain"))
}
