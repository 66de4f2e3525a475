// Package media отвечает за поиск локальных копий медиафайлов,
// заменяющих устаревшие удалённые ссылки экспорта.
package media

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"discord-chat-importer/internal/domain"
)

// Index сопоставляет имя файла (в нижнем регистре) со списком локальных
// путей-кандидатов в порядке обнаружения. Экспортеры сохраняют повторные
// загрузки одного вложения под нумерованными именами, поэтому отображение
// многие-ко-многим.
type Index struct {
	files map[string][]string
}

// SeenPaths — множество уже занятых локальных путей. Живет ровно один запуск
// воспроизведения и гарантирует, что каждый физический файл будет заявлен
// не более чем одним восстановленным вложением.
type SeenPaths map[string]struct{}

// NewSeenPaths создает пустое множество занятых путей.
func NewSeenPaths() SeenPaths {
	return make(SeenPaths)
}

// claim пытается занять путь. Возвращает false, если путь уже занят.
func (s SeenPaths) claim(path string) bool {
	if _, ok := s[path]; ok {
		return false
	}
	s[path] = struct{}{}
	return true
}

// LocalFile — найденный локальный файл: путь на диске и имя для отправки.
type LocalFile struct {
	Path string
	Name string
}

// Build строит индекс медиафайлов. mediaPath может быть каталогом,
// ZIP-архивом или ссылкой на ZIP-архив. Любая ошибка деградирует до
// отсутствия индекса: воспроизведение продолжится по удалённым ссылкам.
// Возвращаемая функция очистки удаляет временный каталог распаковки.
func Build(ctx context.Context, mediaPath, exportStem string, log *slog.Logger) (*Index, func()) {
	noop := func() {}
	if mediaPath == "" {
		return nil, noop
	}

	if isURL(mediaPath) {
		scratch, err := fetchAndExtract(ctx, mediaPath)
		if err != nil {
			log.Warn("не удалось получить удалённый архив, работаем без индекса", "url", mediaPath, "error", err)
			return nil, noop
		}
		return scanRoot(scratch, exportStem, log), func() { _ = os.RemoveAll(scratch) }
	}

	if isZipFile(mediaPath) {
		scratch, err := extractZip(mediaPath)
		if err != nil {
			log.Warn("не удалось распаковать архив, работаем без индекса", "path", mediaPath, "error", err)
			return nil, noop
		}
		return scanRoot(scratch, exportStem, log), func() { _ = os.RemoveAll(scratch) }
	}

	return scanRoot(mediaPath, exportStem, log), noop
}

func scanRoot(root, exportStem string, log *slog.Logger) *Index {
	dirs, err := locateMediaDirs(root, exportStem)
	if err != nil {
		log.Warn("не удалось прочитать корень медиафайлов, работаем без индекса", "path", root, "error", err)
		return nil
	}
	idx := scanFiles(dirs)
	log.Info("индекс медиафайлов построен", "dirs", len(dirs), "files", len(idx.files))
	return idx
}

// locateMediaDirs выбирает каталоги для сканирования. Корень без подкаталогов
// сканируется целиком. Иначе берутся существующие из {avatars, emojis, icons}
// и channels/<exportStem>; при отсутствии именованного подкаталога — весь
// channels/.
func locateMediaDirs(root, exportStem string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read media root: %w", err)
	}

	hasSubdirs := false
	for _, entry := range entries {
		if entry.IsDir() {
			hasSubdirs = true
			break
		}
	}
	if !hasSubdirs {
		return []string{root}, nil
	}

	var dirs []string
	for _, name := range []string{"avatars", "emojis", "icons"} {
		path := filepath.Join(root, name)
		if isDir(path) {
			dirs = append(dirs, path)
		}
	}

	channelsRoot := filepath.Join(root, "channels")
	if isDir(channelsRoot) {
		specific := filepath.Join(channelsRoot, exportStem)
		if isDir(specific) {
			dirs = append(dirs, specific)
		} else {
			dirs = append(dirs, channelsRoot)
		}
	}

	if len(dirs) == 0 {
		dirs = append(dirs, root)
	}
	return dirs, nil
}

// scanFiles рекурсивно обходит каталоги и наполняет индекс. Порядок
// кандидатов — порядок обнаружения.
func scanFiles(dirs []string) *Index {
	idx := &Index{files: make(map[string][]string)}
	for _, dir := range dirs {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			key := strings.ToLower(d.Name())
			idx.files[key] = append(idx.files[key], path)
			return nil
		})
	}
	return idx
}

// ResolveAvatar ищет локальный файл аватара <authorID>.<ext>, перебирая
// расширения в фиксированном порядке приоритета.
func (idx *Index) ResolveAvatar(authorID string) (LocalFile, bool) {
	if idx == nil {
		return LocalFile{}, false
	}
	for _, ext := range domain.ImageExtensions {
		name := fmt.Sprintf("%s.%s", authorID, ext)
		if paths, ok := idx.files[name]; ok && len(paths) > 0 {
			return LocalFile{Path: paths[0], Name: name}, true
		}
	}
	return LocalFile{}, false
}

// ResolveAttachmentVariants ищет незанятого кандидата для имени файла
// (без учета регистра) и занимает его. Если все кандидаты заняты, разрешение
// не дает ничего — вызывающая сторона откатывается на удалённую ссылку.
// При успехе тот же каталог прощупывается на нумерованные дубликаты
// <stem>_NNN.<ext> начиная с 001 до первого пропуска; каждый существующий
// незанятый дубликат занимается и возвращается по возрастанию номера.
func (idx *Index) ResolveAttachmentVariants(fileName string, seen SeenPaths) []LocalFile {
	if idx == nil {
		return nil
	}

	candidates := idx.files[strings.ToLower(fileName)]
	var base string
	for _, candidate := range candidates {
		if seen.claim(candidate) {
			base = candidate
			break
		}
	}
	if base == "" {
		return nil
	}

	found := []LocalFile{{Path: base, Name: fileName}}

	dir := filepath.Dir(base)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(filepath.Base(base), ext)
	for i := 1; i <= domain.MaxVariantIndex; i++ {
		variant := filepath.Join(dir, fmt.Sprintf("%s_%03d%s", stem, i, ext))
		if !fileExists(variant) {
			break
		}
		if seen.claim(variant) {
			found = append(found, LocalFile{Path: variant, Name: filepath.Base(variant)})
		}
	}
	return found
}

// CollectSources разрешает вложения сообщения, проходящие фильтр, в источники
// медиа: локальные файлы из индекса либо исходные удалённые ссылки.
func CollectSources(msg *domain.Message, idx *Index, seen SeenPaths, filter func(domain.Attachment) bool) []domain.MediaSource {
	var sources []domain.MediaSource
	for _, att := range msg.Attachments {
		if !filter(att) {
			continue
		}
		locals := idx.ResolveAttachmentVariants(att.FileName, seen)
		if len(locals) == 0 {
			sources = append(sources, domain.RemoteSource(att.URL))
			continue
		}
		for _, local := range locals {
			sources = append(sources, domain.LocalSource(local.Path, local.Name))
		}
	}
	return sources
}

// ExportNameStem извлекает имя экспорта без расширения из пути или ссылки.
// Оно задает имя подкаталога channels/<stem> в выгрузке медиафайлов.
func ExportNameStem(jsonPath string) string {
	last := jsonPath
	if isURL(jsonPath) {
		if i := strings.LastIndex(jsonPath, "/"); i >= 0 {
			last = jsonPath[i+1:]
		}
	}
	base := filepath.Base(last)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func isZipFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".zip")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
