package source

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"discord-chat-importer/internal/ports"
)

// HTTPSource реализует интерфейс DataSource для загрузки файла экспорта
// по прямой ссылке.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource создает новый экземпляр HTTPSource.
func NewHTTPSource(url string) ports.DataSource {
	return &HTTPSource{url: url, client: http.DefaultClient}
}

// IsURL сообщает, является ли путь http(s)-ссылкой.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// ForPath выбирает подходящий источник для пути: ссылка или локальный файл.
func ForPath(path string) ports.DataSource {
	if IsURL(path) {
		return NewHTTPSource(path)
	}
	return NewFileSource(path)
}

// Fetch загружает содержимое по ссылке.
func (s *HTTPSource) Fetch() ([]byte, error) {
	resp, err := s.client.Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected http status for %s: %s", s.url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
