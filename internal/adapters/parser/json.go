package parser

import (
	"encoding/json"
	"fmt"

	"discord-chat-importer/internal/domain"
	"discord-chat-importer/internal/ports"
)

// JsonParser реализует интерфейс Parser для разбора JSON-экспорта
// DiscordChatExporter.
type JsonParser struct{}

// NewJsonParser создает новый экземпляр JsonParser.
func NewJsonParser() ports.Parser {
	return &JsonParser{}
}

// Parse преобразует срез байт с JSON в структуру Export.
func (p *JsonParser) Parse(data []byte) (*domain.Export, error) {
	var export domain.Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json: %w", err)
	}
	return &export, nil
}
