package replay

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrAlreadyRunning возвращается при попытке начать второе воспроизведение
// в канале, где уже идет активное.
var ErrAlreadyRunning = errors.New("import already running in this channel")

// Run описывает один активный запуск воспроизведения.
type Run struct {
	ID        string
	ChannelID string
	StartedAt time.Time
	Token     *Token
}

// Registry — потокобезопасный реестр активных запусков по каналам.
// Живет на границе приложения: ядро получает только read-only токен.
type Registry struct {
	mu   sync.Mutex
	runs map[string]*Run // ключ — ID канала
}

// NewRegistry создает новый экземпляр Registry.
func NewRegistry() *Registry {
	return &Registry{runs: make(map[string]*Run)}
}

// Begin регистрирует новый запуск для канала. Второй одновременный запуск
// в том же канале отклоняется.
func (r *Registry) Begin(channelID string) (*Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[channelID]; ok {
		return nil, ErrAlreadyRunning
	}

	run := &Run{
		ID:        uuid.NewString(),
		ChannelID: channelID,
		StartedAt: time.Now(),
		Token:     NewToken(),
	}
	r.runs[channelID] = run
	return run, nil
}

// Finish снимает запуск с учета. Вызывается по завершении воспроизведения
// независимо от исхода.
func (r *Registry) Finish(channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.runs, channelID)
}

// Cancel запрашивает отмену активного запуска в канале. Возвращает false,
// если активного запуска нет.
func (r *Registry) Cancel(channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[channelID]
	if !ok {
		return false
	}
	run.Token.Cancel()
	return true
}

// CancelByID запрашивает отмену запуска по его идентификатору.
func (r *Registry) CancelByID(runID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, run := range r.runs {
		if run.ID == runID {
			run.Token.Cancel()
			return true
		}
	}
	return false
}

// RunInfo — снимок информации об активном запуске.
type RunInfo struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	StartedAt time.Time `json:"started_at"`
}

// Active возвращает снимок всех активных запусков.
func (r *Registry) Active() []RunInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]RunInfo, 0, len(r.runs))
	for _, run := range r.runs {
		infos = append(infos, RunInfo{ID: run.ID, ChannelID: run.ChannelID, StartedAt: run.StartedAt})
	}
	return infos
}
