// Package term обеспечивает интерактивное получение токена бота через
// терминал и его сохранение в .env файл.
package term

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"golang.org/x/xerrors"
)

// Terminal запрашивает у пользователя секреты через терминал.
type Terminal struct {
	out     io.Writer
	stdinfd int
}

// NewTerminal создает новый экземпляр Terminal.
func NewTerminal() *Terminal {
	return &Terminal{
		out:     os.Stdout,
		stdinfd: int(os.Stdin.Fd()),
	}
}

// Token запрашивает токен бота без эха ввода.
func (t *Terminal) Token() (string, error) {
	fmt.Fprint(t.out, "Enter DISCORD_TOKEN: ")
	byteToken, err := term.ReadPassword(t.stdinfd)
	fmt.Fprintln(t.out) // Новая строка после ввода
	if err != nil {
		return "", xerrors.Errorf("failed to read token: %w", err)
	}

	token := strings.TrimSpace(string(byteToken))
	if token == "" {
		return "", xerrors.New("DISCORD_TOKEN is required")
	}
	return token, nil
}

// SaveToken записывает токен в .env файл, заменяя существующую строку
// DISCORD_TOKEN= или добавляя новую.
func SaveToken(path, token string) error {
	tokenLine := fmt.Sprintf("DISCORD_TOKEN=%s\n", token)

	content, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return xerrors.Errorf("failed to read %s: %w", path, err)
		}
		return writeEnvFile(path, tokenLine)
	}

	var builder strings.Builder
	replaced := false
	for _, line := range strings.Split(strings.TrimRight(string(content), "\n"), "\n") {
		if strings.HasPrefix(line, "DISCORD_TOKEN=") {
			builder.WriteString(tokenLine)
			replaced = true
			continue
		}
		builder.WriteString(line)
		builder.WriteString("\n")
	}
	if !replaced {
		builder.WriteString(tokenLine)
	}
	return writeEnvFile(path, builder.String())
}

func writeEnvFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return xerrors.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
