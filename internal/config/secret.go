package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// SecretEnvVar holds the API client secret for non-interactive use
const SecretEnvVar = "POWERPACK_CLIENT_SECRET"

// ErrNoSecret is returned when no secret is available and stdin is not a terminal
var ErrNoSecret = fmt.Errorf("no client secret: set %s or run from a terminal", SecretEnvVar)

// ReadSecret returns the API client secret from the environment, or prompts
// for it on the terminal without echo. The secret is never written to disk.
func ReadSecret(clientID string) (string, error) {
	if secret := strings.TrimSpace(os.Getenv(SecretEnvVar)); secret != "" {
		return secret, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNoSecret
	}

	fmt.Fprintf(os.Stderr, "Client secret for %s: ", clientID)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read client secret: %w", err)
	}

	return strings.TrimSpace(string(secret)), nil
}

// Prompt reads one line from in after printing label to out. def is
// returned for an empty answer.
func Prompt(in io.Reader, out io.Writer, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}
