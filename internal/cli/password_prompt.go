package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// PasswordReader returns one password typed by the operator.
type PasswordReader func(prompt string) (string, error)

// TerminalPasswordReader prompts on stderr and reads stdin without echo.
func TerminalPasswordReader(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := readPasswordNoEcho(os.Stdin)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return raw, nil
}

func readPasswordNoEcho(stdin *os.File) (string, error) {
	if stdin == nil {
		return "", errors.New("stdin unavailable")
	}

	restore, err := disableEcho(stdin)
	if err != nil {
		return "", err
	}
	defer restore()

	return readLine(stdin)
}

func readLine(input io.Reader) (string, error) {
	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
