package storage

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/keydrop/keydrop-core/internal/vault"
)

// ReadMasterPassword reads a password from the controlling terminal
// without echoing it. If stdin is not a terminal (piped input), it
// reads a line from scanner instead, so it can share a single scanner
// instance with the rest of an interactive shell's input loop and
// scripted test input stays in order.
func ReadMasterPassword(scanner *bufio.Scanner, prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	scanner.Scan()
	return scanner.Text(), nil
}

// readSecret prompts for a value that should not be echoed. When
// stdin is a real terminal it reads via term.ReadPassword; otherwise
// it reads a line from the same scanner used for the surrounding
// fields, so piped test input stays in order.
func readSecret(scanner *bufio.Scanner, prompt string) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Print(prompt)
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return ""
		}
		return string(b)
	}
	fmt.Print(prompt)
	scanner.Scan()
	return strings.TrimSpace(scanner.Text())
}

// PromptForItem reads the fields of a new vault item from stdin using
// scanner.
func PromptForItem(scanner *bufio.Scanner) vault.VaultItem {
	ask := func(label string) string {
		fmt.Print(label)
		scanner.Scan()
		return strings.TrimSpace(scanner.Text())
	}

	return vault.VaultItem{
		Name:     ask("Name: "),
		Username: ask("Username: "),
		Password: readSecret(scanner, "Password (leave empty to generate): "),
		URL:      ask("URL: "),
		Notes:    ask("Notes: "),
		Category: ask("Category: "),
	}
}

// PromptEditItem reads replacement field values for an existing item
// using scanner, leaving any blank answer as the item's current value.
func PromptEditItem(scanner *bufio.Scanner, current vault.VaultItem) vault.VaultItem {
	ask := func(label, existing string) string {
		fmt.Printf("%s [%s]: ", label, existing)
		scanner.Scan()
		if v := strings.TrimSpace(scanner.Text()); v != "" {
			return v
		}
		return existing
	}

	edited := current
	edited.Name = ask("Name", current.Name)
	edited.Username = ask("Username", current.Username)
	if password := readSecret(scanner, "New password (leave empty to keep current): "); password != "" {
		edited.Password = password
	}
	edited.URL = ask("URL", current.URL)
	edited.Notes = ask("Notes", current.Notes)
	edited.Category = ask("Category", current.Category)

	return edited
}
