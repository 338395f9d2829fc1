package mailmap

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	historySeparator = "|"
	filePerm         = 0o644
)

// Bootstrap derives naive mailmap lines from author history lines of
// the form "Name|<email>". Each email becomes one line carrying every
// name seen for it, longest name first. Distinct emails are never
// merged.
func Bootstrap(history []string) []string {
	namesByEmail := map[string][]string{}

	for _, line := range history {
		name, email, ok := splitHistoryLine(line)
		if !ok {
			continue
		}

		if !contains(namesByEmail[email], name) {
			namesByEmail[email] = append(namesByEmail[email], name)
		}
	}

	emails := make([]string, 0, len(namesByEmail))
	for email := range namesByEmail {
		emails = append(emails, email)
	}

	sort.Strings(emails)

	lines := make([]string, 0, len(emails))

	for _, email := range emails {
		names := namesByEmail[email]
		sortByLengthDesc(names)

		line := names[0] + " " + email
		if len(names) > 1 {
			line += " " + strings.Join(names[1:], " ")
		}

		lines = append(lines, line)
	}

	return lines
}

// WriteBootstrap writes mailmap lines to path, creating parent
// directories as needed.
func WriteBootstrap(path string, lines []string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create mailmap directory: %w", err)
		}
	}

	content := strings.Join(lines, "\n") + "\n"

	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		return fmt.Errorf("write mailmap: %w", err)
	}

	return nil
}

func splitHistoryLine(line string) (name, email string, ok bool) {
	sep := strings.LastIndex(line, historySeparator)
	if sep < 0 {
		return "", "", false
	}

	name = strings.TrimSpace(line[:sep])
	email = strings.TrimSpace(line[sep+1:])

	if name == "" || email == "" {
		return "", "", false
	}

	if !strings.HasPrefix(email, "<") {
		email = "<" + email + ">"
	}

	return name, email, true
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}

	return false
}

// sortByLengthDesc orders names longest first, ties broken
// lexicographically for determinism.
func sortByLengthDesc(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}

		return names[i] < names[j]
	})
}
