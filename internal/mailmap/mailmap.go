// Package mailmap resolves contributor email aliases to a single
// canonical identity per contributor, following the git mailmap
// format. Resolution is total: an email with no mapping resolves
// to itself.
package mailmap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const commentPrefix = "#"

// Resolver maps alias emails to canonical emails and canonical
// emails to display names.
type Resolver struct {
	aliases map[string]string
	names   map[string]string
}

// Empty returns a resolver with no mappings. Every email resolves
// to itself.
func Empty() *Resolver {
	return &Resolver{
		aliases: map[string]string{},
		names:   map[string]string{},
	}
}

// Parse reads mailmap lines from r. Blank lines, comment lines and
// lines without a bracketed email are skipped.
func Parse(r io.Reader) (*Resolver, error) {
	resolver := Empty()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		resolver.addLine(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan mailmap: %w", err)
	}

	return resolver, nil
}

// Load parses the mailmap file at path.
func Load(path string) (*Resolver, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mailmap: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Resolve returns the canonical email for the given email. Emails
// without a mapping resolve to themselves.
func (r *Resolver) Resolve(email string) string {
	if canonical, ok := r.aliases[email]; ok {
		return canonical
	}

	return email
}

// Name returns the display name recorded for a canonical email, or
// the empty string when none is known.
func (r *Resolver) Name(canonicalEmail string) string {
	return r.names[canonicalEmail]
}

// Len returns the number of alias mappings.
func (r *Resolver) Len() int {
	return len(r.aliases)
}

func (r *Resolver) addLine(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, commentPrefix) {
		return
	}

	emails := bracketedEmails(trimmed)
	if len(emails) == 0 {
		return
	}

	canonical := emails[0]

	if name := strings.TrimSpace(trimmed[:strings.IndexByte(trimmed, '<')]); name != "" {
		r.names[canonical] = name
	}

	// The canonical email needs no alias entry: Resolve falls
	// through to identity.
	for _, alias := range emails[1:] {
		r.aliases[alias] = canonical
	}
}

// bracketedEmails extracts every <email> token from a line, in order.
func bracketedEmails(line string) []string {
	var emails []string

	rest := line
	for {
		open := strings.IndexByte(rest, '<')
		if open < 0 {
			break
		}

		end := strings.IndexByte(rest[open:], '>')
		if end < 0 {
			break
		}

		email := strings.TrimSpace(rest[open+1 : open+end])
		if email != "" {
			emails = append(emails, email)
		}

		rest = rest[open+end+1:]
	}

	return emails
}
