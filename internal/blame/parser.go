package blame

import (
	"bufio"
	"fmt"
	"io"
	"time"
)

// Fragment is one contiguous attribution block found during parsing.
// A commit may surface as several fragments across a file's history.
type Fragment struct {
	// Lines is the number of lines the fragment covers.
	Lines int

	// Date is the author time of the commit the fragment belongs to.
	Date time.Time

	// File identifies the file the fragment was blamed in.
	File string
}

// FileLog is the parsed blame output of a single file.
type FileLog struct {
	// File is the identifier passed to Parse.
	File string

	// Fragments groups the emitted fragments by raw author email, in
	// emission order. The empty key collects unattributed fragments.
	Fragments map[string][]Fragment

	// Names records the last display name seen for each email. It only
	// feeds the naive mailmap bootstrap and plays no part in attribution.
	Names map[string]string
}

// scanBufferSize is the initial bufio.Scanner buffer. Blame metadata
// lines are short, but summary lines carry full commit subjects.
const scanBufferSize = 64 * 1024

// Parse runs the single-pass fragment state machine over one file's
// incremental blame text.
//
// A fragment header carries the line count of the block that follows it,
// but the block's author metadata lines appear after the header. The
// count captured at a header is therefore attributed using the metadata
// parsed since the previous header: each header closes the fragment
// opened by the one before it, and end of input flushes the last open
// fragment unconditionally.
//
// Author metadata is retained across consecutive headers, since blame
// omits it when the same revision reappears at another line range.
// Input missing an author-mail line before its first header yields
// fragments under the empty email rather than an error.
func Parse(r io.Reader, file string) (*FileLog, error) {
	log := &FileLog{
		File:      file,
		Fragments: make(map[string][]Fragment),
		Names:     make(map[string]string),
	}

	var (
		pendingLines int
		currentEmail string
		currentName  string
		currentTime  time.Time
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, scanBufferSize), scanBufferSize)

	for scanner.Scan() {
		line := Classify(scanner.Text())

		switch line.Kind {
		case LineFragmentHeader:
			if pendingLines > 0 {
				log.emit(currentEmail, Fragment{Lines: pendingLines, Date: currentTime, File: file})
			}

			pendingLines = line.Count
		case LineAuthorName:
			currentName = line.Name
		case LineAuthorTime:
			currentTime = time.Unix(line.Timestamp, 0).UTC()
		case LineAuthorEmail:
			currentEmail = line.Email
			log.Names[currentEmail] = currentName
		case LineOther:
			// Committer, summary, filename and friends are skipped.
		}
	}

	err := scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("scan blame log %s: %w", file, err)
	}

	// The final flush is unconditional; a zero-count fragment is a
	// no-op for every consumer.
	log.emit(currentEmail, Fragment{Lines: pendingLines, Date: currentTime, File: file})

	return log, nil
}

func (l *FileLog) emit(email string, frag Fragment) {
	l.Fragments[email] = append(l.Fragments[email], frag)
}
