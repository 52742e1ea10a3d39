package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyeonso/EnhanceBot_Go/internal/domain"
)

// maxLineBytes bounds one transcript line; game replies are multi-line but a
// JSONL record stays well under this.
const maxLineBytes = 1 << 20

// Read decodes a JSONL stream of chat records. Blank lines are skipped; a
// record that fails to decode aborts the read with its line number, since a
// torn transcript should be fixed rather than silently truncated. Records
// missing a Seq fall back to the line number so same-timestamp ordering stays
// stable.
func Read(r io.Reader) ([]domain.Message, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var msgs []domain.Message
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}

		var rec struct {
			domain.Message
			Seq *int `json:"seq"`
		}
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrInvalidTranscript, line, err)
		}
		if rec.Sender == "" || rec.Text == "" {
			return nil, fmt.Errorf("%w: line %d: sender and text are required", domain.ErrInvalidTranscript, line)
		}

		msg := rec.Message
		if rec.Seq != nil {
			msg.Seq = *rec.Seq
		} else {
			msg.Seq = line
		}
		msgs = append(msgs, msg)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	return msgs, nil
}

// ReadFile reads a JSONL transcript from disk.
func ReadFile(path string) ([]domain.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript: %w", err)
	}
	defer f.Close()
	return Read(f)
}
