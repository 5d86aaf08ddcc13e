// Package wizard collects card field values through ordered console
// prompts.
package wizard

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ethicslab/aigov/internal/card"
)

// Options control a wizard run.
type Options struct {
	// Overrides maps prompt field keys to preset values. Overridden
	// prompts are not asked.
	Overrides map[string]string

	// AcceptDefaults answers every non-overridden prompt with its
	// default without reading input.
	AcceptDefaults bool
}

// Run asks each prompt on w, showing the default in brackets, and reads
// one answer line per prompt from r. A line that is blank after trimming
// accepts the default; any other input is taken verbatim. EOF counts as
// blank for the current and all remaining prompts, so piped partial input
// falls back to defaults.
func Run(r io.Reader, w io.Writer, prompts []card.Prompt, opts Options) ([]string, error) {
	reader := bufio.NewReader(r)
	answers := make([]string, 0, len(prompts))
	eof := false

	for _, p := range prompts {
		if v, ok := opts.Overrides[p.Field]; ok {
			answers = append(answers, v)
			continue
		}
		if opts.AcceptDefaults {
			answers = append(answers, p.Default)
			continue
		}

		fmt.Fprintf(w, "%s [%s]: ", p.Label, p.Default)

		line := ""
		if !eof {
			var err error
			line, err = reader.ReadString('\n')
			if err != nil {
				if !errors.Is(err, io.EOF) {
					return nil, fmt.Errorf("read answer for %s: %w", p.Label, err)
				}
				eof = true
				fmt.Fprintln(w)
			}
		}

		answer := strings.TrimSpace(line)
		if answer == "" {
			answer = p.Default
		}
		answers = append(answers, answer)
	}

	return answers, nil
}
