package runner

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

type inputResult struct {
	text string
	err  error
}

// linePump reads lines in a background goroutine so that Input can honor
// context cancellation while the underlying reader blocks.
type linePump struct {
	reader *bufio.Reader
	ch     chan inputResult
	once   sync.Once
}

func newLinePump(r io.Reader) *linePump {
	return &linePump{reader: bufio.NewReader(r)}
}

func (p *linePump) start() {
	p.once.Do(func() {
		p.ch = make(chan inputResult)
		go func() {
			defer close(p.ch)
			for {
				text, err := p.reader.ReadString('\n')
				if text != "" {
					p.ch <- inputResult{text: text}
				}
				if err != nil {
					if err != io.EOF {
						p.ch <- inputResult{err: err}
					}
					return
				}
			}
		}()
	})
}

// next blocks for one line (without the trailing newline).
func (p *linePump) next(ctx context.Context) (string, error) {
	p.start()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-p.ch:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimRight(res.text, "\r\n"), nil
	}
}
