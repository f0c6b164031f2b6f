// Package tokencount estimates prompt sizes for chat-completion calls.
//
// It uses tiktoken-go with the bundled offline BPE files, so counting never
// reaches the network. Every model is counted with the cl100k_base family
// encoding; the figures feed metrics and logs, not billing.
package tokencount

import (
	"log/slog"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// encodingName is used for every model.
const encodingName = "cl100k_base"

// Per-message overhead used by OpenAI-compatible chat formats.
const (
	tokensPerMessage = 3
	replyPriming     = 3
)

var loaderOnce sync.Once

// Counter counts tokens; it is safe for concurrent use.
type Counter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// NewCounter creates a counter. The encoding is loaded on first use.
func NewCounter() *Counter { return &Counter{} }

func (c *Counter) encoding() (*tiktoken.Tiktoken, error) {
	c.once.Do(func() {
		loaderOnce.Do(func() { tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader()) })
		c.enc, c.err = tiktoken.GetEncoding(encodingName)
		if c.err != nil {
			slog.Warn("token encoding unavailable, using estimates", slog.Any("error", c.err))
		}
	})
	return c.enc, c.err
}

// Count returns the number of tokens in text, or a length/4 estimate when
// the encoding cannot be loaded.
func (c *Counter) Count(text string) int {
	enc, err := c.encoding()
	if err != nil {
		return estimate(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// CountChat returns the prompt token count of a system+user exchange,
// including message framing overhead.
func (c *Counter) CountChat(systemPrompt, userPrompt string) int {
	n := 0
	for _, m := range [][2]string{{"system", systemPrompt}, {"user", userPrompt}} {
		n += tokensPerMessage + c.Count(m[0]) + c.Count(m[1])
	}
	return n + replyPriming
}

func estimate(text string) int {
	if text == "" {
		return 0
	}
	return len(text)/4 + 1
}
