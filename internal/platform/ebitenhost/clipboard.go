package ebitenhost

import (
	"errors"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
	xclipboard "golang.design/x/clipboard"
)

// clipboardChain uses the system clipboard tools first and falls back to
// the native clipboard binding when they are missing.
type clipboardChain struct {
	log *zap.Logger

	once    sync.Once
	nativeE error
}

func newClipboardChain(log *zap.Logger) *clipboardChain {
	return &clipboardChain{log: log}
}

func (c *clipboardChain) native() error {
	c.once.Do(func() {
		c.nativeE = xclipboard.Init()
		if c.nativeE != nil {
			c.log.Warn("native clipboard unavailable", zap.Error(c.nativeE))
		}
	})
	return c.nativeE
}

func (c *clipboardChain) ReadText() (string, error) {
	var first error
	if !clipboard.Unsupported {
		text, err := clipboard.ReadAll()
		if err == nil {
			return text, nil
		}
		first = err
	}
	if err := c.native(); err != nil {
		return "", fmt.Errorf("read clipboard: %w", errors.Join(first, err))
	}
	return string(xclipboard.Read(xclipboard.FmtText)), nil
}

func (c *clipboardChain) WriteText(text string) error {
	var first error
	if !clipboard.Unsupported {
		err := clipboard.WriteAll(text)
		if err == nil {
			return nil
		}
		first = err
	}
	if err := c.native(); err != nil {
		return fmt.Errorf("write clipboard: %w", errors.Join(first, err))
	}
	xclipboard.Write(xclipboard.FmtText, []byte(text))
	return nil
}
