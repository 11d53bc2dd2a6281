package tui

import (
	"sync"

	"github.com/leynos/frankie/internal/domain"
)

// OnceCell is a write-once container with an explicit read accessor.
// Bootstrap state is staged in cells so nothing can silently replace it
// after the update loop starts.
type OnceCell[T any] struct {
	mu    sync.Mutex
	value T
	set   bool
}

// Set installs the value. It reports false when the cell was already set;
// the first value wins.
func (c *OnceCell[T]) Set(value T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.set {
		return false
	}
	c.value = value
	c.set = true
	return true
}

// Get returns the installed value and whether one was set.
func (c *OnceCell[T]) Get() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.set
}

// Bootstrap stages the write-once state the entry layer installs before
// running the program.
type Bootstrap struct {
	Reviews  OnceCell[[]domain.ReviewComment]
	Options  OnceCell[Options]
	TermSize OnceCell[[2]int]
}

// BuildModel assembles the model from the staged cells. Installing the
// options is mandatory; reviews and terminal size fall back to empty.
func (b *Bootstrap) BuildModel() (Model, error) {
	opts, ok := b.Options.Get()
	if !ok {
		return Model{}, domain.NewError(domain.ErrConfiguration, "TUI options were never installed")
	}
	if reviews, ok := b.Reviews.Get(); ok {
		opts.Reviews = reviews
	}
	if size, ok := b.TermSize.Get(); ok {
		opts.Width, opts.Height = size[0], size[1]
	}
	return New(opts), nil
}
