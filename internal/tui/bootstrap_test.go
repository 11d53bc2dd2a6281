package tui_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leynos/frankie/internal/domain"
	"github.com/leynos/frankie/internal/tui"
)

func TestOnceCell_FirstWriteWins(t *testing.T) {
	var cell tui.OnceCell[int]

	_, ok := cell.Get()
	assert.False(t, ok)

	assert.True(t, cell.Set(1))
	assert.False(t, cell.Set(2), "later writes are rejected")

	value, ok := cell.Get()
	assert.True(t, ok)
	assert.Equal(t, 1, value)
}

func TestBootstrap_BuildModel(t *testing.T) {
	var boot tui.Bootstrap
	boot.Options.Set(tui.Options{Owner: "octo", Repo: "repo", PRNumber: 12})
	boot.Reviews.Set([]domain.ReviewComment{{ID: 1}})
	boot.TermSize.Set([2]int{100, 30})

	model, err := boot.BuildModel()
	require.NoError(t, err)
	assert.Len(t, model.Reviews(), 1)
}

func TestBootstrap_MissingOptionsIsConfigurationError(t *testing.T) {
	var boot tui.Bootstrap

	_, err := boot.BuildModel()
	assert.True(t, domain.IsKind(err, domain.ErrConfiguration), "got %v", err)
}
