package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leynos/frankie/internal/domain"
)

func TestPageInfo_FirstAndLastPage(t *testing.T) {
	testCases := []struct {
		name      string
		info      domain.PageInfo
		wantFirst bool
		wantLast  bool
	}{
		{
			name:      "middle page",
			info:      domain.PageInfo{CurrentPage: 2, PerPage: 50, HasNext: true, HasPrev: true},
			wantFirst: false,
			wantLast:  false,
		},
		{
			name:      "first page with more",
			info:      domain.PageInfo{CurrentPage: 1, PerPage: 50, HasNext: true},
			wantFirst: true,
			wantLast:  false,
		},
		{
			name:      "single page",
			info:      domain.PageInfo{CurrentPage: 1, PerPage: 50},
			wantFirst: true,
			wantLast:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantFirst, tc.info.IsFirstPage())
			assert.Equal(t, tc.wantLast, tc.info.IsLastPage())
		})
	}
}

func TestRateLimitInfo_IsExhausted(t *testing.T) {
	assert.True(t, domain.RateLimitInfo{Limit: 5000, Remaining: 0}.IsExhausted())
	assert.False(t, domain.RateLimitInfo{Limit: 5000, Remaining: 1}.IsExhausted())
}

func TestCachedPullRequestMetadata_IsExpired(t *testing.T) {
	entry := domain.CachedPullRequestMetadata{ExpiresAtUnix: 1000}

	assert.False(t, entry.IsExpired(999))
	assert.True(t, entry.IsExpired(1000))
	assert.True(t, entry.IsExpired(1001))
}

func TestCommitMetadata_ShortSHA(t *testing.T) {
	commit := domain.CommitMetadata{SHA: "0123456789abcdef"}
	assert.Equal(t, "0123456", commit.ShortSHA())

	short := domain.CommitMetadata{SHA: "012"}
	assert.Equal(t, "012", short.ShortSHA())
}

func TestLineMapping_Offset(t *testing.T) {
	assert.Equal(t, 0, domain.Exact(10).Offset())
	assert.Equal(t, 3, domain.Moved(10, 13).Offset())
	assert.Equal(t, -2, domain.Moved(10, 8).Offset())
	assert.Equal(t, 0, domain.Deleted(10).Offset())
	assert.Equal(t, 0, domain.NotFound(10).Offset())
}

func TestReviewComment_IsReply(t *testing.T) {
	root := domain.ReviewComment{ID: 1}
	reply := domain.ReviewComment{ID: 2, InReplyToID: domain.Int64Ptr(1)}

	assert.False(t, root.IsReply())
	assert.True(t, reply.IsReply())
}
