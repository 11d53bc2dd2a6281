package github_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leynos/frankie/internal/adapter/github"
	"github.com/leynos/frankie/internal/domain"
)

func TestListPullRequestsParams_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		params  github.ListPullRequestsParams
		wantErr bool
	}{
		{"defaults", github.DefaultListPullRequestsParams(), false},
		{"all states", github.ListPullRequestsParams{State: "all", Page: 1, PerPage: 100}, false},
		{"bad state", github.ListPullRequestsParams{State: "merged", Page: 1, PerPage: 30}, true},
		{"zero page", github.ListPullRequestsParams{State: "open", Page: 0, PerPage: 30}, true},
		{"zero per page", github.ListPullRequestsParams{State: "open", Page: 1, PerPage: 0}, true},
		{"oversized per page", github.ListPullRequestsParams{State: "open", Page: 1, PerPage: 101}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.params.Validate()
			if tc.wantErr {
				assert.True(t, domain.IsKind(err, domain.ErrInvalidPagination), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
