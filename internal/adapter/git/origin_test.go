package git_test

import (
	"testing"

	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leynos/frankie/internal/domain"
)

func TestOps_DiscoverOrigin_HTTPSRemote(t *testing.T) {
	repo := newTestRepo(t)
	repo.commit("initial", map[string]string{"a.txt": "1\n"})
	_, err := repo.repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{"https://github.com/octo/repo.git"},
	})
	require.NoError(t, err)

	origin, err := repo.open().DiscoverOrigin()
	require.NoError(t, err)

	assert.Equal(t, "octo", origin.Owner)
	assert.Equal(t, "repo", origin.Repo)
	assert.False(t, origin.IsEnterprise())
}

func TestOps_DiscoverOrigin_SSHEnterpriseRemote(t *testing.T) {
	repo := newTestRepo(t)
	repo.commit("initial", map[string]string{"a.txt": "1\n"})
	_, err := repo.repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@ghe.example.com:foo/bar.git"},
	})
	require.NoError(t, err)

	origin, err := repo.open().DiscoverOrigin()
	require.NoError(t, err)

	assert.Equal(t, "ghe.example.com", origin.Host)
	assert.Equal(t, "foo", origin.Owner)
	assert.Equal(t, "bar", origin.Repo)
	assert.True(t, origin.IsEnterprise())
}

func TestOps_DiscoverOrigin_EnterpriseHTTPSWithPort(t *testing.T) {
	repo := newTestRepo(t)
	repo.commit("initial", map[string]string{"a.txt": "1\n"})
	_, err := repo.repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{"https://ghe.example.com:8443/foo/bar.git"},
	})
	require.NoError(t, err)

	origin, err := repo.open().DiscoverOrigin()
	require.NoError(t, err)

	assert.Equal(t, "ghe.example.com", origin.Host)
	assert.Equal(t, 8443, origin.Port)
}

func TestOps_DiscoverOrigin_MissingRemote(t *testing.T) {
	repo := newTestRepo(t)
	repo.commit("initial", map[string]string{"a.txt": "1\n"})

	_, err := repo.open().DiscoverOrigin()
	assert.True(t, domain.IsKind(err, domain.ErrLocalDiscovery), "got %v", err)
}
