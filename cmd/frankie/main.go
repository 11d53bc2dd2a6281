// Command frankie is a terminal UI for reviewing and replying to
// pull-request review comments.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/leynos/frankie/internal/adapter/codex"
	gitops "github.com/leynos/frankie/internal/adapter/git"
	"github.com/leynos/frankie/internal/adapter/github"
	"github.com/leynos/frankie/internal/adapter/rewrite"
	"github.com/leynos/frankie/internal/adapter/store/sqlite"
	"github.com/leynos/frankie/internal/adapter/telemetry"
	"github.com/leynos/frankie/internal/config"
	"github.com/leynos/frankie/internal/domain"
	"github.com/leynos/frankie/internal/tui"
	"github.com/leynos/frankie/internal/usecase/intake"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var repoDir string

	root := &cobra.Command{
		Use:   "frankie [pr-url-or-number]",
		Short: "Review and reply to pull-request review comments in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.LoaderOptions{})
			if err != nil {
				return err
			}
			if repoDir != "" {
				cfg.RepositoryDir = repoDir
			}

			identifier := ""
			if len(args) > 0 {
				identifier = args[0]
			}
			return runTUI(cmd.Context(), cfg, identifier)
		},
	}

	root.PersistentFlags().StringVar(&repoDir, "repo-dir", "", "local repository directory")
	root.AddCommand(newListCmd(&repoDir))
	root.AddCommand(newMigrateCmd())
	return root
}

func newListCmd(repoDir *string) *cobra.Command {
	var state string
	var page, perPage int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the repository's pull requests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.LoaderOptions{})
			if err != nil {
				return err
			}
			if *repoDir != "" {
				cfg.RepositoryDir = *repoDir
			}
			return runListing(cmd.Context(), cfg, github.ListPullRequestsParams{
				State:   state,
				Page:    page,
				PerPage: perPage,
			})
		},
	}

	cmd.Flags().StringVar(&state, "state", "open", "filter by state: open, closed, or all")
	cmd.Flags().IntVar(&page, "page", 1, "page to fetch")
	cmd.Flags().IntVar(&perPage, "per-page", 30, "page size (1-100)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the metadata cache schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.LoaderOptions{})
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0o755); err != nil {
				return domain.WrapError(domain.ErrIO, err, "create cache directory")
			}

			store, err := sqlite.NewMetadataStore(cfg.Cache.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cache schema ready at %s\n", cfg.Cache.Path)
			return nil
		},
	}
}

func runListing(ctx context.Context, cfg config.Config, params github.ListPullRequestsParams) error {
	token, err := github.NewPersonalAccessToken(cfg.Token)
	if err != nil {
		return err
	}

	repo, err := gitops.Open(cfg.RepositoryDir)
	if err != nil {
		return err
	}
	origin, err := repo.DiscoverOrigin()
	if err != nil {
		return err
	}
	locator, err := github.NewRepositoryLocator(origin)
	if err != nil {
		return err
	}

	client := github.NewClient(token, locator.APIBase)
	client.SetTimeout(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second)

	listing := intake.NewRepositoryIntake(client)
	pageResult, err := listing.ListPullRequests(ctx, locator, params)
	if err != nil {
		return err
	}

	for _, pr := range pageResult.Items {
		fmt.Printf("#%-5d %-8s %s (%s)\n",
			pr.Number,
			domain.StringValue(pr.State, "-"),
			domain.StringValue(pr.Title, "(untitled)"),
			domain.StringValue(pr.Author, "unknown"))
	}
	if total := pageResult.PageInfo.TotalPages; total != nil {
		fmt.Printf("page %d of %d\n", pageResult.PageInfo.CurrentPage, *total)
	}
	if pageResult.RateLimit != nil && pageResult.RateLimit.IsExhausted() {
		fmt.Printf("rate limit exhausted; resets at %s\n", pageResult.RateLimit.ResetTime())
	}
	return nil
}

func runTUI(ctx context.Context, cfg config.Config, identifier string) error {
	token, err := github.NewPersonalAccessToken(cfg.Token)
	if err != nil {
		return err
	}

	repo, err := gitops.Open(cfg.RepositoryDir)
	if err != nil {
		return err
	}

	locator, err := resolveLocator(identifier, repo)
	if err != nil {
		return err
	}

	client := github.NewClient(token, locator.APIBase)
	client.SetTimeout(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second)

	cache, err := sqlite.NewMetadataStore(cfg.Cache.Path)
	if err != nil {
		return err
	}
	defer cache.Close()

	caching := github.NewCachingClient(client, cache, github.SystemClock, cfg.Cache.TTLSeconds)
	prIntake := intake.NewPullRequestIntake(caching)

	details, err := prIntake.Load(ctx, locator)
	if err != nil {
		return err
	}
	reviews, err := prIntake.ReviewComments(ctx, locator)
	if err != nil {
		return err
	}

	headSHA, err := repo.HeadSHA()
	if err != nil {
		// Time travel degrades without a HEAD; the list still works.
		headSHA = ""
	}

	var rewriteService rewrite.Service
	if cfg.Rewrite.APIKey != "" {
		openAI := rewrite.NewOpenAIClient(cfg.Rewrite.APIKey)
		if cfg.Rewrite.Model != "" {
			openAI.SetModel(cfg.Rewrite.Model)
		}
		if cfg.Rewrite.BaseURL != "" {
			openAI.SetBaseURL(cfg.Rewrite.BaseURL)
		}
		rewriteService = openAI
	}

	var boot tui.Bootstrap
	boot.Reviews.Set(reviews)
	boot.Options.Set(tui.Options{
		Refresh: func(ctx context.Context) ([]domain.ReviewComment, error) {
			return prIntake.ReviewComments(ctx, locator)
		},
		Telemetry:      telemetry.NoopSink{},
		GitOps:         repo,
		HeadSHA:        headSHA,
		CodexService:   codex.NewSystemServiceWithCommand(cfg.Codex.Command),
		RewriteService: rewriteService,
		ReplyTemplates: cfg.Reply.Templates,
		MaxReplyLength: cfg.Reply.MaxLength,
		SyncInterval:   time.Duration(cfg.Sync.IntervalSeconds) * time.Second,
		PRURL:          domain.StringValue(details.Metadata.HTMLURL, ""),
		Owner:          locator.Owner,
		Repo:           locator.Repo,
		PRNumber:       locator.PRNumber,
		TranscriptDir:  cfg.Codex.TranscriptDir,
	})

	model, err := boot.BuildModel()
	if err != nil {
		return err
	}

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	return err
}

func resolveLocator(identifier string, repo *gitops.Ops) (github.PullRequestLocator, error) {
	if identifier == "" {
		return github.PullRequestLocator{}, domain.NewError(domain.ErrMissingPullRequestURL,
			"supply a pull request URL or number")
	}

	origin, err := repo.DiscoverOrigin()
	if err != nil {
		// A full URL needs no origin; only bare numbers do.
		origin = github.Origin{}
	}
	return github.FromIdentifier(identifier, origin)
}

