package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/yanqian/video-summarizer/internal/bootstrap"
	"github.com/yanqian/video-summarizer/internal/domain/auth"
	"github.com/yanqian/video-summarizer/internal/domain/summarizer"
	"github.com/yanqian/video-summarizer/internal/domain/video"
	"github.com/yanqian/video-summarizer/internal/infra/config"
	apperrors "github.com/yanqian/video-summarizer/pkg/errors"
	"github.com/yanqian/video-summarizer/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// stores are the persistence backends a CLI run reads from and writes to.
type stores struct {
	repo  video.SummaryRepository
	cache video.TranscriptCache
}

// openStores uses the server's backends so summaries survive between runs.
func openStores(cfg *config.Config, log *slog.Logger) (stores, func()) {
	client, closeValkey := bootstrap.ProvideValkeyClient(cfg, log)
	repo, closeRepo := bootstrap.ProvideSummaryRepository(cfg, log)
	return stores{repo: repo, cache: bootstrap.ProvideTranscriptCache(cfg, client)}, func() {
		closeRepo()
		closeValkey()
	}
}

type cli struct {
	stdout, stderr io.Writer
	open           func(cfg *config.Config, log *slog.Logger) (stores, func())
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return (&cli{stdout: stdout, stderr: stderr, open: openStores}).run(ctx, args)
}

func (c *cli) run(ctx context.Context, args []string) int {
	stdout, stderr := c.stdout, c.stderr
	fs := flag.NewFlagSet("summarize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	refresh := fs.Bool("refresh", false, "ignore any stored summary")
	asJSON := fs.Bool("json", false, "print the full response as JSON")
	issueFor := fs.String("issue-token", "", "print an API bearer token for the given subject and exit")
	ttl := fs.Duration("ttl", 0, "lifetime of an issued token (default from config)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: summarize [-refresh] [-json] <youtube link>")
		fmt.Fprintln(stderr, "       summarize -issue-token <subject> [-ttl 720h]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	log := logger.NewWithWriter(stderr, os.Getenv("LOG_LEVEL"))

	if *issueFor != "" {
		return issueToken(ctx, cfg, log, *issueFor, *ttl, stdout, stderr)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	st, closeStores := c.open(cfg, log)
	defer closeStores()
	svc, err := buildVideoService(cfg, log, st)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	resp, err := svc.Summarize(ctx, video.Request{Link: fs.Arg(0), Refresh: *refresh})
	if err != nil {
		fmt.Fprintf(stderr, "summarize failed (%s): %v\n", apperrors.Code(err), err)
		return 1
	}
	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(resp); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}
	printSummary(stdout, resp)
	return 0
}

func printSummary(w io.Writer, resp video.Response) {
	if resp.Title != "" {
		fmt.Fprintln(w, resp.Title)
	}
	fmt.Fprintln(w, resp.Link)
	fmt.Fprintln(w)
	for _, point := range resp.Summary {
		fmt.Fprintln(w, strings.TrimSpace(point))
	}
}

func issueToken(ctx context.Context, cfg *config.Config, log *slog.Logger, subject string, ttl time.Duration, stdout, stderr io.Writer) int {
	svc := auth.NewService(auth.Config{
		Secret:   cfg.HTTP.Auth.Secret,
		Issuer:   cfg.HTTP.Auth.Issuer,
		TokenTTL: cfg.HTTP.Auth.TokenTTL,
	}, log)
	tok, err := svc.IssueToken(ctx, auth.IssueRequest{Subject: subject, TTL: ttl})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, tok.Token)
	return 0
}

// buildVideoService wires the summarization pipeline without archive or job queue.
func buildVideoService(cfg *config.Config, log *slog.Logger, st stores) (video.Service, error) {
	client, err := bootstrap.ProvideChatGPTClient(cfg, nil, log)
	if err != nil {
		return nil, err
	}
	invoker := bootstrap.ProvideInvoker(cfg, client, bootstrap.ProvideTokenCounter(cfg, log), log)
	sum := summarizer.NewService(bootstrap.ProvideSummarizerConfig(cfg), invoker, nil, log)
	return video.NewService(
		bootstrap.ProvideVideoConfig(cfg),
		sum,
		bootstrap.ProvideYouTubeClient(cfg),
		st.cache,
		st.repo,
		nil,
		nil,
		log,
	), nil
}
