package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/studyhive/studyhive-go/core"
	"github.com/studyhive/studyhive-go/internal/config"
	"github.com/studyhive/studyhive-go/studyhive"
)

// Options are the global flags. Commands reach the shared client through
// root.
type Options struct {
	Config  string `short:"c" long:"config" description:"config file" env:"STUDYHIVE_CONFIG"`
	BaseURL string `short:"u" long:"url" description:"api base url, overrides the config file"`
	Storage string `short:"s" long:"storage" description:"token storage backend" choice:"file" choice:"redis" choice:"memory"`
	Verbose bool   `short:"v" long:"verbose" description:"log http traffic to stderr"`
	JSON    bool   `long:"json" description:"print results as json"`

	Login       LoginCommand       `command:"login" description:"log in and store the session"`
	Logout      LogoutCommand      `command:"logout" description:"end the session and forget the tokens"`
	Status      StatusCommand      `command:"status" description:"show the current session"`
	Levels      LevelsCommand      `command:"levels" description:"list academic levels"`
	Courses     CoursesCommand     `command:"courses" description:"list courses"`
	Notes       NotesCommand       `command:"notes" description:"list community notes"`
	Quizzes     QuizzesCommand     `command:"quizzes" description:"list quizzes"`
	Leaderboard LeaderboardCommand `command:"leaderboard" description:"show the reputation leaderboard"`
	Requests    RequestsCommand    `command:"requests" description:"list or create material requests"`
	Search      SearchCommand      `command:"search" description:"search courses, notes, past questions and quizzes"`
	Upload      UploadCommand      `command:"upload" description:"upload a file and print its storage key"`

	ctx    context.Context
	stdout io.Writer
	stderr io.Writer

	client  *studyhive.Client
	cleanup []func() error
}

func newOptions(ctx context.Context, stdout, stderr io.Writer) *Options {
	o := &Options{ctx: ctx, stdout: stdout, stderr: stderr}
	o.Login.root = o
	o.Logout.root = o
	o.Status.root = o
	o.Levels.root = o
	o.Courses.root = o
	o.Notes.root = o
	o.Quizzes.root = o
	o.Leaderboard.root = o
	o.Requests.List.root = o
	o.Requests.Create.root = o
	o.Search.root = o
	o.Upload.root = o
	return o
}

func (o *Options) loadConfig() (config.Config, error) {
	path := o.Config
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return config.Config{}, err
	}
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	if o.Storage != "" {
		cfg.Storage.Backend = o.Storage
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (o *Options) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(o.stderr, &slog.HandlerOptions{Level: level}))
}

// api builds the product client on first use.
func (o *Options) api() (*studyhive.Client, error) {
	if o.client != nil {
		return o.client, nil
	}

	cfg, err := o.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := o.logger()

	cache, err := o.openCache(cfg, logger)
	if err != nil {
		return nil, err
	}

	client, err := studyhive.New(studyhive.Config{
		BaseURL:    cfg.BaseURLOrDefault(),
		Cache:      cache,
		HTTPClient: &http.Client{Timeout: cfg.Timeout()},
		Logger:     logger,
		KeyPrefix:  cfg.Storage.KeyPrefix,
		OnSessionExpired: func(context.Context, error) {
			fmt.Fprintln(o.stderr, "session expired, run `hive login` again")
		},
	})
	if err != nil {
		return nil, err
	}
	o.client = client
	return client, nil
}

func (o *Options) openCache(cfg config.Config, logger *slog.Logger) (core.Cache, error) {
	switch cfg.BackendOrDefault() {
	case config.BackendMemory:
		return core.NewMemoryCache(), nil
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddrOrDefault(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		o.cleanup = append(o.cleanup, rdb.Close)
		return core.NewRedisCache(core.RedisCacheConfig{
			Client:    rdb,
			KeyPrefix: "studyhive:",
			Logger:    logger,
		})
	default:
		cache, err := core.NewFileCache(cfg.TokenPathOrDefault())
		if err != nil {
			return nil, fmt.Errorf("open token file: %w", err)
		}
		return cache, nil
	}
}

func (o *Options) close() {
	for _, fn := range o.cleanup {
		_ = fn()
	}
}
