// Command yatubectl runs operator tasks against a yatube deployment.
//
//	yatubectl migrate
//	yatubectl cache-clear
//	yatubectl group-create -title "Cats" -slug cats -description "All about cats"
//	yatubectl group-delete -slug cats
//	yatubectl post-delete -id 42
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"yatube/internal/application/pagecache"
	group_service "yatube/internal/application/service/group"
	post_service "yatube/internal/application/service/post"
	model "yatube/internal/domain/models"
	post_port "yatube/internal/domain/ports/input/post"
	ports "yatube/internal/domain/ports/output"
	"yatube/internal/domain/ports/output/cache"
	"yatube/internal/infrastructure/config"
	"yatube/internal/infrastructure/logger"
	redis_cache "yatube/internal/infrastructure/outbound/cache/redis"
	prometheus_metrics "yatube/internal/infrastructure/outbound/metrics/prometheus"
	comment_postgres "yatube/internal/infrastructure/outbound/repository/comment/postgres"
	group_postgres "yatube/internal/infrastructure/outbound/repository/group/postgres"
	post_postgres "yatube/internal/infrastructure/outbound/repository/post/postgres"
	"yatube/internal/infrastructure/outbound/repository/postgres"
	"yatube/internal/infrastructure/outbound/storage/local"
)

var errUsage = errors.New("usage")

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, cfg, log, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
			os.Exit(2)
		}
		log.Error("Command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "migrate":
		if err := postgres.Migrate(cfg.Database.DSN(), log); err != nil {
			return err
		}
		fmt.Fprintln(out, "migrations applied")
		return nil

	case "cache-clear":
		if !cfg.Redis.Enabled {
			client := &http.Client{Timeout: 10 * time.Second}
			return clearServerCache(ctx, client, cacheClearURL(cfg.Prometheus), out)
		}
		pageCache, closeCache, err := openPageCache(cfg, log)
		if err != nil {
			return err
		}
		defer closeCache()
		return clearCache(ctx, pageCache, log, out)

	case "group-create":
		fs := flag.NewFlagSet("group-create", flag.ContinueOnError)
		title := fs.String("title", "", "group title")
		slug := fs.String("slug", "", "unique group slug")
		description := fs.String("description", "", "group description")
		if err := fs.Parse(args[1:]); err != nil {
			return errUsage
		}
		return withGroups(ctx, cfg, log, func(groups *group_service.GroupService) error {
			return createGroup(ctx, groups, *title, *slug, *description, out)
		})

	case "group-delete":
		fs := flag.NewFlagSet("group-delete", flag.ContinueOnError)
		slug := fs.String("slug", "", "slug of the group to delete")
		if err := fs.Parse(args[1:]); err != nil {
			return errUsage
		}
		return withGroups(ctx, cfg, log, func(groups *group_service.GroupService) error {
			return deleteGroup(ctx, groups, *slug, out)
		})

	case "post-delete":
		fs := flag.NewFlagSet("post-delete", flag.ContinueOnError)
		id := fs.Int64("id", 0, "id of the post to delete")
		if err := fs.Parse(args[1:]); err != nil {
			return errUsage
		}
		return withPosts(ctx, cfg, log, func(posts post_port.Service) error {
			return deletePost(ctx, posts, *id, out)
		})
	}

	return errUsage
}

func clearCache(ctx context.Context, pageCache cache.PageCache, log ports.Logger, out io.Writer) error {
	memo := pagecache.NewMemoizer(pageCache, 0, log, prometheus_metrics.NewPrometheusMetricsProvider())
	if err := memo.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "page cache cleared")
	return nil
}

// clearServerCache asks a running server to purge its in-process page cache
// through the internal listener.
func clearServerCache(ctx context.Context, client *http.Client, url string, out io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("server refused cache clear: %s", resp.Status)
	}
	fmt.Fprintln(out, "page cache cleared")
	return nil
}

func cacheClearURL(listener config.Prometheus) string {
	host := listener.Address
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(listener.Port)) + "/cache/clear"
}

func createGroup(ctx context.Context, groups *group_service.GroupService, title, slug, description string, out io.Writer) error {
	group, err := groups.CreateGroup(ctx, &model.Group{Title: title, Slug: slug, Description: description})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "group %q created with id %d\n", group.Slug, group.ID)
	return nil
}

func deleteGroup(ctx context.Context, groups *group_service.GroupService, slug string, out io.Writer) error {
	if slug == "" {
		return errUsage
	}
	if err := groups.DeleteGroup(ctx, slug); err != nil {
		return err
	}
	fmt.Fprintf(out, "group %q deleted\n", slug)
	return nil
}

func deletePost(ctx context.Context, posts post_port.Service, id int64, out io.Writer) error {
	if id <= 0 {
		return errUsage
	}
	if err := posts.DeletePost(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "post %d deleted\n", id)
	return nil
}

func withPosts(ctx context.Context, cfg *config.Config, log *logger.Logger, fn func(post_port.Service) error) error {
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to create postgres pool: %w", err)
	}
	defer pool.Close()

	metrics := prometheus_metrics.NewPrometheusMetricsProvider()
	return fn(post_service.NewPostService(
		post_postgres.NewPostRepository(pool, log, metrics),
		comment_postgres.NewCommentRepository(pool, log, metrics),
		local.NewImageStorage(cfg.Media.Root, cfg.Media.MaxUploadBytes, log),
		postgres.NewPostgresUOW(pool, log, metrics),
		log,
		metrics,
	))
}

func withGroups(ctx context.Context, cfg *config.Config, log *logger.Logger, fn func(*group_service.GroupService) error) error {
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to create postgres pool: %w", err)
	}
	defer pool.Close()

	metrics := prometheus_metrics.NewPrometheusMetricsProvider()
	return fn(group_service.NewGroupService(group_postgres.NewGroupRepository(pool, log, metrics), log))
}

// openPageCache connects to the shared Redis page cache.
func openPageCache(cfg *config.Config, log *logger.Logger) (cache.PageCache, func(), error) {
	client, err := redis_cache.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Error("Failed to close Redis connection", slog.String("error", err.Error()))
		}
	}
	return redis_cache.NewPageCache(client, log), closeFn, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `usage: yatubectl <command> [flags]

commands:
  migrate                                      apply pending database migrations
  cache-clear                                  purge every cached page
  group-create -title T -slug S [-description D]
  group-delete -slug S                         delete a group; its posts keep no group
  post-delete -id N                            delete a post with its comments and image`)
}
