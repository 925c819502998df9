package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/noah-isme/prospect-portal-api/internal/models"
	"github.com/noah-isme/prospect-portal-api/internal/repository"
	"github.com/noah-isme/prospect-portal-api/pkg/cache"
	"github.com/noah-isme/prospect-portal-api/pkg/config"
	"github.com/noah-isme/prospect-portal-api/pkg/database"
	"github.com/noah-isme/prospect-portal-api/pkg/logger"
)

// assign-role writes the user_roles row for an existing account and drops its cached sessions so
// the new role applies on the next request.
func main() {
	email := flag.String("email", "", "email of the account to update")
	role := flag.String("role", "", "executive, manager or admin")
	permissions := flag.String("permissions", "", "comma separated permission tags stored with the role")
	flag.Parse()

	parsed := models.ParseRole(strings.ToLower(strings.TrimSpace(*role)))
	if *email == "" || parsed == models.RoleNone {
		log.Fatal("usage: assign-role -email user@example.com -role executive|manager|admin")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := repository.NewUserRepository(db)
	user, err := users.FindByEmail(ctx, *email)
	if err != nil {
		logr.Sugar().Fatalw("user lookup failed", "email", *email, "error", err)
	}
	assignment, err := users.AssignRole(ctx, user.ID, string(parsed), splitPermissions(*permissions))
	if err != nil {
		logr.Sugar().Fatalw("failed to assign role", "user_id", user.ID, "error", err)
	}

	if cfg.Session.CacheEnabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, cached sessions expire on their own", "error", err)
		} else {
			defer client.Close() //nolint:errcheck
			if err := repository.NewSessionCacheRepository(client).DeleteUser(ctx, user.ID); err != nil {
				logr.Sugar().Warnw("failed to drop cached sessions", "user_id", user.ID, "error", err)
			}
		}
	}

	logr.Sugar().Infow("role assigned", "user_id", user.ID, "email", user.Email, "role", assignment.Role)
}

func splitPermissions(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
