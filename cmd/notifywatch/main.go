// Command notifywatch tails one user's notifications the way the dashboard
// does: a REST sync on every socket connect plus live toasts in between.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/logger"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/notifysync"
)

func main() {
	_ = godotenv.Load()

	apiURL := flag.String("api", envOr("MAYFAIR_API_URL", "http://localhost:3000/api/v1"), "REST base URL")
	token := flag.String("token", os.Getenv("MAYFAIR_TOKEN"), "bearer token")
	syncEvery := flag.Duration("sync", time.Minute, "periodic sync interval")
	level := flag.String("log-level", "warn", "log level")
	flag.Parse()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "a token is required (-token or MAYFAIR_TOKEN)")
		os.Exit(2)
	}

	log := logger.NewWithWriter(os.Stderr, "notifywatch", *level)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	base := strings.TrimRight(*apiURL, "/")
	client := notifysync.NewClient(notifysync.NewHTTPSource(base, *token, 10*time.Second), log)

	shown := map[string]bool{}
	client.OnChange(func(s notifysync.State) {
		for _, n := range s.Toasts() {
			if shown[n.Key()] {
				continue
			}
			shown[n.Key()] = true
			fmt.Printf("%s  [%s] %s: %s\n", n.CreatedAt.Local().Format("15:04:05"), n.Priority, n.Title, n.Message)
		}
	})

	if err := client.Sync(ctx); err == nil {
		s := client.State()
		fmt.Printf("%d notifications, %d unread\n", len(s.Items), s.Unread())
	}

	wsURL := "ws" + strings.TrimPrefix(base, "http") + "/ws"
	sock := notifysync.NewSocket(wsURL, *token, client, log)
	go func() {
		if err := sock.Run(ctx); err != nil {
			log.Error("socket stopped", slog.Any("error", err))
			stop()
		}
	}()

	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	resync := time.NewTicker(*syncEvery)
	defer resync.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			client.Tick(now)
		case <-resync.C:
			_ = client.Sync(ctx)
		}
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
