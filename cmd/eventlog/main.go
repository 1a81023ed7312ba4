// Command eventlog tails the NOTE_EVENTS stream and prints each version event.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"notes-versioning-be/internal/config"
	"notes-versioning-be/pkg/events"
	pktNats "notes-versioning-be/pkg/nats"

	"github.com/fatih/color"
)

func main() {
	durable := flag.String("durable", "eventlog", "durable consumer name")
	flag.Parse()

	cfg := config.Load()

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = sub.Subscribe(ctx, pktNats.Subject(">"), *durable, func(ctx context.Context, evt events.Event) error {
		p := evt.Payload()
		color.Cyan("%s %s", evt.Timestamp().Format("15:04:05"), evt.EventType())
		color.White("  note=%v version=%v action=%v editor=%v", p["note_id"], p["version"], p["action"], p["editor_id"])
		return nil
	})
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}

	color.Green("Listening on %s (Ctrl+C to stop)", cfg.App.NatsURL)
	<-ctx.Done()
}
