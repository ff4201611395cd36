package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/mohitdudhat22/Task-Management-App/internal/client"
	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
	"github.com/mohitdudhat22/Task-Management-App/internal/ws"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow task changes live",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		api := newAPI()
		rec := client.NewReconciler(client.NewBoard(), api, client.WithNotice(func(msg string, err error) {
			fmt.Printf("! %s: %v\n", msg, err)
		}))
		if err := rec.Fetch(ctx); err != nil {
			return err
		}

		sub, err := client.NewSubscriber(api.BaseURL(), api.Token(), rec)
		if err != nil {
			return err
		}
		sub.OnReady = func() {
			fmt.Println("subscribed")
			printCounts(rec.Board())
		}
		sub.OnFrame = func(f ws.Frame, err error) {
			if err != nil {
				return
			}
			fmt.Printf("%s %s\n", f.Event, f.Data)
			printCounts(rec.Board())
		}
		return sub.Run(ctx)
	},
}

func printCounts(b *client.Board) {
	for _, s := range domain.Statuses {
		fmt.Printf("  %-10s %d\n", s, len(b.Bucket(s)))
	}
}
