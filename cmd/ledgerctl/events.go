package main

import (
	"context"
	"encoding/json"
	"errors"
	"os/signal"
	"syscall"

	"github.com/opsease/backend/internal/domain/shared"
	"github.com/opsease/backend/internal/infrastructure/event"
	"github.com/spf13/cobra"
)

var errTailLimit = errors.New("tail limit reached")

func newEventsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the domain events forwarded to Kafka",
	}
	cmd.AddCommand(newEventsTailCmd(a))
	return cmd
}

func newEventsTailCmd(a *app) *cobra.Command {
	var (
		groupID string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print forwarded events as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			tail := event.NewKafkaTail(a.cfg.Event, groupID, event.NewEventSerializer(), a.log)
			defer tail.Close()

			return runTail(ctx, tail, json.NewEncoder(cmd.OutOrStdout()), limit)
		},
	}
	cmd.Flags().StringVar(&groupID, "group", "", "Consumer group; empty reads from the latest offset without committing")
	cmd.Flags().IntVar(&limit, "limit", 0, "Stop after this many events (0 = until interrupted)")
	return cmd
}

type eventRunner interface {
	Run(ctx context.Context, fn func(*event.Envelope, shared.DomainEvent) error) error
}

func runTail(ctx context.Context, tail eventRunner, enc *json.Encoder, limit int) error {
	seen := 0
	err := tail.Run(ctx, func(env *event.Envelope, _ shared.DomainEvent) error {
		if err := enc.Encode(env); err != nil {
			return err
		}
		seen++
		if limit > 0 && seen >= limit {
			return errTailLimit
		}
		return nil
	})
	if errors.Is(err, errTailLimit) {
		return nil
	}
	return err
}
