package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskflow/client/internal/services/lifecycle"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow your task list live over the realtime feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			manager := lifecycle.New(a.cfg.Context.ShutdownTimeout, a.logger)
			manager.Listen(cancel)

			session, err := a.auth.Current(ctx)
			if err != nil {
				return err
			}

			if err := a.source.Connect(ctx, session.Token); err != nil {
				return err
			}
			unbind := a.tasks.BindRealtime(a.source)
			defer unbind()

			// stale view first, then the authoritative list
			_ = a.tasks.RestoreSnapshot(ctx)
			if err := a.tasks.Refresh(ctx); err != nil {
				return err
			}

			render := func() {
				tasks, err := a.tasks.Visible(ctx)
				if err != nil {
					return
				}
				fmt.Print("\033[H\033[2J")
				printTasks(tasks)
				if a.source.Exhausted() {
					fmt.Println("\n(realtime connection lost, data may be stale)")
				}
			}
			unsubscribe := a.tasks.Subscribe(render)
			defer unsubscribe()
			render()

			<-ctx.Done()
			return manager.Shutdown(context.Background())
		},
	}
}
