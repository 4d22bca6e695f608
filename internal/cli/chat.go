package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var (
		threadID string
		sender   string
		targets  []string
	)

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send an out-of-band message to one or more agents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if threadID == "" {
				return fmt.Errorf("--thread is required")
			}
			if len(targets) == 0 {
				return fmt.Errorf("--to is required")
			}

			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			replies, err := app.office.SendChat(context.Background(), threadID, sender, args[0], targets)
			if err != nil {
				return err
			}

			for _, reply := range replies {
				fmt.Printf("%s: %s\n\n", reply.SenderID, reply.Body)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&threadID, "thread", "", "thread id")
	cmd.Flags().StringVar(&sender, "from", "operator", "sender id recorded on the message")
	cmd.Flags().StringSliceVar(&targets, "to", nil, "target agent ids, in reply order")
	return cmd
}
