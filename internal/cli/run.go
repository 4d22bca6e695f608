package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/officedhq/officed/internal/office"
)

func newRunCmd() *cobra.Command {
	var (
		threadID   string
		title      string
		attachPath string
	)

	cmd := &cobra.Command{
		Use:   "run <directive>",
		Short: "Run one workflow from the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if threadID == "" {
				if title == "" {
					title = args[0]
				}
				thread, err := app.threads.Create(title, "", nil)
				if err != nil {
					return fmt.Errorf("creating thread: %w", err)
				}
				threadID = thread.ID
				log.Info().Str("thread", threadID).Msg("created thread")
			}

			var attachment *office.Attachment
			if attachPath != "" {
				data, err := os.ReadFile(attachPath)
				if err != nil {
					return fmt.Errorf("reading attachment: %w", err)
				}
				contentType := mime.TypeByExtension(filepath.Ext(attachPath))
				if contentType == "" {
					contentType = "application/octet-stream"
				}
				attachment = &office.Attachment{
					Name:        filepath.Base(attachPath),
					ContentType: contentType,
					Data:        data,
				}
			}

			report, err := app.office.StartWorkflow(context.Background(), threadID, args[0], attachment)
			if err != nil {
				return err
			}

			fmt.Println(report.Body)
			return nil
		},
	}

	cmd.Flags().StringVar(&threadID, "thread", "", "existing thread id (default: create a new thread)")
	cmd.Flags().StringVar(&title, "title", "", "title for the created thread")
	cmd.Flags().StringVar(&attachPath, "attach", "", "file to attach to the run")
	return cmd
}
