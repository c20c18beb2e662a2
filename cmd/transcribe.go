package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/lecturelab/quizforge/internal/transcribe"
)

var transcribeJSON bool

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <media-file>",
	Short: "Transcribe a media file and print the transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("transcribe"); err != nil {
			return err
		}

		path := args[0]
		if !transcribe.SupportedExtension(path) {
			return eris.Errorf("unsupported file type %q", path)
		}

		transcriber, err := transcribe.New(cfg.Whisper)
		if err != nil {
			return err
		}

		res, err := transcriber.Transcribe(ctx, path)
		if err != nil {
			return err
		}

		if transcribeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		fmt.Println(res.Text)
		return nil
	},
}

func init() {
	transcribeCmd.Flags().BoolVar(&transcribeJSON, "json", false, "print the full result as JSON with segments")
	rootCmd.AddCommand(transcribeCmd)
}
