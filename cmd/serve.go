package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lecturelab/quizforge/internal/llm"
	"github.com/lecturelab/quizforge/internal/mcq"
	"github.com/lecturelab/quizforge/internal/server"
	"github.com/lecturelab/quizforge/internal/transcribe"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server for transcription and question generation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		client, err := llm.New(cfg)
		if err != nil {
			return err
		}
		generator := mcq.New(client, cfg.Generator)

		transcriber, err := transcribe.New(cfg.Whisper)
		if err != nil {
			return err
		}

		zap.L().Info("configured backends",
			zap.String("llm_provider", cfg.LLM.Provider),
			zap.String("whisper_provider", cfg.Whisper.Provider),
		)

		return server.New(cfg, generator, transcriber).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
