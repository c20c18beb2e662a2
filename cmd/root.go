package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lecturelab/quizforge/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "quizforge",
	Short: "Turn lecture recordings into multiple-choice quizzes",
	Long:  "Transcribes lecture audio and video with whisper.cpp and generates multiple-choice questions from the transcript via a local LLM.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
