package main

import (
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lecturelab/quizforge/internal/llm"
	"github.com/lecturelab/quizforge/internal/mcq"
)

var (
	generateFile  string
	generateCount int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate multiple-choice questions from a text file",
	Long:  "Reads text from --file (or stdin when --file is '-') and prints generated questions as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("generate"); err != nil {
			return err
		}

		var data []byte
		var err error
		if generateFile == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(generateFile)
		}
		if err != nil {
			return eris.Wrap(err, "read input text")
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			return eris.New("input text is empty")
		}

		n := generateCount
		if n <= 0 {
			n = cfg.Generator.DefaultQuestions
		}
		if n > cfg.Generator.MaxQuestions {
			n = cfg.Generator.MaxQuestions
		}

		client, err := llm.New(cfg)
		if err != nil {
			return err
		}

		questions, err := mcq.New(client, cfg.Generator).Generate(ctx, text, n)
		if err != nil {
			return err
		}
		zap.L().Info("generation complete", zap.Int("questions", len(questions)))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(questions)
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateFile, "file", "-", "text file to read ('-' for stdin)")
	generateCmd.Flags().IntVar(&generateCount, "count", 0, "number of questions (default from config)")
	rootCmd.AddCommand(generateCmd)
}
