/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/docuchat-be/service"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-shot question against the ingested documents",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		embedder := newEmbedder(cfg)
		store, err := newVectorStore(cfg, embedder.Model())
		if err != nil {
			log.Fatalf("Failed to open vector store: %v", err)
		}
		generator, err := newGenerator(cfg)
		if err != nil {
			log.Fatalf("Failed to create generator: %v", err)
		}

		ragService := service.NewRAGService(embedder, store, generator, cfg.RetrievalK, cfg.MaxPromptTokens)
		session := service.NewChatSession("cli", cfg.MaxHistory)

		answer, err := ragService.Answer(context.Background(), strings.Join(args, " "), session)
		if err != nil {
			log.Fatalf("Failed to answer: %v", err)
		}

		fmt.Println(answer.Content)
		for _, source := range answer.Sources {
			fmt.Printf("  - %s #%d\n", source.DocumentID, source.Index)
		}
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
