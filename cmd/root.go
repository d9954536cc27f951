/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tieubaoca/docuchat-be/config"
	"github.com/tieubaoca/docuchat-be/database"
	"github.com/tieubaoca/docuchat-be/service"
	"github.com/tieubaoca/docuchat-be/types"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docuchat-be",
	Short: "Document chat backend",
	Long: `docuchat-be ingests PDF documents into a vector collection and
answers questions about them with retrieval-augmented generation.

Use "ingest" or "batch-ingest" to feed documents into the collection and
"start" to serve the chat API.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file")
}

// initConfig reads in ENV variables if set.
func initConfig() {
	viper.AutomaticEnv() // read in environment variables that match
}

func loadConfig() (*config.Config, error) {
	return config.LoadConfig(cfgFile)
}

// newVectorStore opens the collection, verifying the embedder identity
// recorded with it. The "memory" host selects the in-process store for
// local runs.
func newVectorStore(cfg *config.Config, embedderModel string) (database.VectorStore, error) {
	if cfg.WeaviateStore.Host == "memory" {
		return database.NewMemoryStore(), nil
	}
	return database.NewWeaviateStore(cfg.WeaviateStore, embedderModel)
}

func newEmbedder(cfg *config.Config) service.Embedder {
	return service.NewOpenAIEmbedder(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.EmbeddingModel)
}

func newGenerator(cfg *config.Config) (service.Generator, error) {
	switch cfg.Provider {
	case "gemini":
		return service.NewGeminiService(cfg.GeminiAPIKeys, cfg.Model)
	default:
		return service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model), nil
	}
}

// newArchive returns nil when no archive is configured; ingested staging
// copies are then kept on disk.
func newArchive(cfg *config.Config) (service.Archive, error) {
	if cfg.Archive.Endpoint == "" {
		return nil, nil
	}
	return service.NewMinioArchive(cfg.Archive)
}

// finalizeDocument performs the caller-side duties after a successful
// ingestion: archive the staged copy, then remove it. Failures here are
// reported distinctly and never undo the stored segments.
func finalizeDocument(ctx context.Context, archive service.Archive, stagedPath string) error {
	if archive == nil {
		return nil
	}
	if err := archive.Store(ctx, stagedPath, filepath.Base(stagedPath)); err != nil {
		return err
	}
	if err := os.Remove(stagedPath); err != nil {
		return fmt.Errorf("%w: %v", types.ErrCleanup, err)
	}
	return nil
}
