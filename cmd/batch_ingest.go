/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/docuchat-be/service"
	"github.com/tieubaoca/docuchat-be/types"
	"github.com/tieubaoca/docuchat-be/utils"
)

var (
	batchIngestDir      string
	batchIngestParallel int
	batchIngestReinit   bool
)

// batchIngestCmd represents the batch-ingest command
var batchIngestCmd = &cobra.Command{
	Use:   "batch-ingest",
	Short: "Ingest every PDF document in a directory",
	Long: `Ingests every PDF in the given directory, several documents in
parallel. Each document is its own transaction: one failing never stops
the others.`,
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
		archive, err := newArchive(cfg)
		if err != nil {
			log.Fatalf("Failed to create archive: %v", err)
		}

		ctx := context.Background()
		if batchIngestReinit {
			if err := store.Reset(ctx); err != nil {
				log.Fatalf("Failed to reset collection: %v", err)
			}
			log.Println("Collection reset")
		}

		entries, err := os.ReadDir(batchIngestDir)
		if err != nil {
			log.Fatalf("Failed to read directory %s: %v", batchIngestDir, err)
		}
		var staged []string
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
				continue
			}
			stagedPath, err := utils.CopyFileWithTimestamp(filepath.Join(batchIngestDir, entry.Name()), cfg.UploadDir)
			if err != nil {
				log.Printf("Failed to stage %s: %v", entry.Name(), err)
				continue
			}
			staged = append(staged, stagedPath)
		}
		if len(staged) == 0 {
			log.Println("No PDF documents found")
			return
		}

		chunker := service.NewChunker(types.DocumentServiceConfig{
			MaxChunkSize: cfg.ChunkSize,
			OverlapSize:  cfg.ChunkOverlap,
		})
		ingestService := service.NewIngestService(service.NewPDFService(), chunker, embedder, store)

		log.Printf("Ingesting %d documents, %d in parallel", len(staged), batchIngestParallel)
		ingestService.IngestBatch(ctx, staged, batchIngestParallel, func(path string, result types.IngestResult, err error) {
			if err != nil {
				log.Printf("Failed to ingest %s: %v", result.DocumentID, err)
				return
			}
			if result.Degenerate {
				log.Printf("Ingested %s: no extractable text, stored nothing", result.DocumentID)
				return
			}
			log.Printf("Ingested %s: %d segments stored", result.DocumentID, result.Segments)
			if err := finalizeDocument(ctx, archive, path); err != nil {
				log.Printf("Warning: %s ingested but not finalized: %v", result.DocumentID, err)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(batchIngestCmd)
	batchIngestCmd.Flags().StringVarP(&batchIngestDir, "directory", "d", "", "directory containing PDF documents")
	batchIngestCmd.Flags().IntVarP(&batchIngestParallel, "parallel", "p", 2, "documents ingested concurrently")
	batchIngestCmd.Flags().BoolVar(&batchIngestReinit, "reinit", false, "drop and recreate the collection first")
	batchIngestCmd.MarkFlagRequired("directory")
}
