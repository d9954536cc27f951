/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/docuchat-be/service"
	"github.com/tieubaoca/docuchat-be/types"
	"github.com/tieubaoca/docuchat-be/utils"
)

var (
	ingestFilePath string
	ingestReinit   bool
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a single PDF document into the vector collection",
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
		if ingestReinit {
			if err := store.Reset(ctx); err != nil {
				log.Fatalf("Failed to reset collection: %v", err)
			}
			log.Println("Collection reset")
		}

		chunker := service.NewChunker(types.DocumentServiceConfig{
			MaxChunkSize: cfg.ChunkSize,
			OverlapSize:  cfg.ChunkOverlap,
		})
		ingestService := service.NewIngestService(service.NewPDFService(), chunker, embedder, store)

		stagedPath, err := utils.CopyFileWithTimestamp(ingestFilePath, cfg.UploadDir)
		if err != nil {
			log.Fatalf("Failed to stage document: %v", err)
		}

		result, err := ingestService.Ingest(ctx, stagedPath)
		if err != nil {
			log.Fatalf("Failed to ingest %s: %v", ingestFilePath, err)
		}
		if result.Degenerate {
			log.Printf("Ingested %s: no extractable text, stored nothing", result.DocumentID)
			return
		}
		log.Printf("Ingested %s: %d segments stored", result.DocumentID, result.Segments)

		if err := finalizeDocument(ctx, archive, stagedPath); err != nil {
			log.Printf("Warning: %s ingested but not finalized: %v", result.DocumentID, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVarP(&ingestFilePath, "file", "f", "", "path to the PDF document")
	ingestCmd.Flags().BoolVar(&ingestReinit, "reinit", false, "drop and recreate the collection first")
	ingestCmd.MarkFlagRequired("file")
}
