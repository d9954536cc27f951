/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/docuchat-be/handler"
	"github.com/tieubaoca/docuchat-be/service"
	"github.com/tieubaoca/docuchat-be/types"
)

// startServerCmd represents the startServer command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the document chat server",
	Long:  `Starts the HTTP server that handles document uploads and chat queries`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		// Initialize services
		embedder := newEmbedder(cfg)
		store, err := newVectorStore(cfg, embedder.Model())
		if err != nil {
			log.Fatalf("Failed to open vector store: %v", err)
		}
		generator, err := newGenerator(cfg)
		if err != nil {
			log.Fatalf("Failed to create generator: %v", err)
		}
		archive, err := newArchive(cfg)
		if err != nil {
			log.Fatalf("Failed to create archive: %v", err)
		}

		pdfService := service.NewPDFService()
		chunker := service.NewChunker(types.DocumentServiceConfig{
			MaxChunkSize: cfg.ChunkSize,
			OverlapSize:  cfg.ChunkOverlap,
		})
		ingestService := service.NewIngestService(pdfService, chunker, embedder, store)
		ragService := service.NewRAGService(embedder, store, generator, cfg.RetrievalK, cfg.MaxPromptTokens)
		sessions := service.NewSessionManager(cfg.MaxHistory)
		wsService := service.NewWebSocketService(ragService, sessions)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		uploadHandler := handler.NewUploadHandler(cfg.UploadDir, ingestService, archive)
		chatHandler := handler.NewChatHandler(ragService, sessions)
		searchHandler := handler.NewSearchHandler(ragService)
		documentHandler := handler.NewDocumentHandler(cfg.UploadDir)

		// Setup Gin router
		router := gin.Default()

		// Apply global middleware
		router.Use(corsHandler.CorsMiddleware)

		apiV1 := router.Group("/api/v1")
		{
			apiV1.POST("/chat/ask", chatHandler.HandleAsk)
			apiV1.POST("/chat/reset", chatHandler.HandleReset)
			apiV1.POST("/documents/search", searchHandler.HandleSearch)
			apiV1.POST("/documents/upload", uploadHandler.UploadDocumentHandler)
			apiV1.GET("/pdf", documentHandler.ServeDocument)
		}
		router.GET("/ws/chat", gin.WrapF(wsService.HandleChat))
		router.GET("/health", gin.WrapH(wsService.Health()))

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
