package main

import (
	"context"
	"fmt"
	"log"

	"github.com/docchat/docchat"
	"github.com/docchat/docchat/helper"
	"github.com/docchat/docchat/llm"
	"github.com/docchat/docchat/model"
	"github.com/docchat/docchat/store/pgvector"
)

const sampleContent = `Chapter 1: The Expedition

The research team started their expedition in early spring. First, they mapped the northern valley and collected soil samples from twelve sites. The process required careful documentation of every sample, including location, depth, and moisture content. Because the valley floods in late spring, the team had to finish the northern survey within three weeks.

Chapter 2: The Findings

The soil analysis revealed unusually high mineral concentrations near the river delta. However, the samples from the higher slopes showed typical composition for the region. The team concluded that sediment deposits from the river explained the difference. Furthermore, the mineral pattern matched historical records of mining activity upstream.`

func main() {
	ctx := context.Background()

	// Start a test PostgreSQL container with pgvector
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}
	db := helper.NewDatabase("docchat", dbConfig, nil)
	defer db.Instance.Close()

	service := llm.NewDemoClient(64)
	vectorStore, err := pgvector.NewStore(db, 64)
	if err != nil {
		log.Fatalf("Failed to create store: %v", err)
	}

	system := docchat.NewDocChat(vectorStore, service, model.DefaultProcessingConfig())

	fmt.Println("Ingesting document...")
	result := system.ProcessDocument(ctx, sampleContent, "expedition.txt")
	if result.Status != model.StatusSuccess {
		log.Fatalf("Failed to process document: %s", result.Message)
	}
	fmt.Printf("Created %d chunks\n", result.ChunksCreated)

	// Build the logical summary tier
	hierarchical := system.ProcessDocumentHierarchically(ctx, "expedition.txt")
	fmt.Printf("\n%s\n", hierarchical.Message)
	for _, group := range hierarchical.Groups {
		fmt.Printf("  %s [%s] %.1f:1 (%d words)\n",
			group.OriginalGroup.GroupID, group.StrategyUsed, group.CompressionRatio, group.OriginalGroup.WordCount)
	}

	// Build the paragraph summary tier
	paragraphs := system.ProcessDocumentParagraphs(ctx, "expedition.txt")
	fmt.Printf("\n%s\n", paragraphs.Message)

	// Ask with the enhanced strategy, combining chunks and summaries
	answer, err := system.Ask(ctx, model.AskRequest{
		Question:       "What did the team find near the river delta?",
		TopK:           3,
		SearchStrategy: model.StrategyEnhanced,
	})
	if err != nil {
		log.Fatalf("Failed to ask: %v", err)
	}

	fmt.Printf("\nAnswer: %s\n", answer.Answer)
	fmt.Printf("Sources: %v\n", answer.Sources)

	status, err := system.Status(ctx)
	if err != nil {
		log.Fatalf("Failed to get status: %v", err)
	}
	fmt.Printf("\nCollections: %d, documents: %d\n", status.Collections, status.Documents)

	fmt.Println("\nHierarchical example completed successfully!")
}
