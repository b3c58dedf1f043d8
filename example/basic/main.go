package main

import (
	"context"
	"fmt"
	"log"

	"github.com/docchat/docchat"
	"github.com/docchat/docchat/llm"
	"github.com/docchat/docchat/model"
	"github.com/docchat/docchat/store/memory"
)

const sampleContent = `Alice in Wonderland is a classic novel written by Lewis Carroll.

Alice follows a white rabbit down a rabbit hole and finds herself in a strange world.
She meets many curious characters, including the Cheshire Cat and the Mad Hatter.

The Queen of Hearts rules the land with dramatic commands and croquet games.
Alice eventually wakes up and realizes the whole adventure was a dream.`

func main() {
	ctx := context.Background()

	// In-memory store and a deterministic demo model, no external services
	system := docchat.NewDocChat(memory.NewStore(), llm.NewDemoClient(64), model.DefaultProcessingConfig())

	fmt.Println("Ingesting document...")
	result := system.ProcessDocument(ctx, sampleContent, "alice.txt")
	if result.Status != model.StatusSuccess {
		log.Fatalf("Failed to process document: %s", result.Message)
	}
	fmt.Printf("Created %d chunks\n", result.ChunksCreated)

	// Search the primary collection
	response, err := system.Search(ctx, model.SearchRequest{
		Query: "Who does Alice meet in Wonderland?",
		TopK:  3,
	})
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}

	fmt.Printf("\nFound %d results (search id %s):\n", response.TotalResults, response.SearchID)
	for i, hit := range response.Results {
		fmt.Printf("\n--- Result %d ---\n", i+1)
		fmt.Printf("Score: %.4f\n", hit.Score)
		fmt.Printf("Collection: %s\n", hit.Collection)
		fmt.Printf("Content: %s\n", hit.Content)
	}

	// Reuse the cached search results for the answer
	answer, err := system.Ask(ctx, model.AskRequest{
		Question: "Who does Alice meet in Wonderland?",
		SearchID: response.SearchID,
	})
	if err != nil {
		log.Fatalf("Failed to ask: %v", err)
	}

	fmt.Printf("\nAnswer: %s\n", answer.Answer)
	fmt.Printf("Sources: %v\n", answer.Sources)

	fmt.Println("\nBasic example completed successfully!")
}
