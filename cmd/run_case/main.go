package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"med-eval/pkg/dataset"
	"med-eval/pkg/fhir"
	"med-eval/pkg/grading"
	"med-eval/pkg/llm"
	"med-eval/pkg/prompt"
	"med-eval/pkg/refsol"
	"med-eval/pkg/runner"
	"med-eval/pkg/session"
)

var (
	datasetPath string
	funcsPath   string
	fhirBase    string
	caseID      string
	provider    string
	model       string
	maxTurns    int
)

func main() {
	flag.StringVar(&datasetPath, "dataset", "test_data_v2.json", "Path to the case dataset JSON")
	flag.StringVar(&funcsPath, "funcs", "funcs_v1.json", "Path to the function catalog JSON")
	flag.StringVar(&fhirBase, "fhir-base", "http://localhost:8080/fhir", "FHIR server base URL")
	flag.StringVar(&caseID, "case", "", "Case ID to run (required)")
	flag.StringVar(&provider, "provider", "gemini", "LLM provider: gemini or anthropic")
	flag.StringVar(&model, "model", "gemini-3-flash-preview", "LLM model to use")
	flag.IntVar(&maxTurns, "max-turns", runner.DefaultMaxTurns, "Maximum assistant turns")
	flag.Parse()

	if caseID == "" {
		log.Fatal("-case is required")
	}

	_ = godotenv.Load()

	ctx := context.Background()

	backend := fhir.NewClient(fhirBase)
	if !backend.Verify(ctx) {
		log.Fatalf("FHIR server is unreachable at %s. Please recheck the server URL and ensure it is running, then rerun.", fhirBase)
	}

	cases, err := dataset.Load(datasetPath)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	var c *dataset.Case
	for _, candidate := range cases {
		if candidate.ID == caseID {
			c = candidate
			break
		}
	}
	if c == nil {
		log.Fatalf("Case %s not found in %s", caseID, datasetPath)
	}

	funcs, err := dataset.LoadCatalog(funcsPath)
	if err != nil {
		log.Fatalf("Failed to load function catalog: %v", err)
	}

	var client llm.Client
	if provider == "anthropic" {
		client = llm.NewAnthropicClient(model)
	} else {
		client, err = llm.NewGeminiClient(ctx, os.Getenv("GEMINI_API_KEY"), model)
		if err != nil {
			log.Fatalf("Failed to create LLM client: %v", err)
		}
	}

	initial, err := prompt.Initial(c, backend.Base(), funcs)
	if err != nil {
		log.Fatalf("Failed to build prompt: %v", err)
	}

	run := runner.New(client, session.NewController(session.NewExecutor(backend)), maxTurns)

	started := time.Now()
	conv, err := run.Run(ctx, initial)
	if err != nil {
		log.Printf("Conversation aborted: %v", err)
	}

	for _, m := range conv.History() {
		fmt.Printf("--- %s ---\n%s\n\n", m.Role, m.Content)
	}

	dispatcher := grading.NewDispatcher(refsol.NewRegistry(), backend)
	outcome := dispatcher.Grade(ctx, c, conv)

	answer, _ := conv.FinalAnswer()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Case:     %s\n", c.ID)
	fmt.Printf("Status:   %s\n", conv.Status())
	fmt.Printf("Answer:   %s\n", answer)
	fmt.Printf("Correct:  %t\n", outcome)
	fmt.Printf("Duration: %s\n", time.Since(started).Round(time.Millisecond))
}
