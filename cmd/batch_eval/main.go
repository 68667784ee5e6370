package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"med-eval/pkg/dataset"
	"med-eval/pkg/fhir"
	"med-eval/pkg/grading"
	"med-eval/pkg/llm"
	"med-eval/pkg/prompt"
	"med-eval/pkg/refsol"
	"med-eval/pkg/runner"
	"med-eval/pkg/session"
	"med-eval/pkg/workspace"
)

func main() {
	datasetPath := flag.String("dataset", "test_data_v2.json", "Path to the case dataset JSON")
	funcsPath := flag.String("funcs", "funcs_v1.json", "Path to the function catalog JSON")
	resultsDir := flag.String("results-dir", "results", "Directory for run records")
	fhirBase := flag.String("fhir-base", "http://localhost:8080/fhir", "FHIR server base URL")
	provider := flag.String("provider", "gemini", "LLM provider: gemini or anthropic")
	model := flag.String("model", "gemini-3-flash-preview", "LLM model to use")
	maxTurns := flag.Int("max-turns", runner.DefaultMaxTurns, "Maximum assistant turns per conversation")
	concurrency := flag.Int("concurrency", 10, "Number of concurrent workers")
	tasks := flag.String("tasks", "", "Comma-separated task families to run (e.g. task1,task3); empty runs all")
	force := flag.Bool("force", false, "Re-run cases that already have a run record")
	flag.Parse()

	_ = godotenv.Load()

	ctx := context.Background()

	backend := fhir.NewClient(*fhirBase)
	if !backend.Verify(ctx) {
		log.Fatalf("FHIR server is unreachable at %s. Please recheck the server URL and ensure it is running, then rerun.", *fhirBase)
	}

	client, err := newLLMClient(ctx, *provider, *model)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	cases, err := dataset.Load(*datasetPath)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	if *tasks != "" {
		cases = dataset.FilterTasks(cases, strings.Split(*tasks, ","))
		log.Printf("Filtered dataset to tasks: %s (%d cases remain)", *tasks, len(cases))
	}

	funcs, err := dataset.LoadCatalog(*funcsPath)
	if err != nil {
		log.Fatalf("Failed to load function catalog: %v", err)
	}

	if err := os.MkdirAll(*resultsDir, 0755); err != nil {
		log.Fatalf("Failed to create results dir: %v", err)
	}

	dispatcher := grading.NewDispatcher(refsol.NewRegistry(), backend)

	var mu sync.Mutex
	var processed, correct int

	paramsChan := make(chan *dataset.Case, len(cases))
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()

		exec := session.NewExecutor(backend)
		run := runner.New(client, session.NewController(exec), *maxTurns)

		for c := range paramsChan {
			recordPath := filepath.Join(*resultsDir, c.ID+".run.json")
			if !*force {
				if _, err := os.Stat(recordPath); err == nil {
					log.Printf("[%s] Run record exists, skipping (use -force to re-run)", c.ID)
					continue
				}
			}

			initial, err := prompt.Initial(c, backend.Base(), funcs)
			if err != nil {
				log.Printf("[%s] Failed to build prompt: %v", c.ID, err)
				continue
			}

			log.Printf("[%s] Running...", c.ID)
			started := time.Now()

			runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			conv, err := run.Run(runCtx, initial)
			if err != nil {
				log.Printf("[%s] Conversation aborted: %v", c.ID, err)
			}

			outcome := dispatcher.Grade(runCtx, c, conv)
			cancel()

			answer, _ := conv.FinalAnswer()
			record := &workspace.RunRecord{
				RunID:       uuid.NewString(),
				CaseID:      c.ID,
				Model:       *model,
				Status:      conv.Status(),
				History:     conv.History(),
				FinalAnswer: answer,
				Correct:     outcome,
				Turns:       countAssistantTurns(conv),
				StartedAt:   started,
				DurationMS:  time.Since(started).Milliseconds(),
			}
			if err := saveRecord(recordPath, record); err != nil {
				log.Printf("[%s] Failed to save run record: %v", c.ID, err)
				continue
			}

			mu.Lock()
			processed++
			if outcome {
				correct++
			}
			mu.Unlock()
			log.Printf("[%s] Done: status=%s correct=%t", c.ID, conv.Status(), outcome)
		}
	}

	log.Printf("Starting %d workers over %d cases...", *concurrency, len(cases))
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go worker()
	}

	for _, c := range cases {
		paramsChan <- c
	}
	close(paramsChan)

	wg.Wait()
	log.Printf("Done. Processed %d cases, %d correct.", processed, correct)
}

func newLLMClient(ctx context.Context, provider, model string) (llm.Client, error) {
	switch provider {
	case "anthropic":
		return llm.NewAnthropicClient(model), nil
	default:
		return llm.NewGeminiClient(ctx, os.Getenv("GEMINI_API_KEY"), model)
	}
}

func saveRecord(path string, record *workspace.RunRecord) error {
	bytes, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, bytes, 0644)
}

func countAssistantTurns(conv *session.Conversation) int {
	var n int
	for _, m := range conv.History() {
		if m.Role == session.RoleAssistant {
			n++
		}
	}
	return n
}
