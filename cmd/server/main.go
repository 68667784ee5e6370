package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"med-eval/pkg/fhir"
	"med-eval/pkg/refsol"
	"med-eval/pkg/workspace"
)

func main() {
	listen := flag.String("listen", ":8090", "Address to listen on")
	datasetPath := flag.String("dataset", "test_data_v2.json", "Path to the case dataset JSON")
	resultsDir := flag.String("results-dir", "results", "Directory containing run records")
	fhirBase := flag.String("fhir-base", "http://localhost:8080/fhir", "FHIR server base URL")
	model := flag.String("model", "gemini-3-flash-preview", "Model name shown in the viewer")
	staticDir := flag.String("static-dir", "./static", "Directory with the viewer UI")
	flag.Parse()

	_ = godotenv.Load()

	backend := fhir.NewClient(*fhirBase)

	svc, err := workspace.NewService(workspace.ServiceConfig{
		DatasetPath: *datasetPath,
		ResultsDir:  *resultsDir,
		Model:       *model,
	}, backend, refsol.NewRegistry())
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}

	go func() {
		if err := svc.WatchResults(context.Background()); err != nil && err != context.Canceled {
			log.Printf("Results watcher stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	svc.RegisterRoutes(mux)

	// Serve the viewer UI; fall back to index.html for SPA routing.
	fs := http.FileServer(http.Dir(*staticDir))
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := *staticDir + r.URL.Path
		if _, err := os.Stat(path); err == nil && r.URL.Path != "/" {
			fs.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, *staticDir+"/index.html")
	}))

	log.Printf("Server starting on %s", *listen)
	log.Fatal(http.ListenAndServe(*listen, mux))
}
