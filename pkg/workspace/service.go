// Package workspace serves stored benchmark runs for browsing and
// re-grading.
package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"med-eval/pkg/dataset"
	"med-eval/pkg/fhir"
	"med-eval/pkg/grading"
	"med-eval/pkg/session"
)

const runSuffix = ".run.json"

type ServiceConfig struct {
	DatasetPath string
	ResultsDir  string
	Model       string
}

type Service struct {
	Config  ServiceConfig
	Backend *fhir.Client
	Hub     *Hub

	dispatcher *grading.Dispatcher
	registry   *grading.Registry
	cases      map[string]*dataset.Case
}

func NewService(cfg ServiceConfig, backend *fhir.Client, registry *grading.Registry) (*Service, error) {
	cases, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*dataset.Case, len(cases))
	for _, c := range cases {
		byID[c.ID] = c
	}
	return &Service{
		Config:     cfg,
		Backend:    backend,
		Hub:        NewHub(),
		dispatcher: grading.NewDispatcher(registry, backend),
		registry:   registry,
		cases:      byID,
	}, nil
}

// ListCases returns every dataset case joined with its stored run, sorted
// by case ID for a stable order.
func (s *Service) ListCases(ctx context.Context) ([]*CaseView, error) {
	runs, err := s.loadRuns()
	if err != nil {
		return nil, err
	}

	var results []*CaseView
	for id, c := range s.cases {
		results = append(results, &CaseView{ID: id, Case: c, Run: runs[id]})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].ID < results[j].ID
	})
	return results, nil
}

// GetCase returns full details for one case, including its run record.
func (s *Service) GetCase(ctx context.Context, id string) (*CaseView, error) {
	c, ok := s.cases[id]
	if !ok {
		return nil, fmt.Errorf("case not found: %s", id)
	}
	v := &CaseView{ID: id, Case: c}
	run, err := s.loadRun(id)
	if err == nil {
		v.Run = run
	}
	return v, nil
}

// Grade re-grades the stored run for a case and rewrites the record. The
// conversation is restored from the persisted history, so the dispatcher
// replays exactly what the agent saw.
func (s *Service) Grade(ctx context.Context, id string) (*RunRecord, error) {
	c, ok := s.cases[id]
	if !ok {
		return nil, fmt.Errorf("case not found: %s", id)
	}
	run, err := s.loadRun(id)
	if err != nil {
		return nil, fmt.Errorf("no stored run for %s: %w", id, err)
	}

	conv := session.Restore(run.Status, run.History, run.FinalAnswer)
	run.Correct = s.dispatcher.Grade(ctx, c, conv)

	if err := s.SaveRun(run); err != nil {
		return nil, err
	}
	return run, nil
}

// SaveRun writes a run record to the results directory.
func (s *Service) SaveRun(run *RunRecord) error {
	bytes, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(s.Config.ResultsDir, run.CaseID+runSuffix)
	if err := os.WriteFile(path, bytes, 0644); err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}
	return nil
}

func (s *Service) loadRuns() (map[string]*RunRecord, error) {
	entries, err := os.ReadDir(s.Config.ResultsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*RunRecord{}, nil
		}
		return nil, err
	}

	runs := make(map[string]*RunRecord)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), runSuffix) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), runSuffix)
		if run, err := s.loadRun(id); err == nil {
			runs[id] = run
		}
	}
	return runs, nil
}

func (s *Service) loadRun(id string) (*RunRecord, error) {
	content, err := os.ReadFile(filepath.Join(s.Config.ResultsDir, id+runSuffix))
	if err != nil {
		return nil, err
	}
	var run RunRecord
	if err := json.Unmarshal(content, &run); err != nil {
		return nil, fmt.Errorf("corrupt run record for %s: %w", id, err)
	}
	return &run, nil
}
