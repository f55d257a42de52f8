// Command validate checks the integrity of the hazard fixtures written by
// genmock. It re-runs every request against the synthetic generator,
// verifies the fixture reports match, checks event and yearly invariants,
// and compares the yearly CSV tables when a CSV directory is given.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -requests-json data/mock/analysis_requests.json \
//	  -reports-json data/mock/hazard_reports.json \
//	  -csv-dir data/mock/yearly
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/climate-hazard-etl/internal/domain"
	"github.com/couchcryptid/climate-hazard-etl/internal/synth"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	requestsJSON := flag.String("requests-json", "", "path to the analysis request fixture")
	reportsJSON := flag.String("reports-json", "", "path to the report fixture")
	csvDir := flag.String("csv-dir", "", "optional directory of yearly CSV tables")
	flag.Parse()

	if *requestsJSON == "" || *reportsJSON == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*requestsJSON, *reportsJSON, *csvDir); code != 0 {
		os.Exit(code)
	}
}

func run(requestsPath, reportsPath, csvDir string) int {
	// Set a fixed clock matching genmock so report timestamps reproduce.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, time.January, 1, 6, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	fmt.Println("=== Climate Hazard Fixture Validation ===")
	fmt.Println()

	requests, err := loadJSON[domain.AnalysisRequest](requestsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load requests: %v\n", err)
		return 1
	}
	reports, err := loadJSON[domain.AnalysisReport](reportsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load reports: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRequests(requests, reports),
		validateReproduction(requests, reports),
		validateInvariants(reports),
	}
	if csvDir != "" {
		phases = append(phases, validateCSV(csvDir, reports))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d requests, %d reports, %d events\n", len(requests), len(reports), countEvents(reports))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func countEvents(reports []domain.AnalysisReport) int {
	n := 0
	for _, r := range reports {
		for _, h := range r.Hazards {
			n += len(h.Events)
		}
	}
	return n
}

// ── Phase 1: requests ──

func validateRequests(requests []domain.AnalysisRequest, reports []domain.AnalysisReport) *phase {
	p := &phase{name: "Phase 1: Request integrity"}
	if len(requests) != len(reports) {
		p.errorf("%d requests but %d reports", len(requests), len(reports))
	}
	seen := map[string]bool{}
	for i, req := range requests {
		if err := req.Validate(); err != nil {
			p.errorf("request %d: %v", i, err)
		}
		if seen[req.ID] {
			p.errorf("request %d: duplicate id %q", i, req.ID)
		}
		seen[req.ID] = true
		if _, ok := domain.PresetRegion(req.Region.Name); !ok {
			p.errorf("request %d: region %q is not a preset", i, req.Region.Name)
		}
	}
	return p
}

// ── Phase 2: reproduction ──

func validateReproduction(requests []domain.AnalysisRequest, reports []domain.AnalysisReport) *phase {
	p := &phase{name: "Phase 2: Report reproduction"}
	byRequest := make(map[string]domain.AnalysisReport, len(reports))
	for _, r := range reports {
		byRequest[r.RequestID] = r
	}

	gen := synth.NewGenerator()
	for _, req := range requests {
		want, ok := byRequest[req.ID]
		if !ok {
			p.errorf("request %s: no report", req.ID)
			continue
		}
		got, err := reproduce(gen, req)
		if err != nil {
			p.errorf("request %s: %v", req.ID, err)
			continue
		}
		if diff := cmp.Diff(want, got); diff != "" {
			p.errorf("request %s: report mismatch (-fixture +recomputed):\n%s", req.ID, diff)
		}
	}
	return p
}

func reproduce(gen *synth.Generator, req domain.AnalysisRequest) (domain.AnalysisReport, error) {
	region, ok := domain.PresetRegion(req.Region.Name)
	if !ok {
		return domain.AnalysisReport{}, fmt.Errorf("unknown region %q", req.Region.Name)
	}
	region.GeoSource = domain.GeoSourcePreset

	observations, err := gen.Observations(context.Background(), region, req.StartYear, req.EndYear)
	if err != nil {
		return domain.AnalysisReport{}, err
	}
	hazards := make([]domain.HazardReport, 0, len(req.Kinds()))
	for _, kind := range req.Kinds() {
		h, err := domain.AnalyzeDetailed(observations, kind)
		if err != nil {
			return domain.AnalysisReport{}, fmt.Errorf("%s: %w", kind, err)
		}
		hazards = append(hazards, h)
	}
	return domain.NewAnalysisReport(req, region, observations, hazards), nil
}

// ── Phase 3: invariants ──

func validateInvariants(reports []domain.AnalysisReport) *phase {
	p := &phase{name: "Phase 3: Event and yearly invariants"}
	for _, r := range reports {
		for _, h := range r.Hazards {
			label := fmt.Sprintf("%s/%s", r.Region.Name, h.Kind)
			checkEvents(p, label, h)
			checkYearly(p, label, r, h)
		}
	}
	return p
}

func checkEvents(p *phase, label string, h domain.HazardReport) {
	for i, e := range h.Events {
		if e.Intensity < 1 || e.Intensity > 10 {
			p.errorf("%s event %d: intensity %g outside [1, 10]", label, i, e.Intensity)
		}
		if e.Duration < 1 {
			p.errorf("%s event %d: duration %d", label, i, e.Duration)
		}
		if !e.EndDate.Equal(e.StartDate.AddDays(e.Duration - 1)) {
			p.errorf("%s event %d: %s..%s does not span %d days", label, i, e.StartDate, e.EndDate, e.Duration)
		}
		if i > 0 && !e.StartDate.After(h.Events[i-1].EndDate) {
			p.errorf("%s event %d: overlaps or precedes event %d", label, i, i-1)
		}
	}
	if h.Analysis.TotalEvents != len(h.Events) {
		p.errorf("%s: total_events %d but %d events", label, h.Analysis.TotalEvents, len(h.Events))
	}
}

func checkYearly(p *phase, label string, r domain.AnalysisReport, h domain.HazardReport) {
	if r.StartDate == nil || r.EndDate == nil {
		p.errorf("%s: report has no date range", label)
		return
	}
	wantYears := r.EndDate.Year() - r.StartDate.Year() + 1
	if len(h.Analysis.YearlyData) != wantYears {
		p.errorf("%s: %d yearly rows, want %d", label, len(h.Analysis.YearlyData), wantYears)
	}
	total := 0
	for i, y := range h.Analysis.YearlyData {
		total += y.Frequency
		if i > 0 && y.Year != h.Analysis.YearlyData[i-1].Year+1 {
			p.errorf("%s: year %d follows %d", label, y.Year, h.Analysis.YearlyData[i-1].Year)
		}
		if y.Frequency == 0 && (y.Intensity != 0 || y.Duration != 0) {
			p.errorf("%s: year %d has no events but nonzero averages", label, y.Year)
		}
	}
	if total != h.Analysis.TotalEvents {
		p.errorf("%s: yearly frequencies sum to %d, want %d", label, total, h.Analysis.TotalEvents)
	}
}

// ── Phase 4: CSV parity ──

func validateCSV(dir string, reports []domain.AnalysisReport) *phase {
	p := &phase{name: "Phase 4: Yearly CSV parity"}
	for _, r := range reports {
		slug := strings.ToLower(strings.NewReplacer(", ", "_", " ", "_").Replace(r.Region.Name))
		for _, h := range r.Hazards {
			path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", slug, h.Kind))
			got, err := os.ReadFile(path)
			if err != nil {
				p.errorf("%s: %v", path, err)
				continue
			}
			var want bytes.Buffer
			if err := domain.WriteYearlyCSV(&want, h.Analysis.YearlyData); err != nil {
				p.errorf("%s: render: %v", path, err)
				continue
			}
			if diff := cmp.Diff(want.String(), string(got)); diff != "" {
				p.errorf("%s: csv mismatch (-want +got):\n%s", path, diff)
			}
		}
	}
	return p
}
