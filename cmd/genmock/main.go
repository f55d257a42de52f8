// Command genmock generates analysis request and report fixtures for every
// preset region from the synthetic climate generator. Reports are produced
// with the domain package itself so fixtures match real pipeline output.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -start 2000 -end 2019 \
//	  -requests-out data/mock/analysis_requests.json \
//	  -reports-out data/mock/hazard_reports.json \
//	  -csv-dir data/mock/yearly
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/climate-hazard-etl/internal/domain"
	"github.com/couchcryptid/climate-hazard-etl/internal/synth"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	startYear := flag.Int("start", 2000, "first year of the synthetic series")
	endYear := flag.Int("end", 2019, "last year of the synthetic series")
	requestsOut := flag.String("requests-out", "", "output path for the analysis request fixture")
	reportsOut := flag.String("reports-out", "", "output path for the report fixture")
	csvDir := flag.String("csv-dir", "", "optional directory for per-region yearly CSV tables")
	flag.Parse()

	if *requestsOut == "" || *reportsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -requests-out, -reports-out")
	}

	// Set a fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, time.January, 1, 6, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	kinds := make([]string, 0, len(domain.HazardKinds()))
	for _, k := range domain.HazardKinds() {
		kinds = append(kinds, string(k))
	}

	gen := synth.NewGenerator()
	regions := domain.PresetRegions()
	requests := make([]domain.AnalysisRequest, 0, len(regions))
	reports := make([]domain.AnalysisReport, 0, len(regions))

	for i, region := range regions {
		req := domain.AnalysisRequest{
			ID:          fmt.Sprintf("mock-%d", i),
			Region:      domain.Region{Name: region.Name},
			HazardTypes: kinds,
			StartYear:   *startYear,
			EndYear:     *endYear,
		}
		requests = append(requests, req)

		report, err := analyze(gen, req, region)
		if err != nil {
			return fmt.Errorf("analyzing %s: %w", region.Name, err)
		}
		reports = append(reports, report)
		log.Printf("%s: %d observations", region.Name, report.ObservationCount)

		if *csvDir != "" {
			if err := writeCSVs(*csvDir, report); err != nil {
				return fmt.Errorf("writing csv for %s: %w", region.Name, err)
			}
		}
	}

	if err := writeJSON(*requestsOut, requests); err != nil {
		return fmt.Errorf("writing request fixture: %w", err)
	}
	log.Printf("wrote request fixture: %s", *requestsOut)

	if err := writeJSON(*reportsOut, reports); err != nil {
		return fmt.Errorf("writing report fixture: %w", err)
	}
	log.Printf("wrote report fixture: %s", *reportsOut)

	printStats(reports)
	return nil
}

func analyze(gen *synth.Generator, req domain.AnalysisRequest, region domain.Region) (domain.AnalysisReport, error) {
	region.GeoSource = domain.GeoSourcePreset
	observations, err := gen.Observations(context.Background(), region, req.StartYear, req.EndYear)
	if err != nil {
		return domain.AnalysisReport{}, err
	}

	hazards := make([]domain.HazardReport, 0, len(req.HazardTypes))
	for _, kind := range req.Kinds() {
		h, err := domain.AnalyzeDetailed(observations, kind)
		if err != nil {
			return domain.AnalysisReport{}, fmt.Errorf("%s: %w", kind, err)
		}
		hazards = append(hazards, h)
	}
	return domain.NewAnalysisReport(req, region, observations, hazards), nil
}

func writeCSVs(dir string, report domain.AnalysisReport) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	slug := strings.ToLower(strings.NewReplacer(", ", "_", " ", "_").Replace(report.Region.Name))
	for _, h := range report.Hazards {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", slug, h.Kind))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := domain.WriteYearlyCSV(f, h.Analysis.YearlyData); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

type kindStats struct {
	events    int
	intensity float64
	trends    map[domain.TrendDirection]int
	risks     map[domain.RiskLevel]int
}

func printStats(reports []domain.AnalysisReport) {
	stats := map[domain.HazardKind]*kindStats{}
	for _, r := range reports {
		for _, h := range r.Hazards {
			s, ok := stats[h.Kind]
			if !ok {
				s = &kindStats{trends: map[domain.TrendDirection]int{}, risks: map[domain.RiskLevel]int{}}
				stats[h.Kind] = s
			}
			s.events += h.Analysis.TotalEvents
			s.intensity += h.Analysis.AverageIntensity
			s.trends[h.Analysis.TrendDirection]++
			s.risks[h.Insights.RiskLevel]++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Regions: %d\n", len(reports))
	for _, kind := range domain.HazardKinds() {
		s, ok := stats[kind]
		if !ok {
			continue
		}
		fmt.Printf("%s: events=%d mean_intensity=%.2f trends=%s risks=%s\n",
			kind, s.events, s.intensity/float64(len(reports)), formatCounts(s.trends), formatCounts(s.risks))
	}

	fmt.Println("\nPer region:")
	for _, r := range reports {
		fmt.Printf("  %s:", r.Region.Name)
		for _, h := range r.Hazards {
			fmt.Printf(" %s=%d(%.1f)", h.Kind, h.Analysis.TotalEvents, h.Threshold)
		}
		fmt.Println()
	}
}

func formatCounts[K ~string](counts map[K]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, counts[K(k)]))
	}
	return strings.Join(parts, ",")
}
