// Package main provides a performance benchmarking tool for the dpc CLI.
// It measures comparison times across raster sizes and command types,
// running each test multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - dpc binary installed and available in PATH
//
// Usage: go run benchmark/main.go [fixture-dir]
//
//	fixture-dir: Directory where the generated benchmark fixtures are written
package main

import (
	"encoding/csv"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (raster-only average, cold run and average of warm full-metric runs).
type BenchmarkResult struct {
	Fixture    string
	Command    string
	RasterTime string
	ColdTime   string
	WarmTime   string
}

// fixtureSize describes one generated fixture pair.
type fixtureSize struct {
	Name   string
	Width  int
	Height int
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	FixtureDir string
	Timeout    time.Duration
	RasterRuns int
	FullRuns   int
	Sizes      []fixtureSize
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [fixture-dir]\n", os.Args[0])
		os.Exit(1)
	}
	fixtureDir := os.Args[1]

	config := BenchmarkConfig{
		FixtureDir: fixtureDir,
		Timeout:    5 * time.Minute,
		RasterRuns: 3,
		FullRuns:   4,
		Sizes: []fixtureSize{
			{Name: "small", Width: 640, Height: 400},
			{Name: "medium", Width: 1280, Height: 800},
			{Name: "large", Width: 2560, Height: 1600},
		},
	}

	if err := checkPrerequisites(); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generating fixtures in %s...\n", fixtureDir)
	if err := prepareFixtures(config); err != nil {
		fmt.Printf("Failed to generate fixtures: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the dpc binary is available
func checkPrerequisites() error {
	if _, err := exec.LookPath("dpc"); err != nil {
		return fmt.Errorf("dpc binary not found in PATH")
	}
	return nil
}

// prepareFixtures writes a ref/impl PNG pair for every configured size.
// The impl side carries a recolored header and a shifted card so every
// metric has real differences to chew on.
func prepareFixtures(config BenchmarkConfig) error {
	if err := os.MkdirAll(config.FixtureDir, 0o755); err != nil {
		return err
	}
	for _, size := range config.Sizes {
		ref := renderScene(size.Width, size.Height, color.NRGBA{R: 31, G: 42, B: 68, A: 255}, 0)
		impl := renderScene(size.Width, size.Height, color.NRGBA{R: 68, G: 42, B: 31, A: 255}, size.Height/40)

		if err := writePNG(refPath(config, size), ref); err != nil {
			return err
		}
		if err := writePNG(implPath(config, size), impl); err != nil {
			return err
		}
	}
	return nil
}

func refPath(config BenchmarkConfig, size fixtureSize) string {
	return filepath.Join(config.FixtureDir, size.Name+".ref.png")
}

func implPath(config BenchmarkConfig, size fixtureSize) string {
	return filepath.Join(config.FixtureDir, size.Name+".impl.png")
}

// renderScene paints a page-like raster: header band, a card grid, footer.
// cardShift nudges the cards down to create layout and pixel differences.
func renderScene(w, h int, header color.NRGBA, cardShift int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	// Background
	fillRect(img, 0, 0, w, h, color.NRGBA{R: 247, G: 248, B: 250, A: 255})

	// Header band
	fillRect(img, 0, 0, w, h/8, header)

	// Card grid, 3 columns x 2 rows
	cardW, cardH := w/4, h/5
	gapX, gapY := w/16, h/16
	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			x := gapX + col*(cardW+gapX)
			y := h/6 + gapY + row*(cardH+gapY) + cardShift
			fillRect(img, x, y, x+cardW, y+cardH, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
			fillRect(img, x+cardW/8, y+cardH/6, x+cardW-cardW/8, y+cardH/3, color.NRGBA{R: 51, G: 102, B: 204, A: 255})
		}
	}

	// Footer
	fillRect(img, 0, h-h/12, w, h, color.NRGBA{R: 34, G: 37, B: 41, A: 255})
	return img
}

func fillRect(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	b := img.Bounds()
	for y := max(y0, 0); y < min(y1, b.Dy()); y++ {
		for x := max(x0, 0); x < min(x1, b.Dx()); x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// runBenchmarks executes all benchmark tests across configured fixture sizes
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sizes, %v timeout, raster-only: %d runs, full: %d runs\n",
		len(config.Sizes), config.Timeout, config.RasterRuns, config.FullRuns)

	for _, size := range config.Sizes {
		fmt.Printf("Benchmarking %s (%dx%d)\n", size.Name, size.Width, size.Height)

		// Full comparison across all metrics
		result := runBenchmarkSuite(config, size, "compare", "compare analysis",
			[]string{"compare", refPath(config, size), implPath(config, size)})
		results = append(results, result)

		// CI gate with per-metric minimums
		result = runBenchmarkSuite(config, size, "check", "check analysis",
			[]string{"check", refPath(config, size), implPath(config, size), "--min-scores", "pixel:0.1"})
		results = append(results, result)

		// Scaffold generation from the reference side
		result = runBenchmarkSuite(config, size, "generate", "scaffold generation",
			[]string{"generate", refPath(config, size)})
		results = append(results, result)
	}

	return results
}

// runBenchmarkSuite runs both raster-only and full-metric benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, size fixtureSize, command, description string, args []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, size.Name)

	// Helper to run a benchmark phase
	runPhase := func(metrics string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, size, args, metrics, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: Raster-only runs
	_, rasterAvg := runPhase("pixel,color", config.RasterRuns, "Raster-only")

	// Phase 2: Full metric runs
	coldTime, warmAvg := runPhase("all", config.FullRuns, "Full")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  Raster-only average: %s, Cold time: %s, Warm average: %s\n", rasterAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Fixture:    size.Name,
		Command:    command,
		RasterTime: rasterAvg,
		ColdTime:   coldTimeStr,
		WarmTime:   warmAvg,
	}
}

// runBenchmark executes a dpc command multiple times with the given metric set and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, size fixtureSize, baseArgs []string, metrics string, numRuns int) (coldTime float64, warmTimes []float64) {
	// Prepare command arguments
	args := append([]string{}, baseArgs...)
	args = append(args,
		"--viewport", fmt.Sprintf("%dx%d", size.Width, size.Height),
		"--format", "json",
		"--store-backend", "none",
		"--metrics", metrics,
	)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("dpc", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if isSuccess(output, cmdErr) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if the command completed with a verdict. A failing
// comparison exits 1 but still did all the work, so it counts.
func isSuccess(output []byte, cmdErr error) bool {
	if cmdErr != nil {
		exitErr, ok := cmdErr.(*exec.ExitError)
		if !ok || exitErr.ExitCode() > 1 {
			return false
		}
	}
	outputStr := string(output)
	return strings.Contains(outputStr, `"version"`) && strings.Contains(outputStr, `"mode"`)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/dpc_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"fixture", "cmd", "raster_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Fixture, result.Command, result.RasterTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "compare", "Compare Analysis:")
	printCommandSummary(results, "check", "Check Analysis:")
	printCommandSummary(results, "generate", "Scaffold Generation:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-12s: Raster-only: %s, Cold: %s, Warm: %s\n", result.Fixture, result.RasterTime, result.ColdTime, result.WarmTime)
		}
	}
}
