// Command hsafgrib reads H-SAF precipitation products in GRIB format and
// prints a summary of each dataset, optionally the value at a lat/lon.
//
// Usage:
//
//	hsafgrib [flags] <file|URL>...
//	hsafgrib -list
//
// Examples:
//
//	hsafgrib h03B_20190603_1645_fdk.grb
//	hsafgrib -at 41.9,12.5 h03B_20190603_1645_fdk.grb h05B_20190603_1645_24_fdk.grb
//	hsafgrib -datasets h05B -o out/ -json h05B_20190603_1645_24_fdk.grb
//	hsafgrib https://example.org/hsaf/h03B/h03B_20190603_1645_fdk.grb
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/geal-ai/hsafgrib"
	"github.com/prometheus/client_golang/prometheus"
)

// jsonLocation is the location sub-object in JSON output.
type jsonLocation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// jsonDataset is one loaded dataset in JSON output.
type jsonDataset struct {
	Name      string    `json:"name"`
	File      string    `json:"file"`
	ShortName string    `json:"short_name"`
	LongName  string    `json:"long_name"`
	Units     string    `json:"units"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Shape     [2]int    `json:"shape"`
	Valid     int       `json:"valid"`
	Min       *float64  `json:"min,omitempty"`
	Max       *float64  `json:"max,omitempty"`
	Extent    []float64 `json:"area_extent,omitempty"`
	Value     *float64  `json:"value,omitempty"`
	Output    string    `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// jsonOutput is the top-level JSON response.
type jsonOutput struct {
	Location *jsonLocation `json:"location,omitempty"`
	Datasets []jsonDataset `json:"datasets"`
}

// fetchResult holds one download's outcome.
type fetchResult struct {
	path string
	err  error
}

func main() {
	names := flag.String("datasets", "", "Comma-separated datasets to load (default: all available)")
	at := flag.String("at", "", "Print the value at `lat,lon`")
	outDir := flag.String("o", "", "Write each dataset as NetCDF into `dir`")
	cfgPath := flag.String("config", "", "Reader configuration YAML (default: built-in)")
	metricsPath := flag.String("metrics", "", "Write Prometheus metrics to this textfile on exit")
	timeout := flag.Duration("timeout", 2*time.Minute, "Timeout per URL download")
	listDatasets := flag.Bool("list", false, "Print the configured datasets and exit")
	asJSON := flag.Bool("json", false, "Output results as JSON")
	verbose := flag.Bool("v", false, "Log debug messages")
	flag.Usage = usage
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fatalf("%v", err)
	}
	if *listDatasets {
		printDatasetList(cfg)
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "error: at least one file or URL is required")
		usage()
		os.Exit(2)
	}

	var loc *jsonLocation
	if *at != "" {
		lat, lon, err := parseLatLon(*at)
		if err != nil {
			fatalf("invalid -at %q: %v", *at, err)
		}
		loc = &jsonLocation{Lat: lat, Lon: lon}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = run(ctx, cfg, flag.Args(), runOptions{
		datasets: *names,
		location: loc,
		outDir:   *outDir,
		metrics:  *metricsPath,
		timeout:  *timeout,
		asJSON:   *asJSON,
		logger:   logger,
	})
	if err != nil {
		stop()
		fatalf("%v", err)
	}
}

type runOptions struct {
	datasets string
	location *jsonLocation
	outDir   string
	metrics  string
	timeout  time.Duration
	asJSON   bool
	logger   *slog.Logger
}

func run(ctx context.Context, cfg *hsafgrib.Config, args []string, o runOptions) error {
	reg := prometheus.NewRegistry()
	metrics := hsafgrib.NewMetrics()
	if err := metrics.Register(reg); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	if o.metrics != "" {
		defer func() {
			if err := prometheus.WriteToTextfile(o.metrics, reg); err != nil {
				o.logger.Error("writing metrics", "path", o.metrics, "error", err)
			}
		}()
	}

	paths, cleanup, err := resolveInputs(ctx, args, o.timeout, o.logger)
	if err != nil {
		return err
	}
	defer cleanup()

	r, err := hsafgrib.NewReader(cfg, hsafgrib.WithLogger(o.logger), hsafgrib.WithMetrics(metrics))
	if err != nil {
		return err
	}
	hs, err := r.CreateHandlers(paths)
	if len(hs) == 0 {
		if err != nil {
			return fmt.Errorf("no readable H-SAF files: %w", err)
		}
		return fmt.Errorf("no file matches the %s file patterns", cfg.Reader.Name)
	}

	var want []string
	if o.datasets != "" {
		want = strings.Split(o.datasets, ",")
	}
	loaded, err := r.Load(ctx, want...)
	if err != nil {
		return err
	}

	out := jsonOutput{Location: o.location}
	for _, name := range slices.Sorted(maps.Keys(loaded)) {
		da := loaded[name]
		ds := summarize(da, o.location)
		if o.outDir != "" {
			if ds.Output, err = export(o.outDir, da); err != nil {
				ds.Error = err.Error()
				o.logger.Error("export failed", "dataset", name, "error", err)
			}
		}
		out.Datasets = append(out.Datasets, ds)
	}

	if o.asJSON {
		emitJSON(out)
	} else {
		printResults(out)
	}
	return nil
}

func loadConfig(path string) (*hsafgrib.Config, error) {
	if path == "" {
		return hsafgrib.DefaultConfig()
	}
	return hsafgrib.LoadConfig(path)
}

func parseLatLon(s string) (lat, lon float64, err error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("want lat,lon")
	}
	if lat, err = strconv.ParseFloat(strings.TrimSpace(a), 64); err != nil {
		return 0, 0, err
	}
	if lon, err = strconv.ParseFloat(strings.TrimSpace(b), 64); err != nil {
		return 0, 0, err
	}
	if lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("latitude %g out of range", lat)
	}
	return lat, lon, nil
}

// resolveInputs downloads URL arguments into a temporary directory, up to
// four at a time, and returns them together with the local paths. Failed
// downloads are logged and dropped.
func resolveInputs(ctx context.Context, args []string, timeout time.Duration, logger *slog.Logger) ([]string, func(), error) {
	var urls []int
	for i, a := range args {
		if strings.HasPrefix(a, "http://") || strings.HasPrefix(a, "https://") {
			urls = append(urls, i)
		}
	}
	if len(urls) == 0 {
		return args, func() {}, nil
	}

	dir, err := os.MkdirTemp("", "hsafgrib-")
	if err != nil {
		return nil, nil, fmt.Errorf("temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	client := hsafgrib.NewClient()
	results := make([]fetchResult, len(args))
	var wg sync.WaitGroup
	sem := make(chan struct{}, 4)
	for _, i := range urls {
		wg.Add(1)
		go func(idx int, url string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			tctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			logger.Info("downloading", "url", url)
			p, err := client.Download(tctx, url, dir)
			results[idx] = fetchResult{path: p, err: err}
		}(i, args[i])
	}
	wg.Wait()

	var paths []string
	for i, a := range args {
		if !slices.Contains(urls, i) {
			paths = append(paths, a)
			continue
		}
		if err := results[i].err; err != nil {
			logger.Warn("download failed", "url", a, "error", err)
			continue
		}
		paths = append(paths, results[i].path)
	}
	return paths, cleanup, nil
}

func summarize(da *hsafgrib.DataArray, loc *jsonLocation) jsonDataset {
	ds := jsonDataset{
		Name:      da.Name,
		File:      filepath.Base(da.Attrs.Filename),
		ShortName: da.Attrs.ShortName,
		LongName:  da.Attrs.LongName,
		Units:     da.Attrs.Units,
		StartTime: da.Attrs.StartTime.UTC().Format(time.RFC3339),
		EndTime:   da.Attrs.EndTime.UTC().Format(time.RFC3339),
		Shape:     da.Shape,
		Valid:     da.Valid(),
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range da.Values {
		if !math.IsNaN(v) {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if ds.Valid > 0 {
		ds.Min, ds.Max = &lo, &hi
	}
	if da.Area == nil {
		return ds
	}
	ds.Extent = da.Area.AreaExtent[:]
	if loc != nil {
		if col, row, ok := da.Area.Pixel(loc.Lat, loc.Lon); ok {
			if v := da.At(row, col); !math.IsNaN(v) {
				ds.Value = &v
			}
		}
	}
	return ds
}

func export(dir string, da *hsafgrib.DataArray) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.nc", da.Name, da.Attrs.EndTime.UTC().Format("20060102_1504")))
	if err := hsafgrib.WriteNetCDF(path, da); err != nil {
		return "", err
	}
	return path, nil
}

// emitJSON writes jsonOutput to stdout as indented JSON.
func emitJSON(out jsonOutput) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fatalf("json encode: %v", err)
	}
}

func printResults(out jsonOutput) {
	fmt.Printf("\n")
	if out.Location != nil {
		fmt.Printf("  Location : %.4f°N  %.4f°E\n\n", out.Location.Lat, out.Location.Lon)
	}
	for _, ds := range out.Datasets {
		fmt.Printf("  %s  %s (%s)\n", ds.Name, ds.LongName, ds.ShortName)
		fmt.Printf("    File     : %s\n", ds.File)
		if ds.StartTime == ds.EndTime {
			fmt.Printf("    Time     : %s\n", ds.EndTime)
		} else {
			fmt.Printf("    Period   : %s → %s\n", ds.StartTime, ds.EndTime)
		}
		fmt.Printf("    Grid     : %d × %d, %d valid\n", ds.Shape[1], ds.Shape[0], ds.Valid)
		if ds.Min != nil {
			fmt.Printf("    Range    : %g … %g %s\n", *ds.Min, *ds.Max, ds.Units)
		}
		if out.Location != nil {
			if ds.Value != nil {
				fmt.Printf("    Value    : %g %s\n", *ds.Value, ds.Units)
			} else {
				fmt.Printf("    Value    : (no data at location)\n")
			}
		}
		if ds.Output != "" {
			fmt.Printf("    Written  : %s\n", ds.Output)
		}
		if ds.Error != "" {
			fmt.Printf("    Error    : %s\n", ds.Error)
		}
		fmt.Printf("\n")
	}
}

func printDatasetList(cfg *hsafgrib.Config) {
	fmt.Printf("Datasets of the %s reader:\n\n", cfg.Reader.Name)
	names := slices.Sorted(maps.Keys(cfg.Datasets))
	maxName := 0
	for _, n := range names {
		maxName = max(maxName, len(n))
	}
	for _, n := range names {
		ds := cfg.Datasets[n]
		kind := "instantaneous"
		if ds.Accumulated {
			kind = "accumulated"
		}
		fmt.Printf("  %-*s  %-13s  %s [%s]\n", maxName, ds.Name, kind, ds.LongName, ds.Units)
	}
	fmt.Println()
	fmt.Println("File patterns:")
	for _, ft := range slices.Sorted(maps.Keys(cfg.FileTypes)) {
		for _, p := range cfg.FileTypes[ft].FilePatterns {
			fmt.Printf("  %s\n", p)
		}
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `hsafgrib: read H-SAF GRIB precipitation products

Usage:
  hsafgrib [flags] <file|URL>...
  hsafgrib -list

Flags:`)
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, `
Examples:
  hsafgrib h03B_20190603_1645_fdk.grb
  hsafgrib -at 41.9,12.5 h03B_20190603_1645_fdk.grb h05B_20190603_1645_24_fdk.grb
  hsafgrib -datasets h05B -o out/ -json h05B_20190603_1645_24_fdk.grb
  hsafgrib -metrics hsafgrib.prom h03B_*.grb`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
