package match

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rowmatch/internal/config"
	"rowmatch/internal/excel"
	"rowmatch/internal/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const maxParallelReads = 4

var (
	ErrNoMatches  = errors.New("no matching rows found")
	ErrInvalidJob = errors.New("invalid job")
)

// sourceSheetSep separates a source path from its sheet name: "daily.xlsx::5.1".
const sourceSheetSep = "::"

// SourceSpec is one source workbook and, optionally, the sheet to read.
type SourceSpec struct {
	Path  string `yaml:"path"`
	Sheet string `yaml:"sheet,omitempty"`
}

// ParseSourceSpec splits "path::sheet"; a plain path has no sheet.
func ParseSourceSpec(s string) SourceSpec {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, sourceSheetSep); i >= 0 {
		return SourceSpec{
			Path:  strings.TrimSpace(s[:i]),
			Sheet: strings.TrimSpace(s[i+len(sourceSheetSep):]),
		}
	}
	return SourceSpec{Path: s}
}

func (s SourceSpec) String() string {
	if s.Sheet == "" {
		return s.Path
	}
	return s.Path + sourceSheetSep + s.Sheet
}

// Job holds everything a single matching run needs.
type Job struct {
	Sources         []SourceSpec
	SourceSheet     string
	// SourceSheets maps a source path to its sheet for sources added
	// without an explicit "::sheet".
	SourceSheets    map[string]string
	LookupFile      string
	LookupSheet     string
	SourceColumn    string
	LookupColumn    string
	HeaderRow       int
	LookupHeaderRow int

	OutputDir         string
	OutputName        string
	OutputSheet       string
	FallbackToDesktop bool

	Dates DateRules
	Clock func() time.Time
}

// JobFromConfig builds a job from the [match], [output] and [dates] sections.
// Per-file sheets from source_sheets apply to sources listed without one.
func JobFromConfig(cfg *config.Config) *Job {
	job := &Job{
		SourceSheet:       cfg.Match.SourceSheet,
		SourceSheets:      cfg.Match.SourceSheets,
		LookupFile:        cfg.Match.LookupFile,
		LookupSheet:       cfg.Match.LookupSheet,
		SourceColumn:      cfg.Match.SourceColumn,
		LookupColumn:      cfg.Match.LookupColumn,
		HeaderRow:         cfg.Match.HeaderRow,
		LookupHeaderRow:   cfg.Match.LookupHeader,
		OutputDir:         cfg.Output.Directory,
		OutputName:        cfg.Output.FileName,
		OutputSheet:       cfg.Output.SheetName,
		FallbackToDesktop: cfg.Output.FallbackToDesktop,
		Dates:             DateRulesFromConfig(cfg.Dates),
	}
	for _, raw := range cfg.Match.SourceFiles {
		job.AddSource(raw, job.SourceSheets)
	}
	return job
}

// AddSource appends a "path[::sheet]" source, taking the sheet from sheets
// when raw does not name one.
func (j *Job) AddSource(raw string, sheets map[string]string) {
	src := ParseSourceSpec(raw)
	if src.Path == "" {
		return
	}
	if src.Sheet == "" {
		src.Sheet = sheets[src.Path]
	}
	j.Sources = append(j.Sources, src)
}

// OutputPath is the requested output file before the timestamp is added.
func (j *Job) OutputPath() string {
	return filepath.Join(j.OutputDir, j.OutputName)
}

// Validate checks the job the way the interactive form does before a run.
func (j *Job) Validate() error {
	if len(j.Sources) == 0 {
		return fmt.Errorf("%w: add at least one source file", ErrInvalidJob)
	}
	for _, src := range j.Sources {
		if !fileExists(src.Path) {
			return fmt.Errorf("%w: source file does not exist: %s", ErrInvalidJob, src.Path)
		}
	}
	if strings.TrimSpace(j.LookupFile) == "" {
		return fmt.Errorf("%w: choose a lookup file", ErrInvalidJob)
	}
	if !fileExists(j.LookupFile) {
		return fmt.Errorf("%w: lookup file does not exist: %s", ErrInvalidJob, j.LookupFile)
	}
	if strings.TrimSpace(j.OutputDir) == "" {
		return fmt.Errorf("%w: choose an output folder", ErrInvalidJob)
	}
	if info, err := os.Stat(j.OutputDir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: output folder does not exist: %s", ErrInvalidJob, j.OutputDir)
	}
	if strings.TrimSpace(j.OutputName) == "" {
		return fmt.Errorf("%w: output file name is empty", ErrInvalidJob)
	}
	if strings.TrimSpace(j.SourceColumn) == "" {
		return fmt.Errorf("%w: source key column is empty", ErrInvalidJob)
	}
	if strings.TrimSpace(j.LookupColumn) == "" {
		return fmt.Errorf("%w: lookup key column is empty", ErrInvalidJob)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// FileResult records what happened to one source file.
type FileResult struct {
	Path    string `yaml:"path"`
	Sheet   string `yaml:"sheet"`
	Matched int    `yaml:"matched"`
	Skipped bool   `yaml:"skipped,omitempty"`
	Error   string `yaml:"error,omitempty"`
}

// Result summarizes a run.
type Result struct {
	RunID      string       `yaml:"run_id"`
	Started    time.Time    `yaml:"started"`
	Finished   time.Time    `yaml:"finished"`
	LookupKeys int          `yaml:"lookup_keys"`
	Matched    int          `yaml:"matched"`
	SavedPath  string       `yaml:"saved_path,omitempty"`
	Files      []FileResult `yaml:"files"`
}

// Skipped returns the files that could not be processed.
func (r *Result) Skipped() []FileResult {
	var skipped []FileResult
	for _, f := range r.Files {
		if f.Skipped {
			skipped = append(skipped, f)
		}
	}
	return skipped
}

// Run loads the lookup set once, matches every source file, and writes the
// collected rows to a new timestamped workbook. Source files that cannot be
// read are skipped. When nothing matches no file is written and ErrNoMatches
// is returned together with the partial result.
func Run(job *Job) (*Result, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	clock := job.Clock
	if clock == nil {
		clock = time.Now
	}
	dates := job.Dates
	if dates.Now == nil {
		dates.Now = clock
	}
	outputSheet := job.OutputSheet
	if outputSheet == "" {
		outputSheet = config.Default().Output.SheetName
	}

	result := &Result{RunID: uuid.NewString(), Started: clock()}
	log := logger.With("run_id", result.RunID)
	log.Info("Starting match run",
		"sources", len(job.Sources),
		"lookup_file", job.LookupFile,
		"source_column", job.SourceColumn,
		"lookup_column", job.LookupColumn)

	lookup, err := loadLookup(job)
	if err != nil {
		log.Error("Failed to load lookup table", "error", err)
		return nil, err
	}
	result.LookupKeys = lookup.Len()
	log.Info("Loaded lookup values", "count", lookup.Len())

	column, err := ParseColumn(job.SourceColumn)
	if err != nil {
		return nil, fmt.Errorf("invalid source column: %w", err)
	}

	matcher := &Matcher{
		Lookup:    lookup,
		Column:    column,
		HeaderRow: job.HeaderRow,
		Dates:     dates,
	}
	agg := NewAggregator(outputSheet)

	outcomes := readSources(matcher, job)
	for i, src := range job.Sources {
		out := outcomes[i]
		fileResult := FileResult{Path: src.Path, Sheet: out.sheet}
		if out.err != nil {
			log.Error("Skipping source file", "file", src.Path, "error", out.err)
			fileResult.Skipped = true
			fileResult.Error = out.err.Error()
			result.Files = append(result.Files, fileResult)
			continue
		}

		fileResult.Sheet = out.match.Sheet
		fileResult.Matched = agg.Add(out.match)
		result.Files = append(result.Files, fileResult)

		log.Info("Processed source file",
			"file", src.Path,
			"sheet", out.match.Sheet,
			"progress", fmt.Sprintf("%d/%d", i+1, len(job.Sources)),
			"matched", fileResult.Matched)
	}

	result.Matched = agg.Total()
	if result.Matched == 0 {
		result.Finished = clock()
		log.Warn("No matching rows found")
		return result, ErrNoMatches
	}

	saved, err := writeResult(agg.Table(), TimestampedPath(job.OutputPath(), result.Started), job.FallbackToDesktop)
	result.Finished = clock()
	if err != nil {
		log.Error("Failed to save result", "error", err)
		return result, err
	}
	result.SavedPath = saved

	log.Info("Match run completed", "matched", result.Matched, "saved_path", saved)
	return result, nil
}

func loadLookup(job *Job) (KeySet, error) {
	editor, err := excel.OpenFile(job.LookupFile)
	if err != nil {
		return nil, err
	}
	defer editor.Close()

	sheet, found, err := editor.ResolveSheet(job.LookupSheet)
	if err != nil {
		return nil, err
	}
	if job.LookupSheet != "" && !found {
		logger.Warn("Lookup sheet not found, using active sheet", "requested", job.LookupSheet, "using", sheet)
	}

	table, err := editor.ReadTable(sheet)
	if err != nil {
		return nil, err
	}

	column, err := ParseColumn(job.LookupColumn)
	if err != nil {
		return nil, fmt.Errorf("invalid lookup column: %w", err)
	}
	headerRow := job.LookupHeaderRow
	if headerRow < 1 {
		headerRow = 1
	}
	col, err := column.Resolve(table, headerRow)
	if err != nil {
		return nil, err
	}
	return BuildLookupSet(table, col), nil
}

type sourceOutcome struct {
	sheet string
	match *SheetMatch
	err   error
}

// readSources matches every source file, reading up to maxParallelReads
// workbooks at once. Outcomes keep the order of job.Sources.
func readSources(matcher *Matcher, job *Job) []sourceOutcome {
	outcomes := make([]sourceOutcome, len(job.Sources))

	var g errgroup.Group
	g.SetLimit(maxParallelReads)
	for i, src := range job.Sources {
		sheet := src.Sheet
		if sheet == "" {
			sheet = job.SourceSheet
		}
		g.Go(func() error {
			sm, err := matchSource(matcher, src.Path, sheet)
			outcomes[i] = sourceOutcome{sheet: sheet, match: sm, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func matchSource(matcher *Matcher, path, sheetName string) (*SheetMatch, error) {
	editor, err := excel.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer editor.Close()

	sheet, found, err := editor.ResolveSheet(sheetName)
	if err != nil {
		return nil, err
	}
	if sheetName != "" && !found {
		logger.Warn("Source sheet not found, using active sheet", "file", path, "requested", sheetName, "using", sheet)
	}

	table, err := editor.ReadTable(sheet)
	if err != nil {
		return nil, err
	}
	return matcher.MatchTable(table)
}

func writeResult(table *excel.Table, path string, fallback bool) (string, error) {
	editor := excel.CreateNewFile()
	defer editor.Close()

	if err := editor.RenameSheet("Sheet1", table.Name); err != nil {
		return "", fmt.Errorf("failed to name output sheet %q: %w", table.Name, err)
	}
	if err := editor.WriteTable(table.Name, table); err != nil {
		return "", err
	}
	return SaveWithFallback(editor, path, fallback)
}
