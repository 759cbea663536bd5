package hsafgrib

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"
)

// FileMatch is a file accepted by one of the reader's file types.
type FileMatch struct {
	Path     string
	FileType string
	Info     FilenameInfo
}

// Reader loads H-SAF datasets from a set of files using a Config.
type Reader struct {
	cfg      *Config
	opts     []Option
	log      *slog.Logger
	patterns map[string][]*FilePattern
	files    []openFile
}

type openFile struct {
	h        *FileHandler
	fileType string
}

// NewReader validates cfg and compiles its file patterns. The options are
// passed on to every FileHandler the reader creates.
func NewReader(cfg *Config, opts ...Option) (*Reader, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Reader{
		cfg:      cfg,
		opts:     opts,
		log:      newOptions(opts).logger.With("reader", cfg.Reader.Name),
		patterns: make(map[string][]*FilePattern, len(cfg.FileTypes)),
	}
	for name, ft := range cfg.FileTypes {
		for _, p := range ft.FilePatterns {
			fp, err := CompilePattern(p)
			if err != nil {
				return nil, err
			}
			r.patterns[name] = append(r.patterns[name], fp)
		}
	}
	return r, nil
}

// Config returns the reader's configuration.
func (r *Reader) Config() *Config { return r.cfg }

// SelectFiles returns the paths whose base name matches a file pattern,
// in input order. File types are tried in name order, patterns in
// configuration order.
func (r *Reader) SelectFiles(paths []string) []FileMatch {
	types := slices.Sorted(maps.Keys(r.patterns))
	var out []FileMatch
	for _, path := range paths {
		base := filepath.Base(path)
	match:
		for _, ft := range types {
			for _, p := range r.patterns[ft] {
				if info, ok := p.Match(base); ok {
					out = append(out, FileMatch{Path: path, FileType: ft, Info: info})
					break match
				}
			}
		}
	}
	return out
}

// CreateHandlers opens a FileHandler for every selected path. Files that
// fail to open are logged and skipped; their errors are joined into the
// returned error. The handlers are kept for Load, sorted by start time.
func (r *Reader) CreateHandlers(paths []string) ([]*FileHandler, error) {
	matches := r.SelectFiles(paths)
	if len(matches) < len(paths) {
		r.log.Info("ignoring files not matching any pattern", "given", len(paths), "matched", len(matches))
	}
	var errs []error
	var files []openFile
	for _, m := range matches {
		h, err := NewFileHandler(m.Path, m.Info, r.cfg.FileTypes[m.FileType], r.opts...)
		if err != nil {
			r.log.Warn("skipping file", "file", m.Path, "error", err)
			errs = append(errs, err)
			continue
		}
		files = append(files, openFile{h: h, fileType: m.FileType})
	}
	slices.SortStableFunc(files, func(a, b openFile) int {
		return a.h.StartTime().Compare(b.h.StartTime())
	})
	r.files = files
	return r.Handlers(), errors.Join(errs...)
}

// Handlers returns the handlers created by CreateHandlers.
func (r *Reader) Handlers() []*FileHandler {
	hs := make([]*FileHandler, len(r.files))
	for i, f := range r.files {
		hs[i] = f.h
	}
	return hs
}

// provides reports whether f holds the given dataset: same file type and
// a file name starting with the product name.
func (f openFile) provides(ds DatasetInfo) bool {
	if f.fileType != ds.FileType {
		return false
	}
	product, _, _ := strings.Cut(filepath.Base(f.h.Filename()), "_")
	return foldProduct(product) == foldProduct(ds.Name)
}

// AvailableDatasets returns the names of the configured datasets at least
// one handler provides, sorted.
func (r *Reader) AvailableDatasets() []string {
	var names []string
	for _, ds := range r.cfg.Datasets {
		if slices.ContainsFunc(r.files, func(f openFile) bool { return f.provides(ds) }) {
			names = append(names, ds.Name)
		}
	}
	slices.Sort(names)
	return names
}

// dataset looks a dataset up by name, ignoring case.
func (r *Reader) dataset(name string) (DatasetInfo, bool) {
	for _, ds := range r.cfg.Datasets {
		if foldProduct(ds.Name) == foldProduct(name) {
			return ds, true
		}
	}
	return DatasetInfo{}, false
}

// Load reads the named datasets, or every available one when no names are
// given. When several files provide a dataset the most recent one wins.
// Each DataArray carries its area definition.
func (r *Reader) Load(ctx context.Context, names ...string) (map[string]*DataArray, error) {
	if len(names) == 0 {
		names = r.AvailableDatasets()
	}
	out := make(map[string]*DataArray, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ds, ok := r.dataset(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not configured", ErrDatasetNotFound, name)
		}
		var h *FileHandler
		for _, f := range r.files {
			if f.provides(ds) {
				h = pickLatest(h, f.h)
			}
		}
		if h == nil {
			return nil, fmt.Errorf("%w: no file provides %q", ErrDatasetNotFound, ds.Name)
		}

		da, err := h.GetDataset(DataID{Name: ds.Name}, ds)
		if err != nil {
			return nil, err
		}
		if da.Area, err = h.GetAreaDef(ds.Name); err != nil {
			return nil, err
		}
		r.log.Info("loaded dataset",
			"dataset", ds.Name,
			"file", h.Filename(),
			"start_time", da.Attrs.StartTime,
			"end_time", da.Attrs.EndTime)
		out[ds.Name] = da
	}
	return out, nil
}

func pickLatest(a, b *FileHandler) *FileHandler {
	if a == nil || b.EndTime().After(a.EndTime()) {
		return b
	}
	return a
}
