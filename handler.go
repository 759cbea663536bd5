// Package hsafgrib reads Hydrology SAF (H-SAF) precipitation products
// distributed as GRIB edition 1 files on the MSG geostationary grid.
//
// A FileHandler wraps one product file and exposes its metadata, its area
// definition and its dataset. A Reader selects files by name pattern,
// builds handlers and loads datasets by product name. The GRIB library
// underneath is an Opener; the native grib1 decoder is the default.
package hsafgrib

import (
	"fmt"
	"log/slog"
	"time"
)

// FilenameInfo holds the fields parsed from a file name by a FilePattern,
// e.g. "sensing_time" (time.Time), "accum_time" and "region" (string).
type FilenameInfo map[string]any

// Metadata describes the first message of a product file.
type Metadata struct {
	Filename  string
	ShortName string
	LongName  string
	Units     string
	// CentreDescription is empty when the message does not name its
	// originating centre.
	CentreDescription string
	DataTime          time.Time
	Nx, Ny            int
	ProjParams        map[string]any
}

// FileHandler reads one H-SAF GRIB file. Every operation opens the file,
// reads what it needs and closes it again; nothing decoded is kept between
// calls.
type FileHandler struct {
	filename     string
	filenameInfo FilenameInfo
	filetype     FileType

	opener  Opener
	log     *slog.Logger
	metrics *Metrics

	analysisTime time.Time
	metadata     Metadata
}

// NewFileHandler opens filename and reads the analysis time and metadata
// of its first message. Any failure is reported as ErrUnknownFormat.
func NewFileHandler(filename string, info FilenameInfo, filetype FileType, opts ...Option) (*FileHandler, error) {
	o := newOptions(opts)
	h := &FileHandler{
		filename:     filename,
		filenameInfo: info,
		filetype:     filetype,
		opener:       o.opener,
		log:          o.logger.With("file", filename),
		metrics:      o.metrics,
	}

	err := h.withMessage("init", 1, func(msg Message) error {
		t, err := analysisTime(msg)
		if err != nil {
			return err
		}
		h.analysisTime = t
		h.metadata, err = h.readMetadata(msg)
		return err
	})
	if err != nil {
		h.metrics.decodeError("format")
		return nil, fmt.Errorf("%w: %s: %w", ErrUnknownFormat, filename, err)
	}
	h.log.Debug("opened H-SAF file",
		"short_name", h.metadata.ShortName,
		"analysis_time", h.analysisTime,
		"nx", h.metadata.Nx,
		"ny", h.metadata.Ny)
	return h, nil
}

// Filename returns the path the handler reads.
func (h *FileHandler) Filename() string { return h.filename }

// FilenameInfo returns the fields parsed from the file name.
func (h *FileHandler) FilenameInfo() FilenameInfo { return h.filenameInfo }

// FileType returns the file-type configuration the handler was built with.
func (h *FileHandler) FileType() FileType { return h.filetype }

// AnalysisTime returns the nominal time of the product, taken from the
// dataDate and dataTime keys of the first message.
func (h *FileHandler) AnalysisTime() time.Time { return h.analysisTime }

// StartTime returns the analysis time.
func (h *FileHandler) StartTime() time.Time { return h.analysisTime }

// EndTime returns the analysis time.
func (h *FileHandler) EndTime() time.Time { return h.analysisTime }

// Metadata returns the metadata read when the handler was created.
func (h *FileHandler) Metadata() Metadata { return h.metadata }

// withMessage opens the file, passes message n to fn and closes the file.
func (h *FileHandler) withMessage(op string, n int, fn func(Message) error) (err error) {
	start := time.Now()
	defer func() { h.metrics.observe(op, time.Since(start)) }()

	f, err := h.opener.Open(h.filename)
	h.metrics.fileOpened(err)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	msg, err := f.Message(n)
	if err != nil {
		return err
	}
	h.metrics.messageDecoded()
	return fn(msg)
}

// analysisTime parses dataDate (YYYYMMDD) and dataTime (HHMM, leading
// zeros dropped) into a UTC time.
func analysisTime(msg Message) (time.Time, error) {
	date, err := intKey(msg, "dataDate")
	if err != nil {
		return time.Time{}, err
	}
	hhmm, err := intKey(msg, "dataTime")
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse("200601021504", fmt.Sprintf("%d%04d", date, hhmm))
	if err != nil {
		return time.Time{}, fmt.Errorf("analysis time: %w", err)
	}
	return t, nil
}

func (h *FileHandler) readMetadata(msg Message) (Metadata, error) {
	md := Metadata{
		Filename:   h.filename,
		DataTime:   h.analysisTime,
		ProjParams: msg.ProjParams(),
	}
	var err error
	if md.ShortName, err = stringKey(msg, "shortName"); err != nil {
		return Metadata{}, err
	}
	if md.LongName, err = stringKey(msg, "name"); err != nil {
		return Metadata{}, err
	}
	if md.Units, err = stringKey(msg, "units"); err != nil {
		return Metadata{}, err
	}
	if md.Nx, err = intKey(msg, "Nx"); err != nil {
		return Metadata{}, err
	}
	if md.Ny, err = intKey(msg, "Ny"); err != nil {
		return Metadata{}, err
	}
	if desc, err := stringKey(msg, "centreDescription"); err == nil {
		md.CentreDescription = desc
	}
	return md, nil
}

// GetAreaDef returns the area definition of the file's grid. The product
// identifier is accepted for symmetry with GetDataset; all products of a
// file share one grid.
func (h *FileHandler) GetAreaDef(productID string) (*AreaDefinition, error) {
	var area *AreaDefinition
	err := h.withMessage("area", 1, func(msg Message) error {
		var err error
		area, err = areaFromMessage(msg)
		return err
	})
	if err != nil {
		h.metrics.decodeError("projection")
		return nil, fmt.Errorf("%w: %s: %w", ErrUnknownProjection, h.filename, err)
	}
	h.log.Debug("area definition",
		"product", productID,
		"width", area.Width,
		"height", area.Height,
		"extent", area.AreaExtent)
	return area, nil
}
