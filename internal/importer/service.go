package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/lebraggaa/spool-tracker/pkg/config"
	"github.com/lebraggaa/spool-tracker/pkg/db/models"
	pkgerrors "github.com/lebraggaa/spool-tracker/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Summary reports what a bulk import did.
type Summary struct {
	TotalRows int      `json:"total_rows"`
	Created   int      `json:"created"`
	Existing  int      `json:"existing"`
	Skipped   int      `json:"skipped"`
	Tags      []string `json:"tags,omitempty"`
}

// Service ingests spreadsheets of spool tags and registers each tag.
type Service interface {
	Import(ctx context.Context, filename string, r io.Reader) (*Summary, error)
}

type spoolRepository interface {
	GetOrCreateByTag(ctx context.Context, tag string) (*models.Spool, bool, error)
}

type service struct {
	spools spoolRepository
	cfg    config.ImportConfig
}

// ServiceParams bundles the dependencies required to build an import service.
type ServiceParams struct {
	SpoolRepo spoolRepository
	Config    config.ImportConfig
}

// NewService constructs the bulk import service.
func NewService(params ServiceParams) (Service, error) {
	if params.SpoolRepo == nil {
		return nil, fmt.Errorf("spool repository is required")
	}
	return &service{spools: params.SpoolRepo, cfg: params.Config}, nil
}

// Import parses the uploaded file, locates the tag column by its header, and
// registers every tag it finds. Rows are processed best-effort: blank cells
// count as skipped instead of failing the whole upload.
func (s *service) Import(ctx context.Context, filename string, r io.Reader) (*Summary, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		rows, err = readXLSX(r)
	case ".csv":
		rows, err = readCSV(r)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported file type").
			WithDetails(map[string]any{"filename": filename, "allowed": []string{".xlsx", ".csv"}})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse upload")
	}

	headerRow, tagCol, found := s.findTagColumn(rows)
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tag column not found").
			WithDetails(map[string]any{
				"keyword":   s.headerKeyword(),
				"scan_rows": s.headerScanRows(),
			})
	}

	summary := &Summary{}
	for _, row := range rows[headerRow+1:] {
		summary.TotalRows++
		if tagCol >= len(row) {
			summary.Skipped++
			continue
		}
		tag := strings.TrimSpace(row[tagCol])
		if tag == "" {
			summary.Skipped++
			continue
		}

		_, created, err := s.spools.GetOrCreateByTag(ctx, tag)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "register imported spool")
		}
		if created {
			summary.Created++
		} else {
			summary.Existing++
		}
		summary.Tags = append(summary.Tags, tag)
	}
	return summary, nil
}

// findTagColumn scans the leading rows for the first cell whose text contains
// the configured keyword, case-insensitively. That cell marks both the header
// row and the tag column.
func (s *service) findTagColumn(rows [][]string) (headerRow, tagCol int, found bool) {
	keyword := strings.ToLower(s.headerKeyword())
	scanRows := s.headerScanRows()

	for i, row := range rows {
		if i >= scanRows {
			break
		}
		for j, cell := range row {
			if strings.Contains(strings.ToLower(cell), keyword) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func (s *service) headerKeyword() string {
	if s.cfg.HeaderKeyword == "" {
		return "isom"
	}
	return s.cfg.HeaderKeyword
}

func (s *service) headerScanRows() int {
	if s.cfg.HeaderScanRows <= 0 {
		return 9
	}
	return s.cfg.HeaderScanRows
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return rows, nil
}
