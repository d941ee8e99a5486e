package importer

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/callforge/callforge/pkg/models"
)

// MaxFileSize is the upload limit checked before any parse attempt
const MaxFileSize = 10 * 1024 * 1024 // 10 MB

// Import failure taxonomy. Any remaining parse exception aborts the
// whole import; there is no partial-row recovery.
var (
	ErrInvalidFileType = errors.New("invalid file type: only .csv, .xlsx and .xls are supported")
	ErrFileTooLarge    = errors.New("file too large: limit is 10 MB")
	ErrEmptyFile       = errors.New("file must have at least a header and one data row")
	ErrMalformedFile   = errors.New("malformed file")
)

// Sources stamped per file format
const (
	SourceCSV   = "csv_import"
	SourceExcel = "excel_import"
)

// Service converts uploaded CSV/XLSX files into candidate lead
// records. It is a pure transform: the caller persists the result.
type Service struct{}

// NewService creates a new import parser
func NewService() *Service {
	return &Service{}
}

// Result holds the outcome of parsing one uploaded file
type Result struct {
	Leads     []models.Lead `json:"leads"`
	TotalRows int           `json:"total_rows"`
	Skipped   int           `json:"skipped"`
	Format    string        `json:"format"`
}

// fallbackColumns maps well-known fields to positional columns used
// when a named header is absent
var fallbackColumns = map[string]int{
	"name":    0,
	"email":   1,
	"phone":   2,
	"company": 3,
}

// ParseFile validates and parses an uploaded file into candidate
// leads stamped with the importing user's identity. Validation order:
// extension, size, then parse.
func (s *Service) ParseFile(filename string, data []byte, userID string) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv", ".xlsx", ".xls":
	default:
		return nil, ErrInvalidFileType
	}

	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	if ext == ".csv" {
		return s.parseCSV(data, userID)
	}
	return s.parseSpreadsheet(data, userID)
}

// parseCSV parses delimited text. The first non-empty line is the
// header row; subsequent lines map by header name with positional
// fallback.
func (s *Service) parseCSV(data []byte, userID string) (*Result, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil, ErrEmptyFile
	}

	headers := splitRow(lines[0])
	for i := range headers {
		headers[i] = strings.ToLower(headers[i])
	}
	headerMap := buildHeaderMap(headers)

	result := &Result{Format: "csv"}
	now := time.Now().UTC()

	for _, line := range lines[1:] {
		result.TotalRows++
		values := splitRow(line)
		if !acceptRow(values) {
			result.Skipped++
			continue
		}
		result.Leads = append(result.Leads, buildLead(values, headerMap, userID, SourceCSV, now))
	}

	return result, nil
}

// parseSpreadsheet reads the first sheet of an XLSX/XLS workbook,
// treating row 0 as headers and stringifying every cell
func (s *Service) parseSpreadsheet(data []byte, userID string) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyFile
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	headerMap := buildHeaderMap(headers)

	result := &Result{Format: "excel"}
	now := time.Now().UTC()

	for _, row := range rows[1:] {
		result.TotalRows++
		values := make([]string, len(row))
		for i, cell := range row {
			values[i] = strings.TrimSpace(cell)
		}
		if !acceptRow(values) {
			result.Skipped++
			continue
		}
		result.Leads = append(result.Leads, buildLead(values, headerMap, userID, SourceExcel, now))
	}

	return result, nil
}

// splitRow splits a delimited line on commas, trimming whitespace and
// stripping quotes from each value
func splitRow(line string) []string {
	parts := strings.Split(strings.TrimRight(line, "\r"), ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(strings.ReplaceAll(parts[i], `"`, ""))
	}
	return parts
}

// acceptRow keeps a row with at least 2 values and at least one
// non-empty value; everything else is silently dropped
func acceptRow(values []string) bool {
	if len(values) < 2 {
		return false
	}
	for _, v := range values {
		if v != "" {
			return true
		}
	}
	return false
}

func buildHeaderMap(headers []string) map[string]int {
	m := make(map[string]int, len(headers))
	for i, h := range headers {
		if h != "" {
			m[h] = i
		}
	}
	return m
}

// buildLead maps one accepted row to a candidate lead with defaulted
// fields, stamped with the importing user and a creation timestamp
func buildLead(values []string, headerMap map[string]int, userID, source string, now time.Time) models.Lead {
	getField := func(name string) string {
		if idx, ok := headerMap[name]; ok && idx < len(values) {
			return values[idx]
		}
		if idx, ok := fallbackColumns[name]; ok && idx < len(values) {
			return values[idx]
		}
		return ""
	}

	lead := models.Lead{
		Name:      getField("name"),
		Email:     getField("email"),
		Phone:     getField("phone"),
		Company:   getField("company"),
		Source:    getField("source"),
		Status:    getField("status"),
		Notes:     getField("notes"),
		Priority:  parseIntDefault(getField("priority"), 1),
		LeadScore: parseIntDefault(getField("lead_score"), 0),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if lead.Name == "" {
		lead.Name = "Unknown"
	}
	if lead.Source == "" {
		lead.Source = source
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	return lead
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// decodeText normalizes uploaded CSV bytes to UTF-8. Excel exports
// arrive as UTF-8 with a BOM or as UTF-16.
func decodeText(data []byte) (string, error) {
	if len(data) >= 2 {
		if (data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF) {
			decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
			decoded, _, err := transform.Bytes(decoder, data)
			if err != nil {
				return "", err
			}
			return string(decoded), nil
		}
	}
	// Strip UTF-8 BOM if present
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	return string(data), nil
}

// TemplateCSV is the downloadable import template with two example rows
const TemplateCSV = "name,email,phone,company,source,status,notes,priority,lead_score\n" +
	"John Doe,john@example.com,+1234567890,Example Corp,Website,new,Sample lead,1,50\n" +
	"Jane Smith,jane@example.com,+0987654321,Tech Inc,Social Media,warm,Interested prospect,2,75"
