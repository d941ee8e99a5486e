package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testUserID = "f7f9d25e-991d-4a8c-ae1d-47e0a8a64c01"

func TestParseFile_ValidationOrder(t *testing.T) {
	s := NewService()

	t.Run("rejects unknown extension before parsing", func(t *testing.T) {
		_, err := s.ParseFile("leads.txt", []byte("name,email\na,b"), testUserID)
		assert.ErrorIs(t, err, ErrInvalidFileType)
	})

	t.Run("rejects oversized file before parsing", func(t *testing.T) {
		big := make([]byte, MaxFileSize+1)
		_, err := s.ParseFile("leads.csv", big, testUserID)
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})
}

func TestParseCSV(t *testing.T) {
	s := NewService()

	t.Run("header mapping with defaults", func(t *testing.T) {
		csv := "name,email,phone,company\n" +
			"Alice,alice@example.com,555-0100,Alpha Inc\n" +
			"Bob,bob@example.com,555-0101,Beta LLC\n"

		result, err := s.ParseFile("leads.csv", []byte(csv), testUserID)
		require.NoError(t, err)
		require.Len(t, result.Leads, 2)
		assert.Equal(t, 2, result.TotalRows)
		assert.Equal(t, 0, result.Skipped)

		lead := result.Leads[0]
		assert.Equal(t, "Alice", lead.Name)
		assert.Equal(t, "alice@example.com", lead.Email)
		assert.Equal(t, "Alpha Inc", lead.Company)
		assert.Equal(t, "new", lead.Status)
		assert.Equal(t, SourceCSV, lead.Source)
		assert.Equal(t, 1, lead.Priority)
		assert.Equal(t, 0, lead.LeadScore)
		assert.Equal(t, testUserID, lead.UserID)
		assert.False(t, lead.CreatedAt.IsZero())
	})

	t.Run("positional fallback without named headers", func(t *testing.T) {
		csv := "col_a,col_b,col_c,col_d\n" +
			"Carol,carol@example.com,555-0102,Gamma Co\n"

		result, err := s.ParseFile("leads.csv", []byte(csv), testUserID)
		require.NoError(t, err)
		require.Len(t, result.Leads, 1)
		assert.Equal(t, "Carol", result.Leads[0].Name)
		assert.Equal(t, "carol@example.com", result.Leads[0].Email)
		assert.Equal(t, "555-0102", result.Leads[0].Phone)
		assert.Equal(t, "Gamma Co", result.Leads[0].Company)
	})

	t.Run("rows with fewer than two values are dropped", func(t *testing.T) {
		csv := "name,email\n" +
			"solitary-value\n" +
			"Dave,dave@example.com\n"

		result, err := s.ParseFile("leads.csv", []byte(csv), testUserID)
		require.NoError(t, err)
		assert.Len(t, result.Leads, 1)
		assert.Equal(t, 1, result.Skipped)
	})

	t.Run("fully blank rows are dropped", func(t *testing.T) {
		csv := "name,email\nEve,eve@example.com\n , \n"

		result, err := s.ParseFile("leads.csv", []byte(csv), testUserID)
		require.NoError(t, err)
		assert.Len(t, result.Leads, 1)
		assert.Equal(t, 1, result.Skipped)
	})

	t.Run("empty name falls back to Unknown", func(t *testing.T) {
		csv := "name,email\n,anon@example.com\n"

		result, err := s.ParseFile("leads.csv", []byte(csv), testUserID)
		require.NoError(t, err)
		require.Len(t, result.Leads, 1)
		assert.Equal(t, "Unknown", result.Leads[0].Name)
	})

	t.Run("fewer than two lines fails with EmptyFile", func(t *testing.T) {
		_, err := s.ParseFile("leads.csv", []byte("name,email\n"), testUserID)
		assert.ErrorIs(t, err, ErrEmptyFile)

		_, err = s.ParseFile("leads.csv", []byte(""), testUserID)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("quotes are stripped and CRLF tolerated", func(t *testing.T) {
		csv := "name,email,phone,company\r\n\"Frank\",\"frank@example.com\",\"555-0103\",\"Delta\"\r\n"

		result, err := s.ParseFile("leads.csv", []byte(csv), testUserID)
		require.NoError(t, err)
		require.Len(t, result.Leads, 1)
		assert.Equal(t, "Frank", result.Leads[0].Name)
		assert.Equal(t, "Delta", result.Leads[0].Company)
	})

	t.Run("UTF-8 BOM is stripped", func(t *testing.T) {
		csv := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,email\nGrace,grace@example.com\n")...)

		result, err := s.ParseFile("leads.csv", csv, testUserID)
		require.NoError(t, err)
		require.Len(t, result.Leads, 1)
		assert.Equal(t, "Grace", result.Leads[0].Name)
	})
}

func TestParseCSV_TemplateRoundTrip(t *testing.T) {
	s := NewService()

	result, err := s.ParseFile("leads_template.csv", []byte(TemplateCSV), testUserID)
	require.NoError(t, err)
	require.Len(t, result.Leads, 2)

	first, second := result.Leads[0], result.Leads[1]

	assert.Equal(t, "John Doe", first.Name)
	assert.Equal(t, 1, first.Priority)
	assert.Equal(t, 50, first.LeadScore)
	assert.Equal(t, "new", first.Status)

	assert.Equal(t, "Jane Smith", second.Name)
	assert.Equal(t, 2, second.Priority)
	assert.Equal(t, 75, second.LeadScore)
	assert.Equal(t, "warm", second.Status)

	// Source column values win over the per-format default; the
	// default kicks in only when the column is absent
	assert.Equal(t, "Website", first.Source)
	assert.Equal(t, "Social Media", second.Source)
}

func TestParseXLSX(t *testing.T) {
	s := NewService()

	buildWorkbook := func(t *testing.T, rows [][]interface{}) []byte {
		f := excelize.NewFile()
		sheet := f.GetSheetName(0)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet, cell, &row))
		}
		var buf bytes.Buffer
		require.NoError(t, f.Write(&buf))
		return buf.Bytes()
	}

	t.Run("first sheet with header row", func(t *testing.T) {
		data := buildWorkbook(t, [][]interface{}{
			{"Name", "Email", "Phone", "Company", "priority", "lead_score"},
			{"Henry", "henry@example.com", "555-0104", "Epsilon", 3, 42},
		})

		result, err := s.ParseFile("leads.xlsx", data, testUserID)
		require.NoError(t, err)
		require.Len(t, result.Leads, 1)

		lead := result.Leads[0]
		assert.Equal(t, "Henry", lead.Name)
		assert.Equal(t, "henry@example.com", lead.Email)
		assert.Equal(t, SourceExcel, lead.Source)
		assert.Equal(t, 3, lead.Priority)
		assert.Equal(t, 42, lead.LeadScore)
	})

	t.Run("header only fails with EmptyFile", func(t *testing.T) {
		data := buildWorkbook(t, [][]interface{}{{"name", "email"}})

		_, err := s.ParseFile("leads.xlsx", data, testUserID)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("unreadable bytes fail with MalformedFile", func(t *testing.T) {
		_, err := s.ParseFile("leads.xlsx", []byte("this is not a zip archive"), testUserID)
		assert.ErrorIs(t, err, ErrMalformedFile)
	})
}

func TestTemplateCSVShape(t *testing.T) {
	lines := strings.Split(TemplateCSV, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,email,phone,company,source,status,notes,priority,lead_score", lines[0])
}
