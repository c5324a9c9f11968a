package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"labflow/domain/experiment"

	"github.com/xuri/excelize/v2"
)

// Dataset is the result of importing a tabular file: one parameter per
// column and one map per data row.
type Dataset struct {
	Parameters []experiment.Parameter
	Rows       []experiment.DataRow
}

// DataReader reads experiment data from Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadData reads the file into parameters and data rows
func (r *DataReader) ReadData() (*Dataset, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	case "xlsx":
		return r.readExcel()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

func (r *DataReader) readExcel() (*Dataset, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	log.Printf("[DataReader] Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheet := f.GetSheetName(0)
	if sheet == "" {
		sheet = "Sheet1"
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel file must have at least a header row and one data row")
	}
	return r.processRows(rows)
}

func (r *DataReader) readCSV() (*Dataset, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}
	return r.processRows(rows)
}

// processRows turns raw string rows into typed parameters and data rows.
// The header row names the parameters; a trailing "(unit)" in a header is
// split off into the parameter unit. Numeric-looking cells are stored as
// float64, everything else as the trimmed string. Empty cells are omitted
// so downstream statistics treat them as missing.
func (r *DataReader) processRows(rows [][]string) (*Dataset, error) {
	headerRow := rows[0]
	params := make([]experiment.Parameter, 0, len(headerRow))
	for _, header := range headerRow {
		name, unit := splitHeader(header)
		if name == "" {
			continue
		}
		params = append(params, experiment.Parameter{Name: name, Unit: unit})
	}
	if len(params) == 0 {
		return nil, fmt.Errorf("no named columns in header row")
	}

	dataRows := make([]experiment.DataRow, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowData := make(experiment.DataRow)

		col := 0
		for j, cell := range row {
			if j >= len(headerRow) || strings.TrimSpace(headerRow[j]) == "" {
				continue
			}
			if col >= len(params) {
				break
			}
			value := strings.TrimSpace(cell)
			if value != "" {
				rowData[params[col].Name] = coerceCell(value)
			}
			col++
		}
		dataRows = append(dataRows, rowData)
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(params), len(dataRows))

	return &Dataset{Parameters: params, Rows: dataRows}, nil
}

// splitHeader separates "Temperature (C)" into name and unit
func splitHeader(header string) (string, string) {
	header = strings.TrimSpace(header)
	if strings.HasSuffix(header, ")") {
		if open := strings.LastIndex(header, "("); open > 0 {
			name := strings.TrimSpace(header[:open])
			unit := strings.TrimSpace(header[open+1 : len(header)-1])
			if name != "" {
				return name, unit
			}
		}
	}
	return header, ""
}

func coerceCell(value string) interface{} {
	if v, err := strconv.ParseFloat(value, 64); err == nil {
		return v
	}
	return value
}
