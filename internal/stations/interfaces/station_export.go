package interfaces

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	stations "evcharge-cloud/internal/stations/domain"
)

// BuildStationsCSV renders a station list as CSV.
func BuildStationsCSV(list []*stations.Station) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"id", "name", "longitude", "latitude", "status", "power_output_kw", "connector_type", "created_by", "created_at"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}
	for _, station := range list {
		record := []string{
			station.ID,
			station.Name,
			strconv.FormatFloat(station.Location.Longitude(), 'f', -1, 64),
			strconv.FormatFloat(station.Location.Latitude(), 'f', -1, 64),
			string(station.Status),
			strconv.FormatFloat(station.PowerOutput, 'f', 2, 64),
			station.ConnectorType,
			station.CreatedBy,
			station.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildStationsXLSX renders a station list as a workbook.
func BuildStationsXLSX(list []*stations.Station) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "stations"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name", "Longitude", "Latitude", "Status", "Power (kW)", "Connector", "Created By", "Created At"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, cell, header)
	}
	for rowIdx, station := range list {
		values := []any{
			station.ID,
			station.Name,
			station.Location.Longitude(),
			station.Location.Latitude(),
			string(station.Status),
			station.PowerOutput,
			station.ConnectorType,
			station.CreatedBy,
			station.CreatedAt.Format(time.RFC3339),
		}
		for colIdx, value := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildStationsPDF renders a station list as a minimal PDF table.
func BuildStationsPDF(list []*stations.Station) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Charging Stations")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(60, 6, "Name", "1", 0, "L", false, 0, "")
	pdf.CellFormat(55, 6, "Coordinates", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Power (kW)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Connector", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, station := range list {
		coords := fmt.Sprintf("%.6f, %.6f", station.Location.Longitude(), station.Location.Latitude())
		pdf.CellFormat(60, 6, station.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(55, 6, coords, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, string(station.Status), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", station.PowerOutput), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, station.ConnectorType, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
