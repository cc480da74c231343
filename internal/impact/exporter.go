package impact

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter renders the impact aggregate as a spreadsheet.
type ExcelExporter struct {
	sheetName string
}

// NewExcelExporter creates an impact report exporter.
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{sheetName: "Impact"}
}

// Export writes an xlsx report of the aggregate to w.
func (e *ExcelExporter) Export(m *Metrics, w io.Writer) error {
	file := excelize.NewFile()
	file.SetSheetName("Sheet1", e.sheetName)

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"007A4D"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	rows := [][2]interface{}{
		{"Water access improved (people)", m.WaterAccessImproved},
		{"Schools built", m.SchoolsBuilt},
		{"Health clinics supported", m.HealthClinicsSupported},
		{"Jobs created", m.JobsCreated},
		{"Communities reached", m.CommunitiesReached},
	}

	file.SetCellValue(e.sheetName, "A1", "Metric")
	file.SetCellValue(e.sheetName, "B1", "Value")
	file.SetCellStyle(e.sheetName, "A1", "B1", headerStyle)

	row := 2
	for _, r := range rows {
		file.SetCellValue(e.sheetName, fmt.Sprintf("A%d", row), r[0])
		file.SetCellValue(e.sheetName, fmt.Sprintf("B%d", row), r[1])
		row++
	}

	row++
	file.SetCellValue(e.sheetName, fmt.Sprintf("A%d", row), "Currency")
	file.SetCellValue(e.sheetName, fmt.Sprintf("B%d", row), "Accumulated")
	file.SetCellStyle(e.sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
	row++
	for _, code := range sortedKeys(m.LocalCurrencyImpact) {
		file.SetCellValue(e.sheetName, fmt.Sprintf("A%d", row), code)
		file.SetCellValue(e.sheetName, fmt.Sprintf("B%d", row), m.LocalCurrencyImpact[code])
		row++
	}

	row++
	file.SetCellValue(e.sheetName, fmt.Sprintf("A%d", row), "Category")
	file.SetCellValue(e.sheetName, fmt.Sprintf("B%d", row), "Donations")
	file.SetCellStyle(e.sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
	row++
	categories := make([]string, 0, len(m.ProjectsByCategory))
	for c := range m.ProjectsByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		file.SetCellValue(e.sheetName, fmt.Sprintf("A%d", row), c)
		file.SetCellValue(e.sheetName, fmt.Sprintf("B%d", row), m.ProjectsByCategory[c])
		row++
	}

	row += 2
	file.SetCellValue(e.sheetName, fmt.Sprintf("A%d", row),
		fmt.Sprintf("Generated %s", time.Now().UTC().Format("2006-01-02 15:04 UTC")))

	file.SetColWidth(e.sheetName, "A", "A", 36)
	file.SetColWidth(e.sheetName, "B", "B", 18)

	return file.Write(w)
}

func sortedKeys(m CurrencyMap) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
