package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"time"

	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"

	"github.com/openlearnhq/enterprise-catalog/app/services"
	"github.com/openlearnhq/enterprise-catalog/utils"
)

// Header rows for the tabular search-result exports. Column order is
// part of the download contract consumed by enterprise admins.
var (
	CSVCourseHeaders = []string{
		"Title",
		"Partner Name",
		"Start",
		"End",
		"Verified Upgrade Deadline",
		"Program Type",
		"Program Name",
		"Pacing",
		"Level",
		"Price",
		"Language",
		"URL",
		"Short Description",
		"Subjects",
		"Key",
		"Short Key",
		"Skills",
		"Min Effort",
		"Max Effort",
		"Length",
		"What You’ll Learn",
		"Pre-requisites",
	}

	CSVProgramHeaders = []string{
		"Title",
		"Program Type",
		"Partner",
		"Short Description",
		"Number of courses",
	}

	CSVCourseRunHeaders = []string{
		"Title",
		"Key",
		"Course Short Key",
		"Pacing",
		"Availability",
		"Start Date",
		"End Date",
		"Verified Upgrade Deadline",
		"Min Effort",
		"Max Effort",
		"Length",
	}
)

// ExportFlow produces downloadable projections of search results
type ExportFlow interface {
	DownloadSearchResultsCSV(ctx context.Context, query string, facets map[string][]string) (string, []byte, error)
	DownloadSearchResultsExcel(ctx context.Context, query string, facets map[string][]string) (string, []byte, error)
}

// ExportFlowImpl implements search-result exports over the search service
type ExportFlowImpl struct {
	searchService services.SearchService
}

// NewExportFlow creates a new export flow instance
func NewExportFlow(searchService services.SearchService) ExportFlow {
	return &ExportFlowImpl{searchService: searchService}
}

// cell converts a gjson lookup into an export cell, nil when absent
func cell(result gjson.Result) any {
	if !result.Exists() {
		return nil
	}
	return result.Value()
}

// joinStrings flattens an array of strings into a ", " joined cell
func joinStrings(result gjson.Result) string {
	var buf bytes.Buffer
	for i, item := range result.Array() {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(item.String())
	}
	return buf.String()
}

// joinField flattens an array of objects into a ", " joined cell of one sub-field
func joinField(result gjson.Result, field string) string {
	var buf bytes.Buffer
	for i, item := range result.Array() {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(item.Get(field).String())
	}
	return buf.String()
}

// dayCell normalizes a date field to YYYY-MM-DD. ISO-ish strings and
// unix-second numbers both occur in hit payloads; anything unparseable
// or missing yields a nil cell.
func dayCell(result gjson.Result) any {
	if !result.Exists() || result.String() == "" {
		return nil
	}
	if result.Type == gjson.Number {
		return utils.UnixDay(result.Int())
	}
	day, err := utils.ParseDay(result.String())
	if err != nil {
		return nil
	}
	return day
}

// CourseHitToRow constructs a tabular row from a single course search hit
func CourseHitToRow(hit []byte) []any {
	advertisedRun := gjson.GetBytes(hit, "advertised_course_run")

	row := make([]any, 0, len(CSVCourseHeaders))
	row = append(row, cell(gjson.GetBytes(hit, "title")))
	row = append(row, cell(gjson.GetBytes(hit, "partners.0.name")))
	row = append(row, dayCell(advertisedRun.Get("start")))
	row = append(row, dayCell(advertisedRun.Get("end")))
	row = append(row, dayCell(advertisedRun.Get("upgrade_deadline")))
	row = append(row, joinStrings(gjson.GetBytes(hit, "programs")))
	row = append(row, joinStrings(gjson.GetBytes(hit, "program_titles")))
	row = append(row, cell(advertisedRun.Get("pacing_type")))
	row = append(row, cell(gjson.GetBytes(hit, "level_type")))
	row = append(row, cell(gjson.GetBytes(hit, "first_enrollable_paid_seat_price")))
	row = append(row, cell(gjson.GetBytes(hit, "language")))
	row = append(row, cell(gjson.GetBytes(hit, "marketing_url")))
	row = append(row, utils.StripTags(gjson.GetBytes(hit, "short_description").String()))
	row = append(row, joinStrings(gjson.GetBytes(hit, "subjects")))
	row = append(row, cell(advertisedRun.Get("key")))
	row = append(row, cell(gjson.GetBytes(hit, "aggregation_key")))
	row = append(row, joinField(gjson.GetBytes(hit, "skills"), "name"))
	row = append(row, cell(advertisedRun.Get("min_effort")))
	row = append(row, cell(advertisedRun.Get("max_effort")))
	row = append(row, cell(advertisedRun.Get("weeks_to_complete")))
	row = append(row, utils.StripTags(gjson.GetBytes(hit, "outcome").String()))
	row = append(row, utils.StripTags(gjson.GetBytes(hit, "prerequisites_raw").String()))
	return row
}

// ProgramHitToRow constructs a tabular row from a single program search hit
func ProgramHitToRow(hit []byte) []any {
	row := make([]any, 0, len(CSVProgramHeaders))
	row = append(row, cell(gjson.GetBytes(hit, "title")))
	row = append(row, cell(gjson.GetBytes(hit, "program_type")))
	row = append(row, joinField(gjson.GetBytes(hit, "partners"), "name"))
	row = append(row, cell(gjson.GetBytes(hit, "subtitle")))
	row = append(row, len(gjson.GetBytes(hit, "course_keys").Array()))
	return row
}

// CourseHitRuns extracts the nested course runs from a course hit
func CourseHitRuns(hit []byte) []gjson.Result {
	return gjson.GetBytes(hit, "course_runs").Array()
}

// CourseRunToRow constructs a tabular row for one course run nested
// under a course hit, carrying the parent course's key and title
func CourseRunToRow(courseKey, courseTitle string, courseRun gjson.Result) []any {
	row := make([]any, 0, len(CSVCourseRunHeaders))
	row = append(row, courseTitle)
	row = append(row, cell(courseRun.Get("key")))
	row = append(row, courseKey)
	row = append(row, cell(courseRun.Get("pacing_type")))
	row = append(row, cell(courseRun.Get("availability")))
	row = append(row, dayCell(courseRun.Get("start")))
	row = append(row, dayCell(courseRun.Get("end")))
	row = append(row, dayCell(courseRun.Get("upgrade_deadline")))
	row = append(row, cell(courseRun.Get("min_effort")))
	row = append(row, cell(courseRun.Get("max_effort")))
	row = append(row, cell(courseRun.Get("weeks_to_complete")))
	return row
}

// searchRows runs the search and projects every hit by content type
func (s *ExportFlowImpl) searchRows(ctx context.Context, query string, facets map[string][]string) (courseRows, programRows, courseRunRows [][]any, err error) {
	hits, err := s.searchService.Search(ctx, query, facets)
	if err != nil {
		return nil, nil, nil, NewBusinessError("SEARCH_FAILED", "Failed to query the search index", err)
	}

	for _, hit := range hits {
		switch gjson.GetBytes(hit, "content_type").String() {
		case "course":
			courseRows = append(courseRows, CourseHitToRow(hit))
			courseKey := gjson.GetBytes(hit, "key").String()
			courseTitle := gjson.GetBytes(hit, "title").String()
			for _, courseRun := range CourseHitRuns(hit) {
				courseRunRows = append(courseRunRows, CourseRunToRow(courseKey, courseTitle, courseRun))
			}
		case "program":
			programRows = append(programRows, ProgramHitToRow(hit))
		default:
			log.Printf("Skipping search hit with unrecognized content type %q", gjson.GetBytes(hit, "content_type").String())
		}
	}
	return courseRows, programRows, courseRunRows, nil
}

func cellString(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// DownloadSearchResultsCSV exports the search results as a CSV file
// with one section per content shape
func (s *ExportFlowImpl) DownloadSearchResultsCSV(ctx context.Context, query string, facets map[string][]string) (string, []byte, error) {
	courseRows, programRows, courseRunRows, err := s.searchRows(ctx, query, facets)
	if err != nil {
		return "", nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	writeSection := func(headers []string, rows [][]any) error {
		if err := writer.Write(headers); err != nil {
			return err
		}
		for _, row := range rows {
			record := make([]string, len(row))
			for i, value := range row {
				record[i] = cellString(value)
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
		return nil
	}

	sections := []struct {
		headers []string
		rows    [][]any
	}{
		{CSVCourseHeaders, courseRows},
		{CSVProgramHeaders, programRows},
		{CSVCourseRunHeaders, courseRunRows},
	}
	for i, section := range sections {
		if i > 0 {
			if err := writer.Write([]string{}); err != nil {
				return "", nil, NewBusinessError("EXPORT_WRITE_FAILED", "Failed to write CSV export", err)
			}
		}
		if err := writeSection(section.headers, section.rows); err != nil {
			return "", nil, NewBusinessError("EXPORT_WRITE_FAILED", "Failed to write CSV export", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", nil, NewBusinessError("EXPORT_WRITE_FAILED", "Failed to write CSV export", err)
	}

	filename := fmt.Sprintf("enterprise-catalog-export-%s.csv", time.Now().UTC().Format("2006-01-02"))
	return filename, buf.Bytes(), nil
}

// DownloadSearchResultsExcel exports the search results as a workbook
// with one sheet per content shape
func (s *ExportFlowImpl) DownloadSearchResultsExcel(ctx context.Context, query string, facets map[string][]string) (string, []byte, error) {
	courseRows, programRows, courseRunRows, err := s.searchRows(ctx, query, facets)
	if err != nil {
		return "", nil, err
	}

	workbook := excelize.NewFile()

	writeSheet := func(sheetName string, headers []string, rows [][]any) error {
		if _, err := workbook.NewSheet(sheetName); err != nil {
			return err
		}
		headerRow := make([]any, len(headers))
		for i, header := range headers {
			headerRow[i] = header
		}
		startCell, err := excelize.CoordinatesToCellName(1, 1)
		if err != nil {
			return err
		}
		if err := workbook.SetSheetRow(sheetName, startCell, &headerRow); err != nil {
			return err
		}
		for rowIdx, row := range rows {
			rowCell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := workbook.SetSheetRow(sheetName, rowCell, &row); err != nil {
				return err
			}
		}
		return nil
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]any
	}{
		{"Courses", CSVCourseHeaders, courseRows},
		{"Programs", CSVProgramHeaders, programRows},
		{"Course Runs", CSVCourseRunHeaders, courseRunRows},
	}
	for _, sheet := range sheets {
		if err := writeSheet(sheet.name, sheet.headers, sheet.rows); err != nil {
			return "", nil, NewBusinessError("EXPORT_WRITE_FAILED", "Failed to write Excel export", err)
		}
	}
	_ = workbook.DeleteSheet("Sheet1")

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_WRITE_FAILED", "Failed to write Excel export", err)
	}

	filename := fmt.Sprintf("enterprise-catalog-export-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	return filename, buf.Bytes(), nil
}
