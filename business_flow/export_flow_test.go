package businessflow

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var sampleCourseHit = []byte(`{
	"title": "Intro to Testing",
	"content_type": "course",
	"key": "edX+TestX",
	"aggregation_key": "course:edX+TestX",
	"partners": [{"name": "edX"}, {"name": "Partner Two"}],
	"advertised_course_run": {
		"key": "course-v1:edX+TestX+1T2023",
		"start": "2023-06-01T00:00:00Z",
		"end": "2023-09-01T00:00:00Z",
		"upgrade_deadline": 1685577600,
		"pacing_type": "self_paced",
		"min_effort": 2,
		"max_effort": 6,
		"weeks_to_complete": 8
	},
	"programs": ["MicroMasters"],
	"program_titles": ["Testing at Scale"],
	"level_type": "Introductory",
	"first_enrollable_paid_seat_price": 49,
	"language": "English",
	"marketing_url": "https://example.com/course/testx",
	"short_description": "<p>Learn <b>testing</b></p>",
	"subjects": ["Computer Science"],
	"skills": [{"name": "Unit Testing"}, {"name": "Go"}],
	"outcome": "<ul><li>Write tests</li></ul>",
	"prerequisites_raw": "<p>None</p>",
	"course_runs": [
		{"key": "course-v1:edX+TestX+1T2023", "pacing_type": "self_paced", "availability": "Current",
		 "start": "2023-06-01T00:00:00Z", "min_effort": 2, "max_effort": 6, "weeks_to_complete": 8}
	]
}`)

func TestCourseHitToRow(t *testing.T) {
	row := CourseHitToRow(sampleCourseHit)

	require.Len(t, row, len(CSVCourseHeaders))
	assert.Equal(t, "Intro to Testing", row[0])
	assert.Equal(t, "edX", row[1]) // first partner only
	assert.Equal(t, "2023-06-01", row[2])
	assert.Equal(t, "2023-09-01", row[3])
	assert.Equal(t, "2023-06-01", row[4]) // unix upgrade deadline
	assert.Equal(t, "MicroMasters", row[5])
	assert.Equal(t, "Testing at Scale", row[6])
	assert.Equal(t, "self_paced", row[7])
	assert.Equal(t, "Introductory", row[8])
	assert.Equal(t, float64(49), row[9])
	assert.Equal(t, "English", row[10])
	assert.Equal(t, "https://example.com/course/testx", row[11])
	assert.Equal(t, "Learn testing", row[12])
	assert.Equal(t, "Computer Science", row[13])
	assert.Equal(t, "course-v1:edX+TestX+1T2023", row[14])
	assert.Equal(t, "course:edX+TestX", row[15])
	assert.Equal(t, "Unit Testing, Go", row[16])
	assert.Equal(t, float64(2), row[17])
	assert.Equal(t, float64(6), row[18])
	assert.Equal(t, float64(8), row[19])
	assert.Equal(t, "Write tests", row[20])
	assert.Equal(t, "None", row[21])
}

func TestCourseHitToRowSparse(t *testing.T) {
	row := CourseHitToRow([]byte(`{"title": "Bare Course", "content_type": "course"}`))

	require.Len(t, row, len(CSVCourseHeaders))
	assert.Equal(t, "Bare Course", row[0])
	assert.Nil(t, row[1])  // no partners
	assert.Nil(t, row[2])  // no start
	assert.Nil(t, row[3])  // no end
	assert.Nil(t, row[4])  // no upgrade deadline
	assert.Nil(t, row[7])  // no pacing
	assert.Nil(t, row[14]) // no advertised run key
	assert.Equal(t, "", row[5])
	assert.Equal(t, "", row[12])
	assert.Equal(t, "", row[16])
}

func TestProgramHitToRow(t *testing.T) {
	hit := []byte(`{
		"title": "Testing at Scale",
		"program_type": "MicroMasters",
		"partners": [{"name": "edX"}, {"name": "MIT"}],
		"subtitle": "A program about testing",
		"course_keys": ["edX+TestX", "edX+MockX"]
	}`)

	row := ProgramHitToRow(hit)

	require.Len(t, row, len(CSVProgramHeaders))
	assert.Equal(t, "Testing at Scale", row[0])
	assert.Equal(t, "MicroMasters", row[1])
	assert.Equal(t, "edX, MIT", row[2])
	assert.Equal(t, "A program about testing", row[3])
	assert.Equal(t, 2, row[4])
}

func TestCourseRunToRow(t *testing.T) {
	runs := CourseHitRuns(sampleCourseHit)
	require.Len(t, runs, 1)

	row := CourseRunToRow("edX+TestX", "Intro to Testing", runs[0])

	require.Len(t, row, len(CSVCourseRunHeaders))
	assert.Equal(t, "Intro to Testing", row[0])
	assert.Equal(t, "course-v1:edX+TestX+1T2023", row[1])
	assert.Equal(t, "edX+TestX", row[2])
	assert.Equal(t, "self_paced", row[3])
	assert.Equal(t, "Current", row[4])
	assert.Equal(t, "2023-06-01", row[5])
	assert.Nil(t, row[6]) // no end date
	assert.Nil(t, row[7]) // no upgrade deadline
	assert.Equal(t, float64(8), row[10])
}

func TestCourseRunToRowStringDeadline(t *testing.T) {
	run := gjson.Parse(`{"key": "run-1", "upgrade_deadline": "2023-08-15T23:59:59Z"}`)

	row := CourseRunToRow("edX+TestX", "Intro", run)
	assert.Equal(t, "2023-08-15", row[7])
}

type stubSearchService struct {
	hits []json.RawMessage
	err  error
}

func (s *stubSearchService) Search(ctx context.Context, query string, facets map[string][]string) ([]json.RawMessage, error) {
	return s.hits, s.err
}

func TestDownloadSearchResultsCSV(t *testing.T) {
	programHit := json.RawMessage(`{"title": "Prog", "content_type": "program", "course_keys": ["a"]}`)
	flow := NewExportFlow(&stubSearchService{hits: []json.RawMessage{sampleCourseHit, programHit}})

	filename, data, err := flow.DownloadSearchResultsCSV(context.Background(), "testing", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	// Spacer lines between sections are dropped by the reader, leaving
	// header+row pairs for courses, programs, and course runs.
	require.Len(t, records, 6)
	assert.Equal(t, CSVCourseHeaders, records[0])
	assert.Equal(t, "Intro to Testing", records[1][0])
	assert.Equal(t, "49", records[1][9])
	assert.Equal(t, CSVProgramHeaders, records[2])
	assert.Equal(t, "Prog", records[3][0])
	assert.Equal(t, CSVCourseRunHeaders, records[4])
	assert.Equal(t, "course-v1:edX+TestX+1T2023", records[5][1])
}

func TestDownloadSearchResultsExcel(t *testing.T) {
	flow := NewExportFlow(&stubSearchService{hits: []json.RawMessage{sampleCourseHit}})

	filename, data, err := flow.DownloadSearchResultsExcel(context.Background(), "testing", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))
	assert.NotEmpty(t, data)
}
