package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/openswoop/coursebuilder/pkg/report"
	"google.golang.org/api/googleapi"
)

const gradeStatsTable = "grade_stats"

type BigQuery struct {
	ctx     context.Context
	client  *bigquery.Client
	dataset *bigquery.Dataset
}

func NewBigQuery(ctx context.Context, projectID, datasetID string) (BigQuery, error) {
	var bq BigQuery

	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return bq, fmt.Errorf("failed to create client: %w", err)
	}

	dataset := client.Dataset(datasetID)
	if err := dataset.Create(ctx, nil); err != nil {
		if !isDuplicateError(err) {
			return bq, fmt.Errorf("failed to create dataset: %w", err)
		}
	}

	bq = BigQuery{ctx, client, dataset}
	return bq, nil
}

// InsertGradeStats merges per-course statistics, replacing the numbers of
// courses that were already exported.
func (bq BigQuery) InsertGradeStats(rows []report.GradeRow) error {
	matchClause := `
		WHEN MATCHED THEN
		  UPDATE SET total = s.total, a = s.a, a_minus = s.a_minus, b_plus = s.b_plus,
		    b = s.b, b_minus = s.b_minus, c_plus = s.c_plus, c = s.c, c_minus = s.c_minus,
		    d_plus = s.d_plus, d = s.d, f = s.f,
		    average_gpa = s.average_gpa, average_grade = s.average_grade`
	return bq.insert(report.GradeRow{}, gradeStatsTable, rows, matchClause)
}

func (bq BigQuery) insert(st interface{}, tableName string, data interface{}, whenClause string) error {
	schema, err := bigquery.InferSchema(st)
	if err != nil {
		return fmt.Errorf("failed to infer schema: %w", err)
	}

	table := bq.dataset.Table(tableName)
	if err := table.Create(bq.ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		if !isDuplicateError(err) {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// Stage rows in a fresh table so the merge can be audited afterwards
	tempName := tableName + "_" + strconv.Itoa(int(time.Now().Unix()))
	newArrivals := bq.dataset.Table(tempName)
	if err := newArrivals.Create(bq.ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		if !isDuplicateError(err) {
			return fmt.Errorf("failed to create arrivals table: %w", err)
		}
	}

	u := newArrivals.Inserter()
	if err := u.Put(bq.ctx, data); err != nil {
		return fmt.Errorf("failed to insert rows: %w", err)
	}

	q := bq.client.Query(fmt.Sprintf(`
		MERGE %s.%s t
		USING %s.%s s
		ON t.course = s.course
		%s
		WHEN NOT MATCHED THEN
		  INSERT ROW`, bq.dataset.DatasetID, tableName, bq.dataset.DatasetID, tempName, whenClause))
	job, err := q.Run(bq.ctx)
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	status, err := job.Wait(bq.ctx)
	if err != nil {
		return fmt.Errorf("failed to wait for merge: %w", err)
	}
	return status.Err()
}

func (bq BigQuery) Close() error {
	return bq.client.Close()
}

func isDuplicateError(err error) bool {
	if e, ok := err.(*googleapi.Error); ok {
		return e.Code == 409
	}
	return false
}
