package lhindex

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tuannm99/lhindex/internal/record"
)

var ErrBadCSVRow = errors.New("lhindex: bad csv row")

const csvFields = 4 // id,name,bio,manager_id

// BuildFromCSV streams employee rows from a CSV file into the index
// and returns how many records were inserted. Rows must be
// id,name,bio,manager_id; a row whose text fields contain the record
// delimiter, or whose integers do not parse, aborts the build with a
// row-numbered error.
func (x *Index) BuildFromCSV(csvPath string) (int, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = csvFields

	inserted := 0
	for row := 1; ; row++ {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return inserted, fmt.Errorf("%w: row %d: %v", ErrBadCSVRow, row, err)
		}

		rec, err := parseRow(fields)
		if err != nil {
			return inserted, fmt.Errorf("%w: row %d: %v", ErrBadCSVRow, row, err)
		}
		if err := x.Insert(rec); err != nil {
			return inserted, fmt.Errorf("insert row %d: %w", row, err)
		}
		inserted++
	}

	if err := x.Flush(); err != nil {
		return inserted, err
	}
	return inserted, nil
}

func parseRow(fields []string) (record.Record, error) {
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return record.Record{}, fmt.Errorf("id %q: %v", fields[0], err)
	}
	managerID, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return record.Record{}, fmt.Errorf("manager_id %q: %v", fields[3], err)
	}

	rec := record.Record{
		ID:        id,
		Name:      fields[1],
		Bio:       fields[2],
		ManagerID: managerID,
	}
	if err := rec.Validate(); err != nil {
		return record.Record{}, err
	}
	return rec, nil
}
