package edr

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
)

// DecodeCSV reads raw EDR rows without relying on a header. Rows with fewer
// than three fields are skipped, as is any row whose first three fields do
// not all parse as numbers (which drops header rows for free). The third
// column lands in YawRate untouched; NewSampleTable interprets it per the
// table's input mode.
func DecodeCSV(r io.Reader) ([]kinematics.Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var rows []kinematics.Sample
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(record) < 3 {
			continue
		}
		t, errT := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		v, errV := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if errT != nil || errV != nil || errY != nil {
			continue
		}
		rows = append(rows, kinematics.Sample{Time: t, Speed: v, YawRate: y})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no usable numeric rows in csv: %w", kinematics.ErrInvalidInput)
	}
	return rows, nil
}
