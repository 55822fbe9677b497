package report

import (
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

func WriteCsv(in interface{}, fileName string) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	if err := gocsv.Marshal(in, file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// MarshalCsv writes rows to w with a header line.
func MarshalCsv(in interface{}, w io.Writer) error {
	return gocsv.Marshal(in, w)
}
