// Package sample embeds a complete 2008-09 season: twenty clubs, a double
// round robin of 380 fixtures from August 2008 to May 2009.
package sample

import (
	"bytes"
	_ "embed"

	"github.com/jredh-dev/semweb/services/answers/internal/season"
)

//go:embed 2008-09.csv
var csvData []byte

// CSV returns the raw dataset.
func CSV() []byte { return bytes.Clone(csvData) }

// Fixtures parses the embedded dataset. The data ships with the binary, so
// a parse failure is a build defect and panics.
func Fixtures() []season.Fixture {
	fs, err := season.ReadCSV(bytes.NewReader(csvData))
	if err != nil {
		panic("sample: " + err.Error())
	}
	return fs
}
