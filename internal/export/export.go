// Package export serializes a session's company records for download.
package export

import (
	"encoding/json"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/model"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// csvRow fixes the CSV column set and order.
type csvRow struct {
	Name        string `csv:"Name"`
	Website     string `csv:"Website"`
	Description string `csv:"Description"`
	Email       string `csv:"Email"`
	Phone       string `csv:"Phone"`
	Address     string `csv:"Address"`
	SourceURL   string `csv:"Source URL"`
}

// Marshal serializes companies in the requested format. An
// unrecognized format is an error value, never a panic.
func Marshal(companies []model.Company, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(companies, "", "  ")
		if err != nil {
			return nil, eris.Wrap(err, "export: marshal json")
		}
		return data, nil
	case FormatCSV:
		rows := make([]csvRow, len(companies))
		for i, c := range companies {
			rows[i] = csvRow{
				Name:        c.Name,
				Website:     c.Website,
				Description: c.Description,
				Email:       c.Email,
				Phone:       c.Phone,
				Address:     c.Address,
				SourceURL:   c.SourceURL,
			}
		}
		data, err := csvutil.Marshal(rows)
		if err != nil {
			return nil, eris.Wrap(err, "export: marshal csv")
		}
		return data, nil
	default:
		return nil, eris.Errorf("export: invalid format %q", format)
	}
}

// ContentType returns the MIME type for a supported format, or "".
func ContentType(format string) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	}
	return ""
}

// Filename returns the download filename for a supported format.
func Filename(format string) string {
	return "companies." + format
}
