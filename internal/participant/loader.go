// Package participant loads campaign contact exports from CSV at the
// ingestion boundary. Everything past this boundary works with typed,
// read-only Participant values.
package participant

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/sells-group/outreach-cli/internal/model"
)

// row mirrors the campaign export column layout. Engagement flags arrive as
// free-form yes/no/boolean strings and are parsed after decoding.
type row struct {
	Name     string `csv:"Name"`
	Campaign string `csv:"Campaign"`
	Email    string `csv:"Email"`
	Cell     string `csv:"Cell"`
	Address  string `csv:"Address"`
	City     string `csv:"City"`
	ZIP      string `csv:"ZIP"`
	Opened   string `csv:"opened"`
	Clicked  string `csv:"clicked"`
	Applied  string `csv:"applied"`
}

// Load reads a participant CSV file. A non-empty charset selects the source
// encoding by IANA name (mail-platform exports are frequently windows-1252);
// empty means UTF-8.
func Load(path, charset string) ([]model.Participant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "participant: open %s", path)
	}
	defer f.Close()

	return Read(f, charset)
}

// Read decodes participant rows from a reader.
func Read(r io.Reader, charset string) ([]model.Participant, error) {
	if charset != "" {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "participant: unknown charset %s", charset)
		}
		r = transform.NewReader(r, enc.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.LazyQuotes = true

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		return nil, eris.Wrap(err, "participant: read header")
	}

	var participants []model.Participant
	for {
		var rec row
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "participant: decode row")
		}

		participants = append(participants, model.Participant{
			Name:     rec.Name,
			Campaign: rec.Campaign,
			Email:    rec.Email,
			Cell:     rec.Cell,
			Address:  rec.Address,
			City:     rec.City,
			ZIP:      rec.ZIP,
			Opened:   model.ParseFlag(rec.Opened),
			Clicked:  model.ParseFlag(rec.Clicked),
			Applied:  model.ParseFlag(rec.Applied),
		})
	}

	return participants, nil
}
