package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/RyanBlaney/sonido-overtones/algorithms/spectral"
	"github.com/RyanBlaney/sonido-overtones/logging"
)

// ErrNoInputs is returned when none of the comparison inputs could be found
var ErrNoInputs = errors.New("no comparison inputs found")

// Band groups matched by name substring
var bandGroups = []string{"Bass", "Formant", "Overtones"}

// LabeledPath pairs a display label with an input file
type LabeledPath struct {
	Label string
	Path  string
}

// ParseLabeledPath parses "label=path". Without a label the path is used as label.
func ParseLabeledPath(arg string) LabeledPath {
	if label, path, ok := strings.Cut(arg, "="); ok && label != "" {
		return LabeledPath{Label: label, Path: path}
	}
	return LabeledPath{Label: arg, Path: arg}
}

// BandRow holds the band percentages of one summary, keyed by group name.
// A group the summary does not contain is absent from Pct.
type BandRow struct {
	Label string
	Pct   map[string]float64
}

// LoadBandComparison reads summary records and groups their bands as Bass,
// Formant and Overtones. Missing files are skipped with a warning; the
// skipped paths are returned. ErrNoInputs is returned only if every file is missing.
func LoadBandComparison(inputs []LabeledPath) ([]BandRow, []string, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "report",
		"function":  "LoadBandComparison",
	})

	var rows []BandRow
	var missing []string
	for _, in := range inputs {
		rec, err := ReadSummaryJSON(in.Path)
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("Summary not found, skipping", logging.Fields{"path": in.Path})
			missing = append(missing, in.Path)
			continue
		}
		if err != nil {
			return nil, missing, err
		}

		row := BandRow{Label: in.Label, Pct: make(map[string]float64)}
		for _, b := range rec.Bands {
			for _, group := range bandGroups {
				if strings.Contains(b.Band, group) {
					row.Pct[group] = b.Pct
					break
				}
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, missing, ErrNoInputs
	}
	return rows, missing, nil
}

// WriteBandComparison writes an aligned table with one row per summary.
// Absent groups print as 0.
func WriteBandComparison(w io.Writer, rows []BandRow, decimals int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "label\t%s\n", strings.Join(bandGroups, "\t"))
	for _, row := range rows {
		cells := make([]string, len(bandGroups))
		for i, group := range bandGroups {
			cells[i] = strconv.FormatFloat(row.Pct[group], 'f', decimals, 64) + "%"
		}
		fmt.Fprintf(tw, "%s\t%s\n", row.Label, strings.Join(cells, "\t"))
	}

	return tw.Flush()
}

// SpectrumSeries is one labeled spectrum loaded from a CSV export
type SpectrumSeries struct {
	Label    string
	Spectrum *spectral.Spectrum
}

// LoadSpectrumComparison reads spectrum CSV exports. Missing files are skipped
// with a warning; files without any valid row are left out. ErrNoInputs is
// returned when no series with data remains.
func LoadSpectrumComparison(inputs []LabeledPath) ([]SpectrumSeries, []string, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "report",
		"function":  "LoadSpectrumComparison",
	})

	var series []SpectrumSeries
	var missing []string
	for _, in := range inputs {
		spec, err := readSpectrumFile(in.Path)
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("Spectrum CSV not found, skipping", logging.Fields{"path": in.Path})
			missing = append(missing, in.Path)
			continue
		}
		if err != nil {
			return nil, missing, err
		}
		if spec.Len() == 0 {
			logger.Warn("Spectrum CSV has no rows, skipping", logging.Fields{"path": in.Path})
			continue
		}
		series = append(series, SpectrumSeries{Label: in.Label, Spectrum: spec})
	}

	if len(series) == 0 {
		return nil, missing, ErrNoInputs
	}
	return series, missing, nil
}

func readSpectrumFile(path string) (*spectral.Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadSpectrumCSV(f)
}

// WriteSpectrumComparisonCSV writes all series in long form: label,freq_hz,power_db
func WriteSpectrumComparisonCSV(w io.Writer, series []SpectrumSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"label", "freq_hz", "power_db"}); err != nil {
		return err
	}
	for _, s := range series {
		for i, f := range s.Spectrum.Frequencies {
			row := []string{
				s.Label,
				strconv.FormatFloat(f, 'g', -1, 64),
				strconv.FormatFloat(ToDB(s.Spectrum.Power[i]), 'g', -1, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
