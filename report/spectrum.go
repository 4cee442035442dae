package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/RyanBlaney/sonido-overtones/algorithms/spectral"
)

var spectrumHeader = []string{"freq_hz", "power"}

// WriteSpectrumCSV writes one freq_hz,power row per bin
func WriteSpectrumCSV(w io.Writer, spec *spectral.Spectrum) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(spectrumHeader); err != nil {
		return err
	}
	for i, f := range spec.Frequencies {
		row := []string{
			strconv.FormatFloat(f, 'g', -1, 64),
			strconv.FormatFloat(spec.Power[i], 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSpectrumCSV reads a spectrum export. The first row is treated as a
// header; rows that are short or do not parse as numbers are skipped.
func ReadSpectrumCSV(r io.Reader) (*spectral.Spectrum, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	spec := &spectral.Spectrum{}
	header := true
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		// the first record is the header even when it fails to parse
		wasHeader := header
		header = false
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("failed to read spectrum csv: %w", err)
		}
		if wasHeader {
			continue
		}
		if len(row) < 2 {
			continue
		}

		f, errF := strconv.ParseFloat(row[0], 64)
		p, errP := strconv.ParseFloat(row[1], 64)
		if errF != nil || errP != nil {
			continue
		}
		spec.Frequencies = append(spec.Frequencies, f)
		spec.Power = append(spec.Power, p)
	}

	return spec, nil
}

// ToDB converts power to decibels, flooring at 1e-20 (-200 dB)
func ToDB(power float64) float64 {
	return 10 * math.Log10(max(power, 1e-20))
}
