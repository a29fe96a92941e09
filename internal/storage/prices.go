package storage

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/rewired-gh/sentiday/internal/errors"
	"github.com/rewired-gh/sentiday/internal/models"
)

// PriceTimeLayout parses OHLCV timestamps such as "2018-03-01T00:00:00.0000000Z".
// The fractional seconds are optional and may carry up to nine digits; the zone must be UTC ("Z").
const PriceTimeLayout = "2006-01-02T15:04:05.999999999Z"

// ReadPrices reads an OHLCV file. Only date, price_open and price_close are consumed;
// the remaining columns are ignored. Input order is preserved.
func (s *Store) ReadPrices(path string) ([]models.PriceRow, error) {
	f, r, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []models.PriceRow{}, nil
	}
	if err != nil {
		return nil, parseErr(path, 1, err)
	}

	idx := headerIndex(header)
	var cols [3]int
	for i, name := range []string{"date", "price_open", "price_close"} {
		c, ok := idx[name]
		if !ok {
			return nil, apperrors.MalformedRecord(fmt.Sprintf("price file %s has no %q column", path, name)).
				WithContext("path", path)
		}
		cols[i] = c
	}

	rows := []models.PriceRow{}
	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, parseErr(path, line, err)
		}

		row, err := parsePriceRow(rec, cols)
		if err != nil {
			return nil, parseErr(path, line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parsePriceRow(rec []string, cols [3]int) (models.PriceRow, error) {
	var row models.PriceRow

	rawDate, ok := field(rec, cols[0])
	if !ok {
		return row, errors.New("missing date")
	}
	date, err := ParsePriceTime(rawDate)
	if err != nil {
		return row, err
	}

	rawOpen, ok := field(rec, cols[1])
	if !ok {
		return row, errors.New("missing price_open")
	}
	open, err := decimal.NewFromString(strings.TrimSpace(rawOpen))
	if err != nil {
		return row, fmt.Errorf("invalid price_open %q: %w", rawOpen, err)
	}

	rawClose, ok := field(rec, cols[2])
	if !ok {
		return row, errors.New("missing price_close")
	}
	closePrice, err := decimal.NewFromString(strings.TrimSpace(rawClose))
	if err != nil {
		return row, fmt.Errorf("invalid price_close %q: %w", rawClose, err)
	}

	row.Date = date
	row.Open = open
	row.Close = closePrice
	return row, nil
}

// ParsePriceTime parses an ISO-8601 UTC timestamp with optional fractional seconds.
func ParsePriceTime(raw string) (time.Time, error) {
	t, err := time.Parse(PriceTimeLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return t, nil
}
