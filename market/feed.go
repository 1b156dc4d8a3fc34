package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// BarFeed yields bars one at a time. Implementations should be deterministic
// and return (ok=false, err=nil) at EOF.
type BarFeed interface {
	Next() (b Bar, ok bool, err error)
	Close() error
}

// CSVFeed reads bars from a CSV file with columns
// time,symbol,open,high,low,close,volume. A header row is optional.
type CSVFeed struct {
	f *os.File
	r *csv.Reader

	pending *Bar // first data row when the file has no header
}

func NewCSVFeed(path string) (*CSVFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	feed := &CSVFeed{f: f, r: r}

	row, err := r.Read()
	if err == io.EOF {
		return feed, nil
	}
	if err != nil {
		f.Close()
		return nil, err
	}

	if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "time") {
		return feed, nil
	}
	b, err := parseBarRow(row)
	if err != nil {
		f.Close()
		return nil, err
	}
	feed.pending = &b
	return feed, nil
}

func (c *CSVFeed) Next() (Bar, bool, error) {
	if c.pending != nil {
		b := *c.pending
		c.pending = nil
		return b, true, nil
	}

	for {
		row, err := c.r.Read()
		if err == io.EOF {
			return Bar{}, false, nil
		}
		if err != nil {
			return Bar{}, false, err
		}
		if len(row) == 0 {
			continue
		}
		b, err := parseBarRow(row)
		if err != nil {
			return Bar{}, false, err
		}
		return b, true, nil
	}
}

func (c *CSVFeed) Close() error { return c.f.Close() }

func parseBarRow(row []string) (Bar, error) {
	if len(row) < 7 {
		return Bar{}, fmt.Errorf("bad row (need time,symbol,open,high,low,close,volume): %v", row)
	}

	ts := strings.TrimSpace(row[0])
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t2, err2 := time.Parse(time.RFC3339Nano, ts)
		if err2 != nil {
			return Bar{}, fmt.Errorf("bad time %q: %w", row[0], err)
		}
		t = t2
	}

	vals := make([]float64, 5)
	for i := 2; i < 7; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return Bar{}, fmt.Errorf("bad value %q in column %d: %w", row[i], i, err)
		}
		vals[i-2] = v
	}

	return Bar{
		Symbol: strings.TrimSpace(row[1]),
		Time:   t,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
