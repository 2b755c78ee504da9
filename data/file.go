package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/rustyeddy/wheel/market"
)

const (
	optionsFile    = "options.csv"
	underlyingFile = "underlying.csv"
)

// FileProvider reads per-ticker dataset directories laid out as
//
//	root/
//	  SPY/
//	    options.csv      (or options.csv.xz)
//	    underlying.csv   (or underlying.csv.xz)
//
// options.csv rows: date,expiration,type,strike,bid,ask,delta,implied_volatility,open_interest,volume
// underlying.csv rows: date,open,high,low,close,volume
//
// A ticker's files load once on first access and are indexed by trading day.
type FileProvider struct {
	root    string
	tickers map[string]*tickerData
}

type tickerData struct {
	chains map[time.Time][]market.Contract
	closes map[time.Time]float64
	days   []time.Time // sorted ascending
}

func NewFileProvider(root string) *FileProvider {
	return &FileProvider{
		root:    root,
		tickers: make(map[string]*tickerData),
	}
}

func (p *FileProvider) GetChain(ticker string, day time.Time) (market.ChainSnapshot, error) {
	td, err := p.load(ticker)
	if err != nil {
		return market.ChainSnapshot{}, err
	}
	day = market.Day(day)
	snap := market.ChainSnapshot{
		Ticker:          strings.ToUpper(ticker),
		Date:            day,
		UnderlyingClose: td.closes[day],
		Contracts:       td.chains[day],
	}
	return snap, nil
}

func (p *FileProvider) GetPrice(ticker string, day time.Time) (float64, error) {
	td, err := p.load(ticker)
	if err != nil {
		return 0, err
	}
	close, ok := td.closes[market.Day(day)]
	if !ok {
		return 0, fmt.Errorf("%s on %s: %w", ticker, day.Format("2006-01-02"), ErrPriceUnavailable)
	}
	return close, nil
}

func (p *FileProvider) ListTickers() ([]string, error) {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func (p *FileProvider) DateRange(ticker string) (time.Time, time.Time, error) {
	td, err := p.load(ticker)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if len(td.days) == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("%s: dataset has no trading days", ticker)
	}
	return td.days[0], td.days[len(td.days)-1], nil
}

func (p *FileProvider) load(ticker string) (*tickerData, error) {
	key := strings.ToUpper(strings.TrimSpace(ticker))
	if td, ok := p.tickers[key]; ok {
		return td, nil
	}

	dir := filepath.Join(p.root, key)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("%s: %w", key, ErrUnknownTicker)
	}

	td := &tickerData{
		chains: make(map[time.Time][]market.Contract),
		closes: make(map[time.Time]float64),
	}

	if err := readRows(filepath.Join(dir, underlyingFile), func(row []string) error {
		return parseUnderlyingRow(row, td)
	}); err != nil {
		return nil, fmt.Errorf("load %s underlying: %w", key, err)
	}
	if err := readRows(filepath.Join(dir, optionsFile), func(row []string) error {
		return parseOptionsRow(row, key, td)
	}); err != nil {
		return nil, fmt.Errorf("load %s options: %w", key, err)
	}

	for d := range td.closes {
		td.days = append(td.days, d)
	}
	sort.Slice(td.days, func(i, j int) bool { return td.days[i].Before(td.days[j]) })

	p.tickers[key] = td
	return td, nil
}

// readRows streams CSV rows from path, trying the plain file first and then
// an .xz sibling. A single header row is allowed; short rows are skipped.
func readRows(path string, fn func(row []string) error) error {
	rc, err := openDataFile(path)
	if err != nil {
		return err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.FieldsPerRecord = -1

	sawFirst := false
	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}
		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "date") {
				continue
			}
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

func openDataFile(path string) (io.ReadCloser, error) {
	if f, err := os.Open(path); err == nil {
		return f, nil
	}

	f, err := os.Open(path + ".xz")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	xr, err := xz.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s.xz: %w", path, err)
	}
	return &xzReadCloser{r: xr, f: f}, nil
}

type xzReadCloser struct {
	r io.Reader
	f *os.File
}

func (x *xzReadCloser) Read(p []byte) (int, error) { return x.r.Read(p) }
func (x *xzReadCloser) Close() error               { return x.f.Close() }

func parseUnderlyingRow(row []string, td *tickerData) error {
	// date,open,high,low,close,volume — close is column 4.
	if len(row) < 5 {
		return nil
	}
	day, err := parseDay(row[0])
	if err != nil {
		return err
	}
	close, err := parseFloat(row[4])
	if err != nil {
		return fmt.Errorf("bad close %q: %w", row[4], err)
	}
	td.closes[day] = close
	return nil
}

func parseOptionsRow(row []string, ticker string, td *tickerData) error {
	// date,expiration,type,strike,bid,ask,delta,implied_volatility,open_interest,volume
	if len(row) < 7 {
		return nil
	}
	day, err := parseDay(row[0])
	if err != nil {
		return err
	}
	exp, err := parseDay(row[1])
	if err != nil {
		return err
	}

	typ := market.OptionType(strings.ToLower(strings.TrimSpace(row[2])))
	if typ != market.Put && typ != market.Call {
		return fmt.Errorf("bad option type %q", row[2])
	}

	strike, err := parseFloat(row[3])
	if err != nil {
		return fmt.Errorf("bad strike %q: %w", row[3], err)
	}
	bid, err := parseFloat(row[4])
	if err != nil {
		return fmt.Errorf("bad bid %q: %w", row[4], err)
	}
	ask, err := parseFloat(row[5])
	if err != nil {
		return fmt.Errorf("bad ask %q: %w", row[5], err)
	}
	delta, err := parseFloat(row[6])
	if err != nil {
		return fmt.Errorf("bad delta %q: %w", row[6], err)
	}

	c := market.Contract{
		Ticker:     ticker,
		Expiration: exp,
		Strike:     strike,
		Type:       typ,
		Bid:        bid,
		Ask:        ask,
		Delta:      delta,
	}
	if len(row) > 7 && row[7] != "" {
		if iv, err := parseFloat(row[7]); err == nil {
			c.ImpliedVol = iv
		}
	}
	if len(row) > 8 && row[8] != "" {
		if oi, err := strconv.Atoi(strings.TrimSpace(row[8])); err == nil {
			c.OpenInterest = oi
		}
	}
	if len(row) > 9 && row[9] != "" {
		if vol, err := strconv.Atoi(strings.TrimSpace(row[9])); err == nil {
			c.Volume = vol
		}
	}

	td.chains[day] = append(td.chains[day], c)
	return nil
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: %w", s, err)
	}
	return market.Day(t), nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
