package data

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xyproto/unzip"

	"github.com/rustyeddy/wheel/market"
)

// Fetcher populates the on-disk dataset cache from a remote base URL.
// The cache is populate-on-miss and never invalidated automatically: a file
// already present is never re-downloaded, and every read may be a first-time
// fetch.
//
// For each ticker it tries, in order, <base>/<ticker>/<file>.xz,
// <base>/<ticker>/<file>.zip and the plain <base>/<ticker>/<file>.
type Fetcher struct {
	BaseURL  string
	CacheDir string
	Client   *http.Client
	Log      zerolog.Logger
}

func NewFetcher(baseURL, cacheDir string, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		CacheDir: cacheDir,
		Client:   &http.Client{Timeout: 5 * time.Minute},
		Log:      log,
	}
}

// Ensure makes the ticker's dataset files available under the cache dir.
func (f *Fetcher) Ensure(ctx context.Context, ticker string) error {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	dir := filepath.Join(f.CacheDir, ticker)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cache dir: %w", err)
	}

	for _, name := range []string{optionsFile, underlyingFile} {
		if err := f.ensureFile(ctx, ticker, dir, name); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fetcher) ensureFile(ctx context.Context, ticker, dir, name string) error {
	// Already cached in any accepted form.
	for _, p := range []string{name, name + ".xz"} {
		if _, err := os.Stat(filepath.Join(dir, p)); err == nil {
			return nil
		}
	}

	base := f.BaseURL + "/" + strings.ToLower(ticker) + "/" + name

	// Compressed variants first: datasets are large.
	for _, suffix := range []string{".xz", ".zip", ""} {
		url := base + suffix
		dst := filepath.Join(dir, name+suffix)

		status, err := f.download(ctx, url, dst)
		if err != nil {
			return err
		}
		if status == http.StatusNotFound {
			continue
		}

		if suffix == ".zip" {
			if err := unzip.Extract(dst, dir); err != nil {
				return fmt.Errorf("extract %s: %w", dst, err)
			}
			if err := os.Remove(dst); err != nil {
				return fmt.Errorf("remove archive %s: %w", dst, err)
			}
		}

		f.Log.Info().Str("ticker", ticker).Str("file", name).Str("url", url).Msg("dataset fetched")
		return nil
	}

	return fmt.Errorf("fetch %s for %s: no dataset at %s: %w", name, ticker, base, ErrUnknownTicker)
}

// download writes url to dst via a temp file and atomic rename, mirroring the
// resume-safe pattern of the candle dataset downloader. A 404 is reported in
// the status, not as an error.
func (f *Fetcher) download(ctx context.Context, url, dst string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return http.StatusNotFound, nil
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}

	tmp := dst + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return 0, fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return 0, err
	}
	if err := os.Rename(tmp, dst); err != nil {
		return 0, err
	}
	return http.StatusOK, nil
}

// DatasetProvider is a Provider backed by the remote dataset behind the disk
// cache: every access first ensures the ticker's files are cached, then reads
// them through a FileProvider.
type DatasetProvider struct {
	fetcher *Fetcher
	files   *FileProvider
	ensured map[string]bool
}

func NewDatasetProvider(baseURL, cacheDir string, log zerolog.Logger) *DatasetProvider {
	return &DatasetProvider{
		fetcher: NewFetcher(baseURL, cacheDir, log),
		files:   NewFileProvider(cacheDir),
		ensured: make(map[string]bool),
	}
}

func (p *DatasetProvider) ensure(ticker string) error {
	key := strings.ToUpper(strings.TrimSpace(ticker))
	if p.ensured[key] {
		return nil
	}
	if err := p.fetcher.Ensure(context.Background(), key); err != nil {
		return err
	}
	p.ensured[key] = true
	return nil
}

func (p *DatasetProvider) GetChain(ticker string, day time.Time) (market.ChainSnapshot, error) {
	if err := p.ensure(ticker); err != nil {
		return market.ChainSnapshot{}, err
	}
	return p.files.GetChain(ticker, day)
}

func (p *DatasetProvider) GetPrice(ticker string, day time.Time) (float64, error) {
	if err := p.ensure(ticker); err != nil {
		return 0, err
	}
	return p.files.GetPrice(ticker, day)
}

func (p *DatasetProvider) ListTickers() ([]string, error) {
	return p.files.ListTickers()
}

func (p *DatasetProvider) DateRange(ticker string) (time.Time, time.Time, error) {
	if err := p.ensure(ticker); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return p.files.DateRange(ticker)
}
