package fetcher

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// VSXOptions parameterise the VSX CSV API fetcher.
type VSXOptions struct {
	BaseURL     string
	Target      string
	Band        string
	RollingDays int
	Timeout     time.Duration
	UserAgent   string
}

// VSX fetches photometry from the AAVSO VSX CSV API. It is the programmatic
// fallback when the LCGv2 endpoint is unavailable.
type VSX struct {
	opts   VSXOptions
	logger zerolog.Logger
	client *http.Client
	now    func() time.Time
}

// NewVSX constructs a VSX fetcher.
func NewVSX(opts VSXOptions, logger zerolog.Logger) *VSX {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://www.aavso.org/vsx/index.php"
	}
	if opts.RollingDays <= 0 {
		opts.RollingDays = 14
	}

	return &VSX{
		opts:   opts,
		logger: logger.With().Str("component", "vsx_fetcher").Logger(),
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

// FetchLatest retrieves the most recent matching observation via the CSV API.
func (f *VSX) FetchLatest(ctx context.Context) (Observation, error) {
	if f.opts.Target == "" {
		return Observation{}, fmt.Errorf("vsx target not configured")
	}

	tojd := JDFromTime(f.now().UTC()) + 1.0
	fromjd := tojd - float64(f.opts.RollingDays)

	params := url.Values{}
	params.Set("view", "api.delim")
	params.Set("ident", f.opts.Target)
	params.Set("fromjd", fmt.Sprintf("%.5f", fromjd))
	params.Set("tojd", fmt.Sprintf("%.5f", tojd))
	params.Set("delimiter", ",")
	params.Set("mtype", "std")
	params.Set("maxrec", "50000")
	if f.opts.Band != "" {
		params.Set("band", f.opts.Band)
	}

	endpoint := f.opts.BaseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Observation{}, err
	}
	if ua := strings.TrimSpace(f.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Observation{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Observation{}, fmt.Errorf("vsx api error (%d)", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Observation{}, fmt.Errorf("parse vsx csv: %w", err)
	}
	if len(records) < 2 {
		return Observation{}, ErrNoObservations
	}

	header := records[0]
	colJD := pickColumn(header, "JD", "HJD")
	colMag := pickColumn(header, "Magnitude", "Mag")
	colBand := pickColumn(header, "Band", "Filter")
	if colJD < 0 || colMag < 0 {
		return Observation{}, fmt.Errorf("vsx response missing expected columns: %v", header)
	}

	var latest Observation
	found := false
	for _, row := range records[1:] {
		if len(row) <= colJD || len(row) <= colMag {
			continue
		}
		if colBand >= 0 && len(row) > colBand && f.opts.Band != "" && !matchesBand(row[colBand], f.opts.Band) {
			continue
		}

		jd, err := decimal.NewFromString(strings.TrimSpace(row[colJD]))
		if err != nil {
			continue
		}
		// Fainter-than limits arrive as "<11.5"; skip them.
		mag, err := decimal.NewFromString(strings.TrimSpace(row[colMag]))
		if err != nil {
			continue
		}

		if !found || jd.GreaterThan(latest.JD) {
			band := ""
			if colBand >= 0 && len(row) > colBand {
				band = strings.TrimSpace(row[colBand])
			}
			latest = Observation{
				TargetID:  f.opts.Target,
				JD:        jd,
				Timestamp: TimeFromJD(jd),
				Magnitude: mag,
				Band:      band,
				Source:    "vsx",
			}
			found = true
		}
	}

	if !found {
		return Observation{}, ErrNoObservations
	}
	return latest, nil
}

var _ PhotometryFetcher = (*VSX)(nil)
