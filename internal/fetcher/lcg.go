package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// lcgDelimiter is an uncommon token so star names and comment fields cannot
// collide with the column separator.
const lcgDelimiter = "@@@"

// LCGOptions parameterise the AAVSO LCGv2 fetcher.
type LCGOptions struct {
	BaseURL     string
	Target      string
	Band        string
	ObsType     string
	RollingDays int
	Timeout     time.Duration
	UserAgent   string
}

// LCG fetches photometry via the AAVSO LCGv2 api.delim view.
type LCG struct {
	opts   LCGOptions
	logger zerolog.Logger
	client *http.Client
	now    func() time.Time
}

// NewLCG constructs an LCGv2 fetcher.
func NewLCG(opts LCGOptions, logger zerolog.Logger) *LCG {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://www.aavso.org/LCGv2/index.htm"
	}
	if opts.RollingDays <= 0 {
		opts.RollingDays = 14
	}

	return &LCG{
		opts:   opts,
		logger: logger.With().Str("component", "lcg_fetcher").Logger(),
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

// FetchLatest retrieves the most recent matching observation in the rolling
// JD window.
func (l *LCG) FetchLatest(ctx context.Context) (Observation, error) {
	if l.opts.Target == "" {
		return Observation{}, fmt.Errorf("lcg target not configured")
	}

	tojd := JDFromTime(l.now().UTC()) + 1.0
	fromjd := tojd - float64(l.opts.RollingDays)

	params := url.Values{}
	params.Set("view", "api.delim")
	params.Set("DateFormat", "Julian")
	params.Set("ident", l.opts.Target)
	params.Set("fromjd", fmt.Sprintf("%.2f", fromjd))
	params.Set("tojd", fmt.Sprintf("%.2f", tojd))
	params.Set("delimiter", lcgDelimiter)
	if l.opts.Band != "" {
		params.Set("RequestedBands", l.opts.Band)
	}

	endpoint := l.opts.BaseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Observation{}, err
	}
	if ua := strings.TrimSpace(l.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return Observation{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Observation{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Observation{}, fmt.Errorf("lcg api error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	obs, err := l.parseDelim(string(body))
	if err != nil {
		return Observation{}, err
	}
	obs.Source = "lcg"
	return obs, nil
}

// parseDelim walks the api.delim payload: one header line followed by data
// lines, all separated by lcgDelimiter.
func (l *LCG) parseDelim(payload string) (Observation, error) {
	lines := make([]string, 0, 64)
	for _, ln := range strings.Split(payload, "\n") {
		if trimmed := strings.TrimSpace(ln); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	var header []string
	headerIdx := -1
	for i, ln := range lines {
		if strings.Contains(ln, "JD") && strings.Contains(ln, "Magnitude") && strings.Contains(ln, "Band") {
			header = splitDelim(ln)
			headerIdx = i
			break
		}
	}
	if header == nil {
		return Observation{}, fmt.Errorf("lcg response missing header (%d lines)", len(lines))
	}

	colJD := pickColumn(header, "HJD", "JD")
	colMag := pickColumn(header, "Magnitude", "Mag")
	colBand := pickColumn(header, "Band", "Filter")
	colType := pickColumn(header, "Obstype", "Type")
	if colJD < 0 || colMag < 0 || colBand < 0 || colType < 0 {
		return Observation{}, fmt.Errorf("lcg response missing expected columns: %v", header)
	}

	var latest Observation
	found := false
	for _, ln := range lines[headerIdx+1:] {
		parts := splitDelim(ln)
		if len(parts) < len(header) {
			continue
		}
		if !matchesBand(parts[colBand], l.opts.Band) {
			continue
		}
		if !matchesObsType(parts[colType], l.opts.ObsType) {
			continue
		}

		jd, err := decimal.NewFromString(parts[colJD])
		if err != nil {
			continue
		}
		mag, err := decimal.NewFromString(parts[colMag])
		if err != nil {
			continue
		}

		if !found || jd.GreaterThan(latest.JD) {
			latest = Observation{
				TargetID:  l.opts.Target,
				JD:        jd,
				Timestamp: TimeFromJD(jd),
				Magnitude: mag,
				Band:      parts[colBand],
				ObsType:   parts[colType],
			}
			found = true
		}
	}

	if !found {
		return Observation{}, ErrNoObservations
	}
	return latest, nil
}

func splitDelim(line string) []string {
	parts := strings.Split(line, lcgDelimiter)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

var _ PhotometryFetcher = (*LCG)(nil)
