package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

const lcgPayload = `AAVSO International Database
JD@@@Magnitude@@@Uncertainty@@@Band@@@Obstype
2460001.50000@@@10.3@@@0.01@@@V@@@CCD
2460000.50000@@@9.0@@@0.02@@@V@@@CCD
2460002.50000@@@10.5@@@0.01@@@Johnson V@@@CCD
2460003.50000@@@11.0@@@0.01@@@B@@@CCD
2460004.50000@@@11.2@@@0.01@@@V@@@Visual
`

func TestLCGFetchLatestSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("view") != "api.delim" {
			t.Fatalf("view 参数应为 api.delim, 实际 %s", r.URL.Query().Get("view"))
		}
		if r.URL.Query().Get("ident") != "T CrB" {
			t.Fatalf("ident 参数不正确: %s", r.URL.Query().Get("ident"))
		}
		_, _ = w.Write([]byte(lcgPayload))
	}))
	defer srv.Close()

	lcg := NewLCG(LCGOptions{
		BaseURL:     srv.URL,
		Target:      "T CrB",
		Band:        "V",
		ObsType:     "CCD",
		RollingDays: 14,
		Timeout:     time.Second,
	}, noopLogger())

	obs, err := lcg.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("成功响应不应报错: %v", err)
	}

	// B band and Visual rows are filtered; the latest V/CCD point wins.
	if !obs.JD.Equal(decimal.RequireFromString("2460002.50000")) {
		t.Fatalf("期望 JD 2460002.5, 实际 %s", obs.JD.String())
	}
	if !obs.Magnitude.Equal(decimal.RequireFromString("10.5")) {
		t.Fatalf("期望星等 10.5, 实际 %s", obs.Magnitude.String())
	}
	if obs.Source != "lcg" {
		t.Fatalf("Source 应为 lcg, 实际 %s", obs.Source)
	}
}

func TestLCGFetchMissingHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("some html error page\nwithout any columns\n"))
	}))
	defer srv.Close()

	lcg := NewLCG(LCGOptions{BaseURL: srv.URL, Target: "T CrB", Band: "V", Timeout: time.Second}, noopLogger())
	if _, err := lcg.FetchLatest(context.Background()); err == nil {
		t.Fatal("缺少表头应报错")
	}
}

func TestLCGFetchNoMatchingRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("JD@@@Magnitude@@@Band@@@Obstype\n2460001.5@@@10.3@@@B@@@CCD\n"))
	}))
	defer srv.Close()

	lcg := NewLCG(LCGOptions{BaseURL: srv.URL, Target: "T CrB", Band: "V", ObsType: "CCD", Timeout: time.Second}, noopLogger())
	if _, err := lcg.FetchLatest(context.Background()); !errors.Is(err, ErrNoObservations) {
		t.Fatalf("无匹配观测时应返回 ErrNoObservations, 实际 %v", err)
	}
}

func TestLCGFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	lcg := NewLCG(LCGOptions{BaseURL: srv.URL, Target: "T CrB", Timeout: time.Second}, noopLogger())
	if _, err := lcg.FetchLatest(context.Background()); err == nil {
		t.Fatal("HTTP 502 应返回错误")
	}
}

func TestLCGFetchMissingTarget(t *testing.T) {
	lcg := NewLCG(LCGOptions{}, noopLogger())
	if _, err := lcg.FetchLatest(context.Background()); err == nil {
		t.Fatal("未配置目标时应报错")
	}
}
