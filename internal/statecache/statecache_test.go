package statecache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func testCache(t *testing.T) (*Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	return New(path, zerolog.Nop()), path
}

func TestLoadMissingFile(t *testing.T) {
	cache, _ := testCache(t)

	rec := cache.Load()
	if len(rec.Targets) != 0 {
		t.Fatalf("缺失文件应返回空记录, 实际 %#v", rec)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	cache, path := testCache(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := cache.Load()
	if len(rec.Targets) != 0 {
		t.Fatalf("损坏文件应视为空记录, 实际 %#v", rec)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cache, path := testCache(t)

	jd := decimal.RequireFromString("2460002.50000")
	at := time.Date(2025, 8, 20, 4, 0, 0, 0, time.UTC)

	rec := Record{}
	rec.SetTarget("T CrB", TargetState{LastAlertJD: &jd, LastAlertAt: &at})

	if err := cache.Save(rec); err != nil {
		t.Fatalf("Save 不应报错: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("Save 后不应残留临时文件")
	}

	loaded := cache.Load()
	state := loaded.Target("T CrB")
	if state.LastAlertJD == nil || !state.LastAlertJD.Equal(jd) {
		t.Fatalf("JD 往返不一致: %#v", state)
	}
	if state.LastAlertAt == nil || !state.LastAlertAt.Equal(at) {
		t.Fatalf("时间戳往返不一致: %#v", state)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")
	cache := New(path, zerolog.Nop())

	if err := cache.Save(Record{}); err != nil {
		t.Fatalf("Save 应自动创建目录: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("状态文件应存在: %v", err)
	}
}

func TestTargetAbsent(t *testing.T) {
	rec := Record{}
	state := rec.Target("unknown")
	if state.LastAlertJD != nil || state.LastAlertAt != nil {
		t.Fatalf("未知目标应返回零值状态: %#v", state)
	}
}
