package buildinfo

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
	if info.Version == "" || info.Commit == "" || info.BuildTime == "" {
		t.Errorf("Get() = %+v, fields must not be empty", info)
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.Contains(s, runtime.Version()) {
		t.Errorf("String() = %q, should contain go version", s)
	}
	if !strings.Contains(s, " built at ") {
		t.Errorf("String() = %q", s)
	}
}

func TestFillFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	info := Info{Version: "dev", Commit: "unknown", BuildTime: "unknown"}
	fillFromBuildInfo(&info, bi)
	if info.Version != "v1.2.3" || info.Commit != "0123456789abcdef" || info.BuildTime != "2026-01-02T03:04:05Z" || !info.Modified {
		t.Errorf("fillFromBuildInfo() = %+v", info)
	}

	// ldflags win over embedded values
	info = Info{Version: "v9.9.9", Commit: "feedface", BuildTime: "now"}
	fillFromBuildInfo(&info, bi)
	if info.Version != "v9.9.9" || info.Commit != "feedface" || info.BuildTime != "now" {
		t.Errorf("fillFromBuildInfo() overwrote ldflags: %+v", info)
	}

	info = Info{Version: "dev"}
	fillFromBuildInfo(&info, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if info.Version != "dev" {
		t.Errorf("Version = %q, (devel) should be ignored", info.Version)
	}
}
