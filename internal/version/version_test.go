package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	if !strings.HasPrefix(info, "ocg "+Version+" ") {
		t.Errorf("Info() = %q, want prefix %q", info, "ocg "+Version)
	}
	if !strings.HasSuffix(info, runtime.Version()) {
		t.Errorf("Info() = %q, want Go version suffix", info)
	}
	if Short() != Version {
		t.Errorf("Short() = %q, want %q", Short(), Version)
	}
	if UserAgent() != "ocg/"+Version {
		t.Errorf("UserAgent() = %q", UserAgent())
	}
}
