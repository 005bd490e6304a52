//go:build !unit

package version

import (
	"strings"
	"testing"
)

func TestVersionCarriesFlag(t *testing.T) {
	if Flag != "" && !strings.Contains(Version, "-"+Flag) {
		t.Fatalf("Version %s should carry the flag %s", Version, Flag)
	}
}
