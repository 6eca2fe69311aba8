// ./internal/arch/arch_test.go
package arch

import (
	"bytes"
	"encoding/json"
	"io"
	"os/exec"
	"strings"
	"testing"
)

type pkg struct {
	ImportPath string
	Imports    []string
	Standard   bool
}

var outer = []string{
	"tirmite/internal/appcore", "tirmite/internal/app",
	"tirmite/internal/cli", "tirmite/cmd/",
}

func with(extra ...string) []string { return append(append([]string(nil), outer...), extra...) }

func TestImportBoundaries(t *testing.T) {
	cmd := exec.Command("go", "list", "-json", "./...")
	cmd.Dir = "../.."
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		t.Fatalf("go list: %v", err)
	}
	dec := json.NewDecoder(&out)

	bans := map[string][]string{
		"tirmite/internal/logger":  {"tirmite/"},
		"tirmite/internal/hitio":   with("tirmite/internal/search", "tirmite/internal/writers", "tirmite/internal/config"),
		"tirmite/internal/search":  with("tirmite/internal/writers", "tirmite/internal/config", "tirmite/internal/report"),
		"tirmite/internal/writers": with("tirmite/internal/config", "tirmite/internal/search", "tirmite/internal/hitio"),
		"tirmite/internal/report":  with("tirmite/internal/writers", "tirmite/internal/config"),
		"tirmite/internal/config":  outer,
		"tirmite/pkg/api":          {"tirmite/"},
	}

	var seen int
	var violations []string
	for {
		var p pkg
		if err := dec.Decode(&p); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.HasPrefix(p.ImportPath, "tirmite/") {
			continue
		}
		seen++
		imp := p.ImportPath
		for prefix, forbidden := range bans {
			if imp != prefix {
				continue
			}
			for _, dep := range p.Imports {
				if !strings.HasPrefix(dep, "tirmite/") {
					continue
				}
				for _, ban := range forbidden {
					if strings.HasPrefix(dep, ban) {
						violations = append(violations, imp+" → "+dep)
					}
				}
			}
		}
	}

	if seen == 0 {
		t.Fatal("go list returned no tirmite packages")
	}
	if len(violations) > 0 {
		t.Fatalf("import boundary violations:\n  %s", strings.Join(violations, "\n  "))
	}
}
