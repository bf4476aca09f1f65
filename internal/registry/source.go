package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const coreHeaderName = "vulkan_core.h"

// Sources is the raw input of one pipeline run: the concatenated header
// text plus the core header on its own (one generator scrapes it
// directly). Side tables are read on demand so a run that never touches
// them does not require them.
type Sources struct {
	Dir    string
	Header string
	Core   string
}

// ReadSource concatenates every .h file under dir in lexicographic
// order with vulkan_core.h forced to the front.
func ReadSource(dir string) (*Sources, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read registry dir: %w", err)
	}

	var files []string
	haveCore := false
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".h") {
			continue
		}
		if e.Name() == coreHeaderName {
			haveCore = true
			continue
		}
		files = append(files, e.Name())
	}
	if !haveCore {
		return nil, fmt.Errorf("registry dir %s does not contain %s", dir, coreHeaderName)
	}
	sort.Strings(files)
	files = append([]string{coreHeaderName}, files...)

	src := &Sources{Dir: dir}
	var b strings.Builder
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if name == coreHeaderName {
			src.Core = string(data)
		}
		b.Write(data)
	}
	src.Header = b.String()
	return src, nil
}

// ExtensionsData reads the extension classification side table.
func (s *Sources) ExtensionsData() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, "extensions_data.txt"))
	if err != nil {
		return "", fmt.Errorf("read extensions data: %w", err)
	}
	return string(data), nil
}

// MandatoryFeatures reads the mandatory feature requirement side table.
func (s *Sources) MandatoryFeatures() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, "mandatory_features.txt"))
	if err != nil {
		return "", fmt.Errorf("read mandatory features: %w", err)
	}
	return string(data), nil
}
