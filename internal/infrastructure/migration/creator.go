package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const upTemplate = `-- {{.Version}} {{.Name}}
-- Created: {{.Timestamp}}

`

const downTemplate = `-- {{.Version}} {{.Name}} (rollback)
-- Created: {{.Timestamp}}

`

// versionWidth matches the zero padding of `migrate create -seq`
const versionWidth = 6

// File describes a scaffolded up/down pair
type File struct {
	Version   string
	Name      string
	Timestamp string
	UpPath    string
	DownPath  string
}

// Create writes the next sequential up/down pair into dir. Versions follow
// the highest existing one, so files sort the way golang-migrate reads them.
func Create(dir, name string, now time.Time) (*File, error) {
	base := sanitizeName(name)
	if base == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := List(dir)
	if err != nil {
		return nil, err
	}
	next := uint64(1)
	if len(existing) > 0 {
		next = existing[len(existing)-1].Version + 1
	}

	version := padVersion(next)
	stem := version + "_" + base
	f := &File{
		Version:   version,
		Name:      base,
		Timestamp: now.UTC().Format(time.RFC3339),
		UpPath:    filepath.Join(dir, stem+".up.sql"),
		DownPath:  filepath.Join(dir, stem+".down.sql"),
	}

	if err := writeTemplate(f.UpPath, upTemplate, f); err != nil {
		return nil, err
	}
	if err := writeTemplate(f.DownPath, downTemplate, f); err != nil {
		_ = os.Remove(f.UpPath)
		return nil, err
	}
	return f, nil
}

// Entry is one migration found on disk
type Entry struct {
	Version uint64
	Name    string
}

// List returns the migrations in dir ordered by version. A missing
// directory yields an empty list.
func List(dir string) ([]Entry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	out := make([]Entry, 0, len(entries)/2)
	for _, entry := range entries {
		stem, ok := strings.CutSuffix(entry.Name(), ".up.sql")
		if entry.IsDir() || !ok {
			continue
		}
		rawVersion, name, _ := strings.Cut(stem, "_")
		version, err := strconv.ParseUint(rawVersion, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, Entry{Version: version, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func writeTemplate(path, body string, data *File) error {
	tmpl, err := template.New(filepath.Base(path)).Parse(body)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// sanitizeName lower-cases name and folds separators into single
// underscores, dropping everything else.
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, c := range strings.ToLower(name) {
		switch {
		case (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(c)
		case c == ' ' || c == '-' || c == '_':
			pendingSep = true
		}
	}
	return b.String()
}

func padVersion(v uint64) string {
	return fmt.Sprintf("%0*d", versionWidth, v)
}
