// Package svg rewrites the text inside id-tagged placeholder markers of SVG files.
package svg

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/renameio/v2"
	"go.uber.org/zap"

	"github.com/itsmeyessir/itsmeyessir/internal/domain"
)

// Patcher replaces marker contents in target files.
type Patcher struct {
	logger *zap.Logger
}

func NewPatcher(logger *zap.Logger) *Patcher {
	return &Patcher{logger: logger}
}

// Patch rewrites the markers of the file at path. Every uptime marker
// receives uptime. The file is left untouched when nothing changes.
func (p *Patcher) Patch(path string, stats domain.DisplayStats, uptime string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: failed to read %s: %w", domain.ErrIO, path, err)
	}
	content := string(data)
	patched, missing := Apply(content, stats, uptime)
	if len(missing) > 0 {
		p.logger.Debug("Markers not found", zap.String("file", path), zap.Strings("fields", missing))
	}
	if patched == content {
		p.logger.Info("Target already up to date", zap.String("file", path))
		return nil
	}
	if err := renameio.WriteFile(path, []byte(patched), 0o644, renameio.WithExistingPermissions()); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", domain.ErrIO, path, err)
	}
	p.logger.Info("Patched target", zap.String("file", path))
	return nil
}

// Apply replaces the first marker of every stats field and every uptime marker
// in content. It returns the new content with the fields whose marker was
// absent. Integers are rendered with thousands separators; uptime is inserted
// verbatim.
func Apply(content string, stats domain.DisplayStats, uptime string) (string, []string) {
	fields := make([]string, 0, len(stats))
	for field := range stats {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var (
		missing []string
		ok      bool
	)
	for _, field := range fields {
		if content, ok = replaceMarker(content, field, humanize.Comma(stats[field])); !ok {
			missing = append(missing, field)
		}
	}
	if content, ok = replaceAllMarkers(content, domain.FieldUptime, uptime); !ok {
		missing = append(missing, domain.FieldUptime)
	}
	return content, missing
}

func markerPattern(field string) *regexp.Regexp {
	return regexp.MustCompile(`id="` + regexp.QuoteMeta(field) + `">[^<]*<`)
}

// replaceMarker swaps the text of the first id="field">...< run for value.
func replaceMarker(content, field, value string) (string, bool) {
	loc := markerPattern(field).FindStringIndex(content)
	if loc == nil {
		return content, false
	}
	var b strings.Builder
	b.Grow(len(content) + len(value))
	b.WriteString(content[:loc[0]])
	b.WriteString(`id="`)
	b.WriteString(field)
	b.WriteString(`">`)
	b.WriteString(value)
	b.WriteString(`<`)
	b.WriteString(content[loc[1]:])
	return b.String(), true
}

// replaceAllMarkers swaps the text of every id="field">...< run for value.
func replaceAllMarkers(content, field, value string) (string, bool) {
	re := markerPattern(field)
	if !re.MatchString(content) {
		return content, false
	}
	marker := `id="` + field + `">` + value + `<`
	return re.ReplaceAllStringFunc(content, func(string) string { return marker }), true
}
