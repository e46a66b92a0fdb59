package svg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/itsmeyessir/itsmeyessir/internal/domain"
)

const fixture = `<svg xmlns="http://www.w3.org/2000/svg">
<text x="10"><tspan class="key">Repos</tspan>: <tspan class="value" id="repo_count">0</tspan></text>
<text x="10"><tspan class="key">Stars</tspan>: <tspan class="value" id="star_count">0</tspan></text>
<text x="10"><tspan class="key">Lines</tspan>: <tspan class="value" id="loc_count">old value</tspan></text>
<text x="10"><tspan class="key">Uptime</tspan>: <tspan class="value" id="uptime">your uptime here</tspan></text>
</svg>
`

func TestApply(t *testing.T) {
	testCases := []struct {
		name           string
		content        string
		stats          domain.DisplayStats
		uptime         string
		expectContains []string
		expectMissing  []string
	}{
		{
			name:    "replaces every marker and formats thousands",
			content: fixture,
			stats: domain.DisplayStats{
				"repo_count": 12,
				"star_count": 1234567,
				"loc_count":  -4200,
			},
			uptime: "1 year, 0 months, 0 days",
			expectContains: []string{
				`id="repo_count">12<`,
				`id="star_count">1,234,567<`,
				`id="loc_count">-4,200<`,
				`id="uptime">1 year, 0 months, 0 days<`,
			},
		},
		{
			name:           "absent marker is a no-op",
			content:        fixture,
			stats:          domain.DisplayStats{"follower_count": 3, "repo_count": 1},
			uptime:         "x",
			expectContains: []string{`id="repo_count">1<`, `id="uptime">x<`},
			expectMissing:  []string{"follower_count"},
		},
		{
			name:          "no markers at all",
			content:       "<svg></svg>",
			stats:         domain.DisplayStats{"repo_count": 1},
			uptime:        "x",
			expectMissing: []string{"repo_count", "uptime"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, missing := Apply(tc.content, tc.stats, tc.uptime)
			for _, s := range tc.expectContains {
				assert.Contains(t, got, s)
			}
			assert.Equal(t, tc.expectMissing, missing)
		})
	}
}

func TestApply_OnlyFirstMarkerAndSurroundingsKept(t *testing.T) {
	content := `<a id="star_count">0</a><b id="star_count">0</b>`
	got, _ := Apply(content, domain.DisplayStats{"star_count": 42}, "")
	assert.Equal(t, `<a id="star_count">42</a><b id="star_count">0</b>`, got)
}

func TestApply_EveryUptimeMarker(t *testing.T) {
	content := `<a id="uptime">old</a><b id="uptime">old</b>`
	got, missing := Apply(content, domain.DisplayStats{}, "2 years, 1 month, $1 days")
	assert.Equal(t, `<a id="uptime">2 years, 1 month, $1 days</a><b id="uptime">2 years, 1 month, $1 days</b>`, got)
	assert.Empty(t, missing)
}

func TestPatcher_Patch_KeepsPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "light_mode.svg")
	require.NoError(t, os.WriteFile(path, []byte(`<tspan id="uptime">x</tspan>`), 0o600))

	require.NoError(t, NewPatcher(zaptest.NewLogger(t)).Patch(path, domain.DisplayStats{}, "y"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestPatcher_Patch_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dark_mode.svg")
	require.NoError(t, os.WriteFile(path, []byte(`<tspan id="star_count">0</tspan>`), 0o644))
	p := NewPatcher(zaptest.NewLogger(t))

	require.NoError(t, p.Patch(path, domain.DisplayStats{"star_count": 42}, "up"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `<tspan id="star_count">42</tspan>`, string(data))

	require.NoError(t, p.Patch(path, domain.DisplayStats{"star_count": 43}, "up"))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `<tspan id="star_count">43</tspan>`, string(data))
}

func TestPatcher_Patch_MissingFile(t *testing.T) {
	p := NewPatcher(zaptest.NewLogger(t))
	err := p.Patch(filepath.Join(t.TempDir(), "missing.svg"), domain.DisplayStats{}, "")
	assert.ErrorIs(t, err, domain.ErrIO)
}
