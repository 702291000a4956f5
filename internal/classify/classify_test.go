package classify

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/aar/pkg/core"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		input string
		want  TargetKind
	}{
		{"Aircraft", TargetAir},
		{"Helicopter", TargetAir},
		{"Air+FixedWing", TargetAir},
		{"Air+Rotorcraft", TargetAir},
		{"Ground+Heavy+Armor+Vehicle+Tank", TargetSurface},
		{"Sea+Watercraft+Warship", TargetSurface},
		{"Tank", TargetSurface},
		{"Ground+Static+Building", TargetSurface},
		{"Missile", TargetUnknown},
		{"Weapon+Missile", TargetUnknown},
		{"Parachutist", TargetUnknown},
		{"", TargetUnknown},
		{"  ", TargetUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.input))
		})
	}
}

func TestClassify(t *testing.T) {
	c := Default()

	tests := []struct {
		name   string
		weapon string
		target TargetKind
		want   Result
	}{
		{"aim-120 vs air", "AIM-120C", TargetAir, Result{Domain: core.DomainAA}},
		{"aim-7 unknown target", "AIM-7M Sparrow III", TargetUnknown, Result{Domain: core.DomainAA}},
		{"r-27 lowercase", "r-27er", TargetAir, Result{Domain: core.DomainAA}},
		{"aa weapon vs ground is flagged", "R-77", TargetSurface, Result{Domain: core.DomainAA, Inconsistent: true}},
		{"magic", "R550 Magic 2", TargetAir, Result{Domain: core.DomainAA}},
		{"gbu vs ground", "GBU-12", TargetSurface, Result{Domain: core.DomainAG}},
		{"agm vs air keeps ag", "AGM-65D", TargetAir, Result{Domain: core.DomainAG}},
		{"mk-82 with space", "Mk 82", TargetUnknown, Result{Domain: core.DomainAG}},
		{"kh-29", "Kh-29L", TargetSurface, Result{Domain: core.DomainAG}},
		{"super 530 not a rocket", "Super 530D", TargetAir, Result{Domain: core.DomainAA}},
		{"s-530 beats s-5", "S-530D", TargetUnknown, Result{Domain: core.DomainAA}},
		{"s-5 rocket", "S-5KO", TargetUnknown, Result{Domain: core.DomainAG}},
		{"unknown weapon infers air", "9M311", TargetAir, Result{Domain: core.DomainAA}},
		{"unknown weapon infers surface", "GAU-8", TargetSurface, Result{Domain: core.DomainAG}},
		{"unknown weapon unknown target", "Mystery", TargetUnknown, Result{Domain: core.DomainUnknown}},
		{"empty weapon", "", TargetUnknown, Result{Domain: core.DomainUnknown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.weapon, tt.target))
			// memoized lookup returns the same answer
			assert.Equal(t, tt.want, c.Classify(tt.weapon, tt.target))
		})
	}
}

func TestClassifyShot_CategoryFallback(t *testing.T) {
	c := Default()

	assert.Equal(t, core.DomainAG, c.ClassifyShot("Some Bomb", "Bomb", TargetUnknown).Domain)
	assert.Equal(t, core.DomainAG, c.ClassifyShot("", "Rocket", TargetUnknown).Domain)
	assert.Equal(t, core.DomainUnknown, c.ClassifyShot("Something", "Missile", TargetUnknown).Domain)
	// family wins over category
	assert.Equal(t, core.DomainAA, c.ClassifyShot("AIM-9X", "Bomb", TargetUnknown).Domain)
}

func TestClassify_Concurrent(t *testing.T) {
	c := Default()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, core.DomainAA, c.Classify("AIM-9M", TargetAir).Domain)
			}
		}()
	}
	wg.Wait()
}

func TestTableValidate(t *testing.T) {
	tests := []struct {
		name  string
		table Table
	}{
		{"wrong version", Table{Version: 2, Families: DefaultTable().Families}},
		{"no families", Table{Version: 1}},
		{"unnamed family", Table{Version: 1, Families: []Family{{Domain: core.DomainAA, Prefixes: []string{"X"}}}}},
		{"unknown domain", Table{Version: 1, Families: []Family{{Name: "x", Domain: core.DomainUnknown, Prefixes: []string{"X"}}}}},
		{"no prefixes", Table{Version: 1, Families: []Family{{Name: "x", Domain: core.DomainAA}}}},
		{"empty prefix", Table{Version: 1, Families: []Family{{Name: "x", Domain: core.DomainAA, Prefixes: []string{" "}}}}},
		{"duplicate prefix", Table{Version: 1, Families: []Family{
			{Name: "a", Domain: core.DomainAA, Prefixes: []string{"AIM-"}},
			{Name: "b", Domain: core.DomainAG, Prefixes: []string{"aim_"}},
		}}},
		{"bad category", Table{Version: 1, Families: []Family{{Name: "x", Domain: core.DomainAA, Prefixes: []string{"X"}}},
			Categories: map[string]core.Domain{"Bomb": "Space"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTable)

			_, err = New(tt.table, 0)
			assert.ErrorIs(t, err, ErrInvalidTable)
		})
	}

	assert.NoError(t, DefaultTable().Validate())
}

func TestLoadTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weapons.yaml")
	doc := `version: 1
families:
  - name: custom-aam
    domain: AA
    prefixes: ["ZZ-"]
  - name: custom-agm
    domain: AG
    prefixes: ["YY-"]
categories:
  Bomb: AG
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	table, err := LoadTable(path)
	require.NoError(t, err)
	assert.Len(t, table.Families, 2)

	c, err := New(table, 16)
	require.NoError(t, err)
	assert.Equal(t, core.DomainAA, c.Classify("zz-9", TargetUnknown).Domain)
	assert.Equal(t, core.DomainAG, c.Classify("YY 1", TargetUnknown).Domain)
	// built-in families are not merged in
	assert.Equal(t, core.DomainUnknown, c.Classify("AIM-120C", TargetUnknown).Domain)
}

func TestLoadTable_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadTable(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read classification table")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("version: [1"), 0644))
	_, err = LoadTable(bad)
	assert.ErrorIs(t, err, ErrInvalidTable)

	dup := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(dup, []byte("version: 1\nfamilies:\n  - {name: a, domain: AA, prefixes: [X]}\n  - {name: b, domain: AG, prefixes: [x]}\n"), 0644))
	_, err = LoadTable(dup)
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestIsWeapon(t *testing.T) {
	assert.True(t, IsWeapon("Missile"))
	assert.True(t, IsWeapon("Weapon+Missile"))
	assert.True(t, IsWeapon("Bomb"))
	assert.True(t, IsWeapon("shell"))
	assert.False(t, IsWeapon("Aircraft"))
	assert.False(t, IsWeapon("Parachutist"))
	assert.False(t, IsWeapon(""))
}
