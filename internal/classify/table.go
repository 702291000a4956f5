package classify

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/OCAP2/aar/pkg/core"
)

// ErrInvalidTable is returned when a classification table fails validation.
var ErrInvalidTable = errors.New("invalid classification table")

// TableVersion is the only table format version understood.
const TableVersion = 1

// Family is a named group of weapon types sharing a domain.
type Family struct {
	Name     string      `yaml:"name"`
	Domain   core.Domain `yaml:"domain"`
	Prefixes []string    `yaml:"prefixes"`
}

// Table is the closed weapon-type to domain mapping.
type Table struct {
	Version  int      `yaml:"version"`
	Families []Family `yaml:"families"`
	// Categories maps a weapon object category (e.g. "Bomb") to a domain for
	// weapons whose type matches no family.
	Categories map[string]core.Domain `yaml:"categories"`
}

// DefaultTable returns the built-in family table.
func DefaultTable() Table {
	return Table{
		Version: TableVersion,
		Families: []Family{
			{Name: "us-aam", Domain: core.DomainAA, Prefixes: []string{"AIM-"}},
			{Name: "ru-aam", Domain: core.DomainAA, Prefixes: []string{
				"R-24", "R-27", "R-33", "R-37", "R-40", "R-60", "R-73", "R-77", "R-3S", "R-3R",
			}},
			{Name: "eu-aam", Domain: core.DomainAA, Prefixes: []string{
				"MAGIC", "R550", "R-550", "MICA", "SUPER-530", "S-530", "S530", "METEOR", "ASRAAM", "IRIS-T", "SKYFLASH",
			}},
			{Name: "other-aam", Domain: core.DomainAA, Prefixes: []string{
				"PL-", "SD-10", "PYTHON", "DERBY", "SHAFRIR",
			}},
			{Name: "guided-bombs", Domain: core.DomainAG, Prefixes: []string{
				"GBU-", "KAB-", "JDAM", "SDB", "LS-6", "GB-6",
			}},
			{Name: "unguided-bombs", Domain: core.DomainAG, Prefixes: []string{
				"MK-8", "MK-20", "CBU-", "BLU-", "FAB-", "OFAB-", "RBK-", "BETAB-", "SAB-", "BDU-", "SAMP-", "BAP-",
			}},
			{Name: "agm", Domain: core.DomainAG, Prefixes: []string{
				"AGM-", "JSOW", "HARM", "HELLFIRE", "MAVERICK", "HARPOON", "SLAM", "BRIMSTONE", "SPICE", "TAURUS", "STORM-SHADOW", "SCALP",
			}},
			{Name: "kh-asm", Domain: core.DomainAG, Prefixes: []string{"KH-", "9M114", "9M120", "9M127", "VIKHR", "SHTURM", "ATAKA"}},
			{Name: "rockets", Domain: core.DomainAG, Prefixes: []string{
				"S-5", "S-8", "S-13", "S-24", "S-25", "HYDRA", "ZUNI", "FFAR", "SNEB", "APKWS", "M151", "MK-151",
			}},
		},
		Categories: map[string]core.Domain{
			"BOMB":   core.DomainAG,
			"ROCKET": core.DomainAG,
		},
	}
}

// LoadTable reads a YAML classification table from path and validates it.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read classification table: %w", err)
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// Validate checks that every family has a concrete domain and at least one
// prefix, and that no prefix belongs to two families.
func (t Table) Validate() error {
	if t.Version != TableVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidTable, t.Version)
	}
	if len(t.Families) == 0 {
		return fmt.Errorf("%w: no families", ErrInvalidTable)
	}
	owner := make(map[string]string)
	for i, f := range t.Families {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("%w: family %d has no name", ErrInvalidTable, i)
		}
		if f.Domain != core.DomainAA && f.Domain != core.DomainAG {
			return fmt.Errorf("%w: family %q has domain %q", ErrInvalidTable, f.Name, f.Domain)
		}
		if len(f.Prefixes) == 0 {
			return fmt.Errorf("%w: family %q has no prefixes", ErrInvalidTable, f.Name)
		}
		for _, p := range f.Prefixes {
			n := normalize(p)
			if n == "" {
				return fmt.Errorf("%w: family %q has an empty prefix", ErrInvalidTable, f.Name)
			}
			if prev, ok := owner[n]; ok {
				return fmt.Errorf("%w: prefix %q claimed by %q and %q", ErrInvalidTable, p, prev, f.Name)
			}
			owner[n] = f.Name
		}
	}
	for c, d := range t.Categories {
		if d != core.DomainAA && d != core.DomainAG {
			return fmt.Errorf("%w: category %q has domain %q", ErrInvalidTable, c, d)
		}
	}
	return nil
}

// normalize folds case and separators so "Mk 82", "MK_82" and "mk-82" compare equal.
func normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '_' {
			return '-'
		}
		return r
	}, s)
}
