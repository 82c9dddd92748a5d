// Package lookup keeps the fixed dictionaries used by the normalizer and the
// metrics engine as data. Tables are read from lookups.yaml.
//
// There are two kinds of dictionaries. Open dictionaries rename the values
// they know and pass everything else through. Closed dictionaries are
// exhaustive: a value they do not know has no translation.
package lookup

import (
	"fmt"
	"slices"
	"strings"

	"github.com/growthcenter/esdash/pkg/templates"
	"gopkg.in/yaml.v3"
)

// Placeholder describes tokens that mean "no value" in a column.
type Placeholder struct {
	Column      string   `yaml:"column"`
	Tokens      []string `yaml:"tokens"`
	Replacement string   `yaml:"replacement"`
}

// Layer translates a job-grade code to its label.
type Layer struct {
	Code  string `yaml:"code"`
	Label string `yaml:"label"`
}

// Override is a forced unit and subunit for one employee.
type Override struct {
	NIK     int    `yaml:"nik"`
	Unit    string `yaml:"unit"`
	Subunit string `yaml:"subunit"`
}

// Tenure holds bucket edges and labels.
type Tenure struct {
	Edges  []float64 `yaml:"edges"`
	Labels []string  `yaml:"labels"`
}

// Dimension is a survey facet backed by several Likert items.
type Dimension struct {
	Code  string   `yaml:"code"`
	Name  string   `yaml:"name"`
	Items []string `yaml:"items"`
}

// AverageColumn is the name of the derived column for the dimension.
func (d Dimension) AverageColumn() string {
	return "average_" + strings.ToLower(d.Code)
}

// Tables is the content of lookups.yaml.
type Tables struct {
	Placeholders []Placeholder               `yaml:"placeholders"`
	Casing       map[string]string           `yaml:"casing"`
	Remaps       map[string]map[string]string `yaml:"remaps"`
	LegacyRemaps map[string]map[string]string `yaml:"legacy_remaps"`
	Layers       []Layer                     `yaml:"layers"`
	Tenure       Tenure                      `yaml:"tenure"`
	Dimensions   []Dimension                 `yaml:"dimensions"`
	GallupItems  []string                    `yaml:"gallup_items"`
	Moods        map[int]string              `yaml:"moods"`
	Overrides    []Override                  `yaml:"overrides"`

	layers    map[string]string
	layerRank map[string]int
	overrides map[string]Override
}

// Open returns the translation of key, or key itself when the dictionary
// does not know it.
func Open(dict map[string]string, key string) string {
	if v, ok := dict[key]; ok {
		return v
	}
	return key
}

// Closed returns the translation of key. The second value is false when the
// key is unknown, and the translation is then empty.
func Closed(dict map[string]string, key string) (string, bool) {
	v, ok := dict[key]
	return v, ok
}

// Parse reads lookups.yaml content and validates it.
func Parse(data []byte) (*Tables, error) {
	var res Tables
	if err := yaml.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("cannot parse lookup tables: %w", err)
	}
	if err := res.init(); err != nil {
		return nil, err
	}
	return &res, nil
}

// Default returns the lookup tables embedded in the binary.
func Default() *Tables {
	res, err := Parse([]byte(templates.LookupsYAML))
	if err != nil {
		panic(err)
	}
	return res
}

func (t *Tables) init() error {
	if err := t.validate(); err != nil {
		return err
	}

	t.layers = make(map[string]string, len(t.Layers))
	t.layerRank = make(map[string]int, len(t.Layers))
	for i, l := range t.Layers {
		t.layers[l.Code] = l.Label
		if _, ok := t.layerRank[l.Label]; !ok {
			t.layerRank[l.Label] = i
		}
	}

	// last entry for the same employee wins
	t.overrides = make(map[string]Override, len(t.Overrides))
	for _, o := range t.Overrides {
		t.overrides[fmt.Sprintf("%d", o.NIK)] = o
	}
	return nil
}

func (t *Tables) validate() error {
	e := t.Tenure.Edges
	if len(e) == 0 {
		return fmt.Errorf("tenure edges cannot be empty")
	}
	if len(e) != len(t.Tenure.Labels) {
		return fmt.Errorf(
			"tenure has %d edges and %d labels", len(e), len(t.Tenure.Labels),
		)
	}
	if !slices.IsSorted(e) {
		return fmt.Errorf("tenure edges must be ascending")
	}
	for i := 1; i < len(e); i++ {
		if e[i] == e[i-1] {
			return fmt.Errorf("tenure edge %v is repeated", e[i])
		}
	}

	codes := make(map[string]struct{})
	for _, d := range t.Dimensions {
		if d.Code == "" {
			return fmt.Errorf("dimension without code")
		}
		if len(d.Items) == 0 {
			return fmt.Errorf("dimension %q has no items", d.Code)
		}
		k := strings.ToLower(d.Code)
		if _, ok := codes[k]; ok {
			return fmt.Errorf("dimension %q is repeated", d.Code)
		}
		codes[k] = struct{}{}
	}

	for _, p := range t.Placeholders {
		if p.Column == "" {
			return fmt.Errorf("placeholder entry without column")
		}
	}

	for col, c := range t.Casing {
		switch c {
		case "capitalize", "title", "upper", "lower":
		default:
			return fmt.Errorf("unknown casing %q for column %q", c, col)
		}
	}

	for _, o := range t.Overrides {
		if o.NIK <= 0 {
			return fmt.Errorf("override with invalid nik %d", o.NIK)
		}
	}
	return nil
}

// Layer translates a layer code with the closed layer dictionary.
func (t *Tables) Layer(code string) (string, bool) {
	return Closed(t.layers, code)
}

// LayerRank returns the position of a layer label in the hierarchy.
// Unknown labels get len(Layers), so they sort after all known ones.
func (t *Tables) LayerRank(label string) int {
	if r, ok := t.layerRank[label]; ok {
		return r
	}
	return len(t.Layers)
}

// TenureRank returns the position of a tenure bucket label. Unknown labels
// sort last.
func (t *Tables) TenureRank(label string) int {
	if i := slices.Index(t.Tenure.Labels, label); i >= 0 {
		return i
	}
	return len(t.Tenure.Labels)
}

// Override returns the forced unit and subunit of an employee. The key is
// the canonical text of the nik.
func (t *Tables) Override(nik string) (Override, bool) {
	o, ok := t.overrides[nik]
	return o, ok
}

// Placeholder returns placeholder settings of a column.
func (t *Tables) Placeholder(col string) (Placeholder, bool) {
	for _, p := range t.Placeholders {
		if p.Column == col {
			return p, true
		}
	}
	return Placeholder{}, false
}

// Dimension finds a dimension by its code, case-insensitively.
func (t *Tables) Dimension(code string) (Dimension, bool) {
	for _, d := range t.Dimensions {
		if strings.EqualFold(d.Code, code) {
			return d, true
		}
	}
	return Dimension{}, false
}

// Items returns all Likert item columns of all dimensions, in order.
func (t *Tables) Items() []string {
	var res []string
	for _, d := range t.Dimensions {
		res = append(res, d.Items...)
	}
	return res
}

// Mood returns the description of a mood code.
func (t *Tables) Mood(code int) string {
	return t.Moods[code]
}

// MoodLevels returns mood codes in ascending order.
func (t *Tables) MoodLevels() []int {
	res := make([]int, 0, len(t.Moods))
	for k := range t.Moods {
		res = append(res, k)
	}
	slices.Sort(res)
	return res
}
