// Package filter implements the dynamic SQL filter injection engine: a
// read-only catalog of named predicate fragments, an ordered per-report
// filter request, and an injector that splices the requested predicates
// into a query's filtering clause.
package filter

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Catalog maps filter names to SQL predicate fragments. Every fragment is a
// standalone boolean expression; fragments never carry a WHERE keyword or
// leading/trailing AND/OR. A Catalog is built once at startup and read-only
// afterwards.
type Catalog struct {
	fragments map[string]string
}

// NewCatalog builds a catalog from the given name -> fragment mapping.
// Fragments are whitespace-trimmed; empty fragments are dropped.
func NewCatalog(fragments map[string]string) *Catalog {
	m := make(map[string]string, len(fragments))
	for name, frag := range fragments {
		frag = strings.TrimSpace(frag)
		if name == "" || frag == "" {
			continue
		}
		m[name] = frag
	}
	return &Catalog{fragments: m}
}

// Lookup returns the predicate fragment for name. Unknown names return
// ok=false, never an error: requests may carry filter names this process
// does not know about and the injector ignores them.
func (c *Catalog) Lookup(name string) (fragment string, ok bool) {
	fragment, ok = c.fragments[name]
	return
}

// Names returns the known filter names (unordered).
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.fragments))
	for name := range c.fragments {
		out = append(out, name)
	}
	return out
}

// Default returns the built-in catalog. The fragments reference the `fecha`
// date column the report queries select on.
func Default() *Catalog {
	return NewCatalog(map[string]string{
		"current_month": "EXTRACT(MONTH FROM fecha) = EXTRACT(MONTH FROM CURRENT_DATE())",
		"current_year":  "EXTRACT(YEAR FROM fecha) = EXTRACT(YEAR FROM CURRENT_DATE())",
		"current_quarter": `CASE
            WHEN EXTRACT(MONTH FROM CURRENT_DATE()) BETWEEN 1 AND 3 THEN 1
            WHEN EXTRACT(MONTH FROM CURRENT_DATE()) BETWEEN 4 AND 6 THEN 2
            WHEN EXTRACT(MONTH FROM CURRENT_DATE()) BETWEEN 7 AND 9 THEN 3
            ELSE 4
        END =
        CASE
            WHEN EXTRACT(MONTH FROM fecha) BETWEEN 1 AND 3 THEN 1
            WHEN EXTRACT(MONTH FROM fecha) BETWEEN 4 AND 6 THEN 2
            WHEN EXTRACT(MONTH FROM fecha) BETWEEN 7 AND 9 THEN 3
            ELSE 4
        END`,
	})
}

// LoadCatalog reads a YAML file mapping filter names to predicate fragments
// and returns the default catalog overlaid with the file's entries. File
// entries win on name collision; an entry with an empty fragment removes the
// default of the same name.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read filter catalog from %s", path)
	}

	loaded := map[string]string{}
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal filter catalog %s", path)
	}

	merged := map[string]string{}
	for name, frag := range Default().fragments {
		merged[name] = frag
	}
	for name, frag := range loaded {
		if strings.TrimSpace(frag) == "" {
			delete(merged, name)
			continue
		}
		merged[name] = frag
	}
	return NewCatalog(merged), nil
}
