package expr

import (
	"sort"

	"github.com/vk/jayvee/internal/valuetype"
)

// Parameters provides runtime parameters. Raw strings are parsed against the
// expected type on first access and cached per type.
type Parameters struct {
	raw   map[string]string
	cache map[paramKey]valuetype.Value
}

type paramKey struct {
	name string
	typ  string
}

// NewParameters wraps the raw key/value map.
func NewParameters(raw map[string]string) *Parameters {
	copied := make(map[string]string, len(raw))
	for k, v := range raw {
		copied[k] = v
	}
	return &Parameters{raw: copied, cache: make(map[paramKey]valuetype.Value)}
}

// Lookup parses the named parameter as t. It returns nil when the parameter
// is missing or does not parse.
func (p *Parameters) Lookup(name string, t valuetype.ValueType) valuetype.Value {
	key := paramKey{name: name, typ: t.Name()}
	if v, ok := p.cache[key]; ok {
		return v
	}
	raw, ok := p.raw[name]
	if !ok {
		return nil
	}
	v, ok := valuetype.Parse(raw, t)
	if !ok {
		v = nil
	}
	p.cache[key] = v
	return v
}

// Raw returns the unparsed parameter.
func (p *Parameters) Raw(name string) (string, bool) {
	v, ok := p.raw[name]
	return v, ok
}

// Names returns the parameter names, sorted.
func (p *Parameters) Names() []string {
	names := make([]string, 0, len(p.raw))
	for k := range p.raw {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
