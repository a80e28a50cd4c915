package models

import "strings"

// Country is one member of the supported country set.
type Country struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
}

// CountrySet resolves user-supplied country identifiers (ISO code or
// display name, any case) to a supported country.
type CountrySet struct {
	byKey map[string]Country
}

func NewCountrySet(countries []Country) *CountrySet {
	set := &CountrySet{byKey: make(map[string]Country, len(countries)*2)}
	for _, c := range countries {
		set.byKey[strings.ToLower(c.Code)] = c
		set.byKey[strings.ToLower(c.Name)] = c
	}
	return set
}

// Resolve returns the supported country matching the given code or name.
func (s *CountrySet) Resolve(input string) (Country, bool) {
	c, ok := s.byKey[strings.ToLower(strings.TrimSpace(input))]
	return c, ok
}

// Contains reports whether the input resolves to a supported country.
func (s *CountrySet) Contains(input string) bool {
	_, ok := s.Resolve(input)
	return ok
}
