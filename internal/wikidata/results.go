package wikidata

type response struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []Binding `json:"bindings"`
	} `json:"results"`
}

// Term is one bound value in a SPARQL JSON result row.
type Term struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

// Binding maps variable names to their values for one result row.
type Binding map[string]Term

// Value returns the value bound to name or "".
func (b Binding) Value(name string) string {
	if term, ok := b[name]; ok {
		return term.Value
	}
	return ""
}

// Entity is a flattened result row. Unbound variables are empty strings.
type Entity struct {
	IRI         string
	Label       string
	Description string
	Image       string
	Birth       string
	Death       string
	Gender      string
	InstanceOf  string
	Geo         string
}

// entitiesFromBindings keeps the first row per entity; later rows usually
// differ only in multi-valued statements such as a second image.
func entitiesFromBindings(bindings []Binding) []Entity {
	out := make([]Entity, 0, len(bindings))
	seen := make(map[string]struct{}, len(bindings))
	for _, binding := range bindings {
		iri := binding.Value("item")
		if iri == "" {
			continue
		}
		if _, dup := seen[iri]; dup {
			continue
		}
		seen[iri] = struct{}{}
		out = append(out, Entity{
			IRI:         iri,
			Label:       binding.Value("itemLabel"),
			Description: binding.Value("itemDescription"),
			Image:       binding.Value("image"),
			Birth:       binding.Value("birth"),
			Death:       binding.Value("death"),
			Gender:      binding.Value("genderLabel"),
			InstanceOf:  binding.Value("classLabel"),
			Geo:         binding.Value("geo"),
		})
	}
	return out
}
