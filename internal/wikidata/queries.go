package wikidata

import (
	"fmt"
	"regexp"
	"strings"
)

var qidPattern = regexp.MustCompile(`^Q[0-9]+$`)

// IsQID reports whether value is a bare entity identifier such as Q42.
func IsQID(value string) bool {
	return qidPattern.MatchString(value)
}

// EscapeLiteral escapes value for use inside a double-quoted SPARQL string.
func EscapeLiteral(value string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return replacer.Replace(value)
}

const candidateFields = `?item ?itemLabel ?itemDescription ?image ?birth ?death ?genderLabel`

const optionalFacts = `
  OPTIONAL { ?item wdt:P18 ?image. }
  OPTIONAL { ?item wdt:P21 ?gender. }
  OPTIONAL { ?item wdt:P569 ?birth. }
  OPTIONAL { ?item wdt:P570 ?death. }`

func (c *Client) labelService() string {
	return fmt.Sprintf(`
  SERVICE wikibase:label { bd:serviceParam wikibase:language "%s". }`, EscapeLiteral(strings.Join(c.languages, ",")))
}

func (c *Client) nameSearchQuery(name, class string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT DISTINCT %s ?num WHERE {\n", candidateFields)
	fmt.Fprintf(&b, "  ?item wdt:P31/wdt:P279* wd:%s.", class)
	b.WriteString(optionalFacts)
	fmt.Fprintf(&b, `
  SERVICE wikibase:mwapi {
    bd:serviceParam wikibase:endpoint "www.wikidata.org";
                    wikibase:api "EntitySearch";
                    mwapi:search "%s";
                    mwapi:language "en".
    ?item wikibase:apiOutputItem mwapi:item.
    ?num wikibase:apiOrdinal true.
  }`, EscapeLiteral(name))
	b.WriteString(c.labelService())
	b.WriteString("\n}\nORDER BY ?num")
	return b.String()
}

func (c *Client) viafQuery(viaf string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT DISTINCT %s WHERE {\n", candidateFields)
	fmt.Fprintf(&b, `  ?item wdt:P214 "%s".`, EscapeLiteral(viaf))
	b.WriteString(optionalFacts)
	b.WriteString(c.labelService())
	b.WriteString("\n}")
	return b.String()
}

func (c *Client) statementsQuery(qid string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT DISTINCT %s ?classLabel ?geo WHERE {\n", candidateFields)
	b.WriteString("  ?item wdt:P31 ?class.")
	b.WriteString(optionalFacts)
	b.WriteString("\n  OPTIONAL { ?item wdt:P625 ?geo. }")
	fmt.Fprintf(&b, "\n  VALUES (?item) { (wd:%s) }", qid)
	b.WriteString(c.labelService())
	b.WriteString("\n}")
	return b.String()
}

func (c *Client) birthCountryQuery(qid string) string {
	var b strings.Builder
	b.WriteString("SELECT DISTINCT ?countryLabel WHERE {\n")
	b.WriteString("  ?item wdt:P31 ?class.\n")
	b.WriteString("  ?item wdt:P19 ?place.\n")
	b.WriteString("  ?place wdt:P17 ?country.\n")
	if IsQID(c.excludedContinent) {
		fmt.Fprintf(&b, "  FILTER NOT EXISTS { ?country wdt:P30 wd:%s. }\n", c.excludedContinent)
	}
	fmt.Fprintf(&b, "  VALUES (?item) { (wd:%s) }", qid)
	b.WriteString(c.labelService())
	b.WriteString("\n}")
	return b.String()
}
