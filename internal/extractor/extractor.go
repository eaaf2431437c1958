// Package extractor pulls structured street addresses out of free-text
// listing titles and descriptions.
package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/models"
)

const cityName = "Lublin"

// streetStoplist holds generic listing words that regularly precede numbers
// and would otherwise false-positive as street names. This list is the
// tuning point for the bare-form fallback pattern.
var streetStoplist = map[string]bool{
	"pokój":      true,
	"pokoj":      true,
	"wynajm":     true,
	"mieszkanie": true,
	"oferta":     true,
}

// streetName: a run of capitalized-initial words in the Polish alphabet.
// tail: building number with optional trailing letter and optional unit
// number introduced by a slash or hyphen.
const (
	streetName = `([A-ZĄĆĘŁŃÓŚŹŻ][a-ząćęłńóśźż]+(?:\s+[A-ZĄĆĘŁŃÓŚŹŻ][a-ząćęłńóśźż]+)*)`
	numberTail = `\s+(\d+)([a-zA-Z]?)(?:\s*[/-]\s*(\d+))?`
)

type addressPattern struct {
	re         *regexp.Regexp
	maxNameLen int // 0 means no upper bound
}

// patterns is the ordered cascade. Order is the tie-break: the first
// validated match of the earliest pattern wins. The bare form at the end is
// a scraping-tolerance fallback and must stay last.
var patterns = []addressPattern{
	{re: regexp.MustCompile(`\b[Aa]l\.?\s+` + streetName + numberTail)},
	{re: regexp.MustCompile(`\b[Uu]l\.?\s+` + streetName + numberTail)},
	{re: regexp.MustCompile(`\b[Uu]lica\s+` + streetName + numberTail)},
	{re: regexp.MustCompile(`\b(?:[Pp]l\.|[Pp]lac)\s+` + streetName + numberTail)},
	{re: regexp.MustCompile(`\b` + streetName + numberTail + `[\s,.]*(?:[Ll]ublin\b|$)`), maxNameLen: 25},
}

// Extract scans text for an address and returns the first validated match of
// the highest-precedence pattern. A false second return value means no
// address was found, which is the normal outcome for most listing text.
func Extract(text string) (models.StructuredAddress, bool) {
	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			number := m[2]
			letter := m[3]
			unit := m[4]

			if !validStreetName(name, p.maxNameLen) {
				continue
			}
			n, err := strconv.Atoi(number)
			if err != nil || n < 1 || n > 999 {
				continue
			}

			return build(name, number+letter, unit), true
		}
	}
	return models.StructuredAddress{}, false
}

func validStreetName(name string, maxLen int) bool {
	runes := []rune(name)
	if len(runes) < 3 {
		return false
	}
	if maxLen > 0 && len(runes) > maxLen {
		return false
	}
	return !streetStoplist[strings.ToLower(name)]
}

func build(name, buildingNumber, unit string) models.StructuredAddress {
	normalized := cases.Title(language.Polish).String(name)

	// The street-prefix token is fixed to "ul." regardless of which marker
	// matched; avenue/plaza provenance only steers the geocoding queries.
	full := "ul. " + normalized + " " + buildingNumber
	if unit != "" {
		full += "/" + unit
	}
	full += ", " + cityName

	return models.StructuredAddress{
		StreetName:     normalized,
		BuildingNumber: buildingNumber,
		UnitNumber:     unit,
		FullAddress:    full,
	}
}
