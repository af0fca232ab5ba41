package language

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type entry struct {
	code2   string // ISO 639-1 (2-letter)
	code3   string // ISO 639-2 primary (3-letter)
	alt3    string // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string
}

// The catalog speaks ISO 639-2 bibliographic codes ("eng", "fre"). This
// table covers the languages the catalog serves most; anything else falls
// back to a title-cased echo of the token.
var languages = []entry{
	{"en", "eng", "", "English"},
	{"es", "spa", "", "Spanish"},
	{"fr", "fra", "fre", "French"},
	{"de", "deu", "ger", "German"},
	{"it", "ita", "", "Italian"},
	{"pt", "por", "", "Portuguese"},
	{"pb", "pob", "", "Brazilian Portuguese"},
	{"ja", "jpn", "", "Japanese"},
	{"ko", "kor", "", "Korean"},
	{"zh", "zho", "chi", "Chinese"},
	{"ru", "rus", "", "Russian"},
	{"ar", "ara", "", "Arabic"},
	{"hi", "hin", "", "Hindi"},
	{"nl", "nld", "dut", "Dutch"},
	{"pl", "pol", "", "Polish"},
	{"sv", "swe", "", "Swedish"},
	{"da", "dan", "", "Danish"},
	{"no", "nor", "", "Norwegian"},
	{"fi", "fin", "", "Finnish"},
	{"cs", "ces", "cze", "Czech"},
	{"el", "ell", "gre", "Greek"},
	{"he", "heb", "", "Hebrew"},
	{"hu", "hun", "", "Hungarian"},
	{"ro", "ron", "rum", "Romanian"},
	{"tr", "tur", "", "Turkish"},
}

var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
)

var fallbackCaser = cases.Title(language.English)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	return nil
}

// Display returns a human-readable name for a catalog language token.
// Unknown tokens come back title-cased so tables stay readable; the lookup
// is for presentation only and never affects candidate matching, which is
// exact and case-sensitive.
func Display(code string) string {
	if e := lookup(code); e != nil {
		return e.display
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	return fallbackCaser.String(code)
}

// Known reports whether the token maps to a table entry. The CLI uses it to
// hint at likely typos without rejecting the token.
func Known(code string) bool {
	return lookup(code) != nil
}
