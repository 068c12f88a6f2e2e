package resolver

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/storymap/internal/record"
)

// patternSet is the ordered identifier-extraction machinery for one
// parent layer.
type patternSet struct {
	label  string           // field label, e.g. "Capability"
	prefix string           // identifier prefix, e.g. "CAP"
	body   []*regexp.Regexp // document body patterns, most specific first
	paren  *regexp.Regexp   // "(CAP-XXX)" inside a metadata value
	token  *regexp.Regexp   // bare token, for filename and path
}

// newPatternSet builds the extraction set for one parent layer. Broad
// token patterns come last so an explicit "Capability ID" line always
// beats a stray identifier in prose.
func newPatternSet(label, prefix string) *patternSet {
	return &patternSet{
		label:  label,
		prefix: prefix,
		body: []*regexp.Regexp{
			regexp.MustCompile(fmt.Sprintf(`(?i)\*\*%s ID\*\*:\s*(%s-[A-Z0-9-]+)`, label, prefix)),
			regexp.MustCompile(fmt.Sprintf(`(?i)%s ID:\s*(%s-[A-Z0-9-]+)`, label, prefix)),
			regexp.MustCompile(fmt.Sprintf(`(?i)%sId:\s*(%s-[A-Z0-9-]+)`, strings.ToLower(label), prefix)),
			regexp.MustCompile(fmt.Sprintf(`(?i)\*\*%s\*\*:[^(]*\((%s-[A-Z0-9-]+)\)`, label, prefix)),
			regexp.MustCompile(fmt.Sprintf(`(?i)%s:\s*(%s-[A-Z0-9-]+)`, strings.ToLower(label), prefix)),
			regexp.MustCompile(fmt.Sprintf(`(?i)parent:\s*(%s-[A-Z0-9-]+)`, prefix)),
			regexp.MustCompile(fmt.Sprintf(`(?i)(%s-\d{3,6})`, prefix)),
			regexp.MustCompile(fmt.Sprintf(`(?i)(%s-[A-Z]+-[A-Z0-9-]+-\d+)`, prefix)),
		},
		paren: regexp.MustCompile(fmt.Sprintf(`(?i)\((%s-[A-Z0-9-]+)\)`, prefix)),
		token: regexp.MustCompile(fmt.Sprintf(`(?i)(%s-[A-Z0-9-]+)`, prefix)),
	}
}

var (
	capPatterns = newPatternSet("Capability", "CAP")
	enbPatterns = newPatternSet("Enabler", "ENB")
)

// extract pulls a parent identifier out of a record whose reference
// field is empty. Order: body patterns, metadata fields, filename, path.
func (p *patternSet) extract(rec record.Record) string {
	for _, re := range p.body {
		if m := re.FindStringSubmatch(rec.RawContent); m != nil {
			return strings.ToUpper(m[1])
		}
	}

	// Field keys are walked in sorted order so extraction never depends
	// on map iteration.
	keys := make([]string, 0, len(rec.Fields))
	for key := range rec.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lowLabel := strings.ToLower(p.label)
	for _, key := range keys {
		value := rec.Fields[key]
		lowKey := strings.ToLower(key)
		if strings.Contains(lowKey, lowLabel) && strings.Contains(lowKey, "id") {
			if strings.HasPrefix(strings.ToUpper(value), p.prefix+"-") {
				return strings.ToUpper(value)
			}
		}
		if lowKey == lowLabel {
			if m := p.paren.FindStringSubmatch(value); m != nil {
				return strings.ToUpper(m[1])
			}
			if strings.HasPrefix(strings.ToUpper(value), p.prefix+"-") {
				return strings.ToUpper(value)
			}
		}
	}

	if m := p.token.FindStringSubmatch(rec.Source.Filename); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := p.token.FindStringSubmatch(rec.Source.Path); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}
