package parse

import "regexp"

// rule is one label-anchored extraction pattern. Rules for a field are
// evaluated in priority order; the first match whose trimmed value passes
// minLen wins and scanning for that field stops.
type rule struct {
	re     *regexp.Regexp
	minLen int
}

// Label-anchored field rules, most authoritative label first. Patterns run
// against the lowercased research text; values are cleaned up afterwards.
var (
	companyRules = []rule{
		{re: regexp.MustCompile(`company[:\s]*([^\n\r.]+)`), minLen: 3},
		{re: regexp.MustCompile(`works at[:\s]*([^\n\r.]+)`), minLen: 3},
		{re: regexp.MustCompile(`employed by[:\s]*([^\n\r.]+)`), minLen: 3},
		{re: regexp.MustCompile(`currently at[:\s]*([^\n\r.]+)`), minLen: 3},
		{re: regexp.MustCompile(`organization[:\s]*([^\n\r.]+)`), minLen: 3},
		{re: regexp.MustCompile(`employer[:\s]*([^\n\r.]+)`), minLen: 3},
	}

	roleRules = []rule{
		{re: regexp.MustCompile(`job title[:\s]*([^\n\r.]+)`), minLen: 3},
		{re: regexp.MustCompile(`title[:\s]*([^\n\r.]+)`), minLen: 3},
		{re: regexp.MustCompile(`position[:\s]*([^\n\r.]+)`), minLen: 3},
		{re: regexp.MustCompile(`role[:\s]*([^\n\r.]+)`), minLen: 3},
		{re: regexp.MustCompile(`current role[:\s]*([^\n\r.]+)`), minLen: 3},
		{re: regexp.MustCompile(`works as[:\s]*([^\n\r.]+)`), minLen: 3},
		{re: regexp.MustCompile(`serves as[:\s]*([^\n\r.]+)`), minLen: 3},
	}

	bioRules = []rule{
		{re: regexp.MustCompile(`professional bio[:\s]*([^\n\r]{50,400})`), minLen: 50},
		{re: regexp.MustCompile(`bio[:\s]*([^\n\r]{50,400})`), minLen: 50},
		{re: regexp.MustCompile(`summary[:\s]*([^\n\r]{50,400})`), minLen: 50},
		{re: regexp.MustCompile(`about[:\s]*([^\n\r]{50,400})`), minLen: 50},
		{re: regexp.MustCompile(`background[:\s]*([^\n\r]{50,400})`), minLen: 50},
		{re: regexp.MustCompile(`profile[:\s]*([^\n\r]{50,400})`), minLen: 50},
		{re: regexp.MustCompile(`description[:\s]*([^\n\r]{50,400})`), minLen: 50},
	}

	websiteRules = []rule{
		{re: regexp.MustCompile(`website[:\s]+(https?://[^\s\n\r]+)`)},
		{re: regexp.MustCompile(`personal site[:\s]+(https?://[^\s\n\r]+)`)},
		{re: regexp.MustCompile(`portfolio[:\s]+(https?://[^\s\n\r]+)`)},
	}

	locationRules = []rule{
		{re: regexp.MustCompile(`location[:\s]+([^\n\r]+)`)},
		{re: regexp.MustCompile(`based in[:\s]+([^\n\r]+)`)},
		{re: regexp.MustCompile(`lives in[:\s]+([^\n\r]+)`)},
	}

	industryRules = []rule{
		{re: regexp.MustCompile(`industry[:\s]+([^\n\r]+)`)},
		{re: regexp.MustCompile(`sector[:\s]+([^\n\r]+)`)},
		{re: regexp.MustCompile(`field[:\s]+([^\n\r]+)`)},
	}

	achievementRules = []rule{
		{re: regexp.MustCompile(`achievements?[:\s]*([^\n\r]{30,300})`)},
		{re: regexp.MustCompile(`notable work[:\s]*([^\n\r]{30,300})`)},
		{re: regexp.MustCompile(`accomplishments?[:\s]*([^\n\r]{30,300})`)},
		{re: regexp.MustCompile(`key projects?[:\s]*([^\n\r]{30,300})`)},
	}

	linkedinRe = regexp.MustCompile(`linkedin\.com/in/([^\s\n\r]+)`)
	twitterRe  = regexp.MustCompile(`twitter\.com/([^\s\n\r]+)`)

	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
)

// fillerWords are leading tokens stripped from extracted label values.
var fillerWords = map[string]bool{
	"is":  true,
	"a":   true,
	"an":  true,
	"the": true,
	"at":  true,
}

// defaultBioKeywords mark sentences that read like a professional
// description. Matching is plain substring containment per keyword, so
// "leads" does not match "leading" but "experience" matches anywhere.
var defaultBioKeywords = []string{
	"experience",
	"expert",
	"professional",
	"specializes",
	"focuses",
	"leads",
	"manages",
	"develops",
	"works",
}

// minBioSentenceLen is the threshold for the sentence-scan bio fallback.
const minBioSentenceLen = 50
