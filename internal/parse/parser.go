package parse

import (
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/teemow/replyflow/internal/logging"
	"github.com/teemow/replyflow/internal/profile"
)

// Parser turns concatenated research text into a structured profile
// record. It is best-effort by construction: every field extraction can
// come up empty, and an internal failure degrades to a minimal record
// instead of an error.
type Parser struct {
	bioKeywords []string
	logger      *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithBioKeywords overrides the keyword list used by the sentence-scan
// bio fallback.
func WithBioKeywords(keywords []string) Option {
	return func(p *Parser) { p.bioKeywords = keywords }
}

// WithLogger sets the logger for degraded-parse warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// NewParser creates a parser with the default rule set.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		bioKeywords: defaultBioKeywords,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts profile fields from text for the given identity. The text
// is the concatenation of all successful backend results, most
// authoritative first; because each field stops at its first satisfying
// match, earlier sources win on overlapping facts.
//
// Parse never fails: if an extraction step panics, the returned record
// still carries the identity, timestamps and source tag.
func (p *Parser) Parse(email, name, source, text string, now time.Time) (rec *profile.Record) {
	rec = &profile.Record{
		Email:     email,
		Name:      name,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("profile parse degraded to minimal record",
				logging.UserHash(email),
				slog.Any("panic", r))
			rec = &profile.Record{
				Email:     email,
				Name:      name,
				Source:    source,
				CreatedAt: now,
				UpdatedAt: now,
			}
		}
	}()

	lower := strings.ToLower(text)
	nameTokens := lowerTokens(name)

	rec.Company = titleCase(extract(lower, companyRules, nil))
	rec.Role = titleCase(extract(lower, roleRules, nil))
	rec.Location = titleCase(extract(lower, locationRules, nil))
	rec.Industry = titleCase(extract(lower, industryRules, nil))
	rec.Website = extract(lower, websiteRules, nil)

	if m := linkedinRe.FindStringSubmatch(lower); m != nil {
		rec.LinkedInURL = "https://linkedin.com/in/" + m[1]
	}
	if m := twitterRe.FindStringSubmatch(lower); m != nil {
		rec.TwitterURL = "https://twitter.com/" + m[1]
	}

	bio := extract(lower, bioRules, nameTokens)
	if bio == "" {
		bio = p.scanSentences(text)
	}

	achievements := extract(lower, achievementRules, nil)
	switch {
	case bio != "" && achievements != "":
		bio = bio + ". Notable achievements: " + achievements
	case achievements != "":
		bio = "Notable achievements: " + achievements
	}
	rec.Bio = bio

	return rec
}

// extract applies rules in order and returns the first cleaned value
// longer than the rule's threshold. stripTokens are additional leading
// tokens (beyond filler words) removed before the length check.
func extract(text string, rules []rule, stripTokens []string) string {
	for _, r := range rules {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value := cleanValue(m[1], stripTokens)
		if len(value) > r.minLen {
			return value
		}
	}
	return ""
}

// cleanValue trims whitespace, removes leading filler words and
// stripTokens, and strips trailing punctuation.
func cleanValue(value string, stripTokens []string) string {
	value = strings.TrimSpace(value)

	for {
		word, rest, found := strings.Cut(value, " ")
		if !found {
			break
		}
		if !fillerWords[word] && !containsToken(stripTokens, word) {
			break
		}
		value = strings.TrimSpace(rest)
	}

	value = strings.TrimRight(value, ".,;: ")
	return value
}

func containsToken(tokens []string, word string) bool {
	for _, t := range tokens {
		if t == word {
			return true
		}
	}
	return false
}

// scanSentences is the bio fallback: the first sentence that is long
// enough and contains one of the configured keywords is used verbatim.
func (p *Parser) scanSentences(text string) string {
	for _, sentence := range sentenceSplitRe.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) <= minBioSentenceLen {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, keyword := range p.bioKeywords {
			if strings.Contains(lower, keyword) {
				return sentence
			}
		}
	}
	return ""
}

// lowerTokens splits a display name into lowercased tokens. A bio label
// value often leads with the person's own name; those tokens are stripped
// like filler.
func lowerTokens(name string) []string {
	if name == "" {
		return nil
	}
	return strings.Fields(strings.ToLower(name))
}

// titleCase uppercases the first letter of every word. Extracted values
// come from lowercased text, so labels like "acme corp" read back as
// "Acme Corp".
func titleCase(s string) string {
	if s == "" {
		return ""
	}
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
