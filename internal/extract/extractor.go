package extract

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/exposurescan/internal/mask"
	"github.com/nao1215/exposurescan/internal/model"
)

const (
	// DefaultMaxTextBytes bounds the text a single Extract call inspects.
	DefaultMaxTextBytes = 512 * 1024

	// DefaultSnippetLength is the evidence snippet length in runes.
	DefaultSnippetLength = 160

	// snippetLead is how many runes of context precede the match in a snippet.
	snippetLead = 24
)

// Extractor scans free text for personal identifiers.
// An Extractor is safe for concurrent use.
type Extractor struct {
	patterns      []pattern
	maxTextBytes  int
	snippetLength int
	logger        *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxTextBytes sets the maximum number of bytes inspected per call.
// Longer text is truncated with a warning.
func WithMaxTextBytes(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxTextBytes = n
		}
	}
}

// WithSnippetLength sets the evidence snippet length in runes.
func WithSnippetLength(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.snippetLength = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New creates an Extractor with the built-in identifier passes.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		patterns:      defaultPatterns(),
		maxTextBytes:  DefaultMaxTextBytes,
		snippetLength: DefaultSnippetLength,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// Extract returns one candidate per distinct identifier found in text,
// attributed to source. Empty text yields an empty slice.
func (e *Extractor) Extract(text string, source model.DetectionSource) []model.Candidate {
	candidates := make([]model.Candidate, 0)
	if strings.TrimSpace(text) == "" {
		return candidates
	}

	text = e.truncate(text)

	emailSpans := emailRegex.FindAllStringIndex(text, -1)

	for _, p := range e.patterns {
		found := e.runPass(p, text, source, emailSpans)
		candidates = append(candidates, found...)
	}

	handles := e.runPaymentHandlePass(text, source, emailSpans)
	candidates = append(candidates, handles...)

	return candidates
}

// Redact masks every identifier found in text. It is used on evidence
// snippets so that persisted evidence never carries raw values.
func (e *Extractor) Redact(text string) string {
	if text == "" {
		return text
	}
	text = e.truncate(text)

	// Card numbers before national IDs and phones so a card is masked whole.
	order := []pattern{
		e.patternByName("email"),
		e.patternByName("card_number"),
		e.patternByName("national_id"),
		e.patternByName("tax_id"),
		{name: "payment_handle", ingredientKey: model.IngredientPaymentHandle, regex: paymentHandleRegex},
		e.patternByName("phone"),
		e.patternByName("address"),
	}

	for _, p := range order {
		if p.regex == nil {
			continue
		}
		text = redactPattern(text, p)
	}
	return text
}

// Evidence returns a redacted snippet of the beginning of text, bounded by
// the snippet length. It is used for evidence that is not itself a match,
// such as a breach description.
func (e *Extractor) Evidence(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return e.Redact(e.snippet(text, []int{0, 0}))
}

// runPass runs one pattern over text. A panic inside the pass is recovered
// and logged; whatever was collected before the panic is kept.
func (e *Extractor) runPass(p pattern, text string, source model.DetectionSource, emailSpans [][]int) (found []model.Candidate) {
	found = make([]model.Candidate, 0)

	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("identifier pass failed",
				"pass", p.name,
				"source", source,
				"error", fmt.Sprint(r),
			)
		}
	}()

	seen := make(map[string]bool)
	for _, loc := range p.regex.FindAllStringIndex(text, -1) {
		if p.ingredientKey != model.IngredientEmail && overlapsAny(loc, emailSpans) {
			continue
		}
		if p.validator != nil && !p.validator(text, loc) {
			continue
		}

		value := strings.TrimSpace(text[loc[0]:loc[1]])
		if p.normalize != nil {
			value = p.normalize(value)
		}
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true

		found = append(found, e.candidate(p, value, source, text, loc))
	}

	return found
}

// runPaymentHandlePass finds name@bank handles that are not part of an email.
func (e *Extractor) runPaymentHandlePass(text string, source model.DetectionSource, emailSpans [][]int) []model.Candidate {
	p := pattern{
		name:          "payment_handle",
		ingredientKey: model.IngredientPaymentHandle,
		regex:         paymentHandleRegex,
		confidence:    ConfidencePaymentHandle,
		normalize:     toLower,
		validator: func(_ string, loc []int) bool {
			return !overlapsAny(loc, emailSpans)
		},
	}

	emails := make(map[string]bool, len(emailSpans))
	for _, span := range emailSpans {
		emails[strings.ToLower(text[span[0]:span[1]])] = true
	}

	handles := e.runPass(p, text, source, nil)
	kept := handles[:0]
	for _, c := range handles {
		if emails[c.Value] {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// candidate builds a Candidate for a match.
func (e *Extractor) candidate(p pattern, value string, source model.DetectionSource, text string, loc []int) model.Candidate {
	return model.Candidate{
		IngredientKey:   p.ingredientKey,
		Value:           value,
		Source:          source,
		EvidenceSnippet: e.Redact(e.snippet(text, loc)),
		Confidence:      model.Confidence(p.confidence),
		Branch:          "extract:" + p.name,
	}
}

// snippet returns up to snippetLength runes of text starting a little before
// the match.
func (e *Extractor) snippet(text string, loc []int) string {
	start := loc[0]
	for lead := 0; lead < snippetLead && start > 0; lead++ {
		_, size := utf8.DecodeLastRuneInString(text[:start])
		start -= size
	}

	end := start
	for n := 0; n < e.snippetLength && end < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}

	return strings.Join(strings.Fields(text[start:end]), " ")
}

// truncate cuts text to maxTextBytes on a rune boundary.
func (e *Extractor) truncate(text string) string {
	if len(text) <= e.maxTextBytes {
		return text
	}

	e.logger.Warn("text exceeds extraction limit, truncating",
		"bytes", len(text),
		"limit", e.maxTextBytes,
	)

	cut := e.maxTextBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func (e *Extractor) patternByName(name string) pattern {
	for _, p := range e.patterns {
		if p.name == name {
			return p
		}
	}
	return pattern{}
}

// redactPattern replaces every valid match of p with its masked form.
// Matches are processed in reverse order to preserve indices.
func redactPattern(text string, p pattern) string {
	matches := p.regex.FindAllStringIndex(text, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		loc := matches[i]
		if p.validator != nil && !p.validator(text, loc) {
			continue
		}
		original := text[loc[0]:loc[1]]
		masked, ok := mask.Mask(p.ingredientKey, original)
		if !ok || masked == original {
			masked = strings.Repeat(string(mask.Star), utf8.RuneCountInString(original))
		}
		text = text[:loc[0]] + masked + text[loc[1]:]
	}
	return text
}

func overlapsAny(loc []int, spans [][]int) bool {
	for _, span := range spans {
		if loc[0] < span[1] && span[0] < loc[1] {
			return true
		}
	}
	return false
}

func toLower(s string) string {
	return strings.ToLower(s)
}
