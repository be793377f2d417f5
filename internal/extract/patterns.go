package extract

import (
	"regexp"
	"unicode"

	"github.com/nao1215/exposurescan/internal/model"
)

// Confidence values per identifier type.
const (
	ConfidenceEmail         = 0.9
	ConfidencePhone         = 0.85
	ConfidenceTaxID         = 0.9
	ConfidenceNationalID    = 0.9
	ConfidencePaymentHandle = 0.8
	ConfidenceCardNumber    = 0.75
	ConfidenceAddress       = 0.65
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// pattern is one identifier pass.
type pattern struct {
	name          string
	ingredientKey string
	regex         *regexp.Regexp
	confidence    float64

	// validator rejects regex matches that are not real identifiers.
	// It receives the full text and the match location.
	validator func(text string, loc []int) bool

	// normalize canonicalizes the matched value. Optional.
	normalize func(value string) string
}

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	phoneRegex = regexp.MustCompile(`\+?\d[\d \-]{5,}\d`)

	taxIDRegex = regexp.MustCompile(`\b[A-Z]{5}[0-9]{4}[A-Z]\b`)

	nationalIDRegex = regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`)

	paymentHandleRegex = regexp.MustCompile(`[a-zA-Z0-9.\-_]{2,256}@[a-zA-Z]{2,64}\b`)

	cardNumberRegex = regexp.MustCompile(`\b(?:\d{4}[\s-]?){3}\d{4}\b`)

	addressRegex = regexp.MustCompile(`(?i)\b\d{1,5}(?:[ ,/#-]+[a-z0-9.'-]+){0,6}?[ ,]+(?:street|st|road|rd|avenue|ave|lane|ln|marg|nagar|colony|sector|block|boulevard|blvd|drive|dr)\b\.?`)
)

// defaultPatterns returns the identifier passes in extraction order.
// The payment handle pass is not listed; it depends on the email matches and
// is run separately.
// Passes are independent: a 12-digit ID such as "1234 5678 9012" is also
// reported as a phone number.
func defaultPatterns() []pattern {
	return []pattern{
		{
			name:          "email",
			ingredientKey: model.IngredientEmail,
			regex:         emailRegex,
			confidence:    ConfidenceEmail,
			normalize:     toLower,
		},
		{
			name:          "phone",
			ingredientKey: model.IngredientPhone,
			regex:         phoneRegex,
			confidence:    ConfidencePhone,
			validator:     validPhone,
		},
		{
			name:          "tax_id",
			ingredientKey: model.IngredientTaxID,
			regex:         taxIDRegex,
			confidence:    ConfidenceTaxID,
		},
		{
			name:          "national_id",
			ingredientKey: model.IngredientNationalID,
			regex:         nationalIDRegex,
			confidence:    ConfidenceNationalID,
			validator:     standaloneDigits,
		},
		{
			name:          "card_number",
			ingredientKey: model.IngredientCardNumber,
			regex:         cardNumberRegex,
			confidence:    ConfidenceCardNumber,
			validator:     standaloneDigits,
		},
		{
			name:          "address",
			ingredientKey: model.IngredientHomeAddress,
			regex:         addressRegex,
			confidence:    ConfidenceAddress,
			normalize:     trimToHouseNumber,
		},
	}
}

// validPhone accepts matches carrying between 7 and 15 digits.
func validPhone(text string, loc []int) bool {
	digits := countDigits(text[loc[0]:loc[1]])
	return digits >= minPhoneDigits && digits <= maxPhoneDigits
}

// standaloneDigits rejects digit groups that continue into a longer number,
// so the first twelve digits of a card are not reported as a national ID.
func standaloneDigits(text string, loc []int) bool {
	if loc[0] > 0 {
		prev := precedingNonSpace(text, loc[0])
		if prev >= 0 && isDigitByte(text[prev]) && loc[0]-prev <= 2 {
			return false
		}
	}
	if loc[1] < len(text) {
		next := followingNonSpace(text, loc[1])
		if next >= 0 && isDigitByte(text[next]) && next-loc[1] <= 1 {
			return false
		}
	}
	return true
}

// precedingNonSpace returns the index of the last non-space byte before i,
// looking back at most one separator.
func precedingNonSpace(text string, i int) int {
	j := i - 1
	if j >= 0 && (text[j] == ' ' || text[j] == '-') {
		j--
	}
	return j
}

// followingNonSpace returns the index of the first non-space byte at or
// after i, skipping at most one separator.
func followingNonSpace(text string, i int) int {
	j := i
	if j < len(text) && (text[j] == ' ' || text[j] == '-') {
		j++
	}
	if j >= len(text) {
		return -1
	}
	return j
}

// trimToHouseNumber drops leading text up to the last standalone number of
// at most 5 digits, so digits of an earlier phone or ID do not start the
// address.
func trimToHouseNumber(value string) string {
	start := 0
	for i := 0; i < len(value); {
		if !isDigitByte(value[i]) || (i > 0 && !isAddressSeparator(value[i-1])) {
			i++
			continue
		}
		j := i
		for j < len(value) && isDigitByte(value[j]) {
			j++
		}
		if j-i <= 5 && j < len(value) && isAddressSeparator(value[j]) {
			start = i
		}
		i = j
	}
	return value[start:]
}

func isAddressSeparator(b byte) bool {
	switch b {
	case ' ', ',', '/', '#', '-':
		return true
	}
	return false
}

func isDigitByte(b byte) bool {
	return b >= '0' && b <= '9'
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
