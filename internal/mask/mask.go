package mask

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/nao1215/exposurescan/internal/model"
)

// EmailIngredientKey is the ingredient whose values get email-aware masking.
const EmailIngredientKey = model.IngredientEmail

// Star is the masking rune.
const Star = '*'

const (
	// minEmailStars keeps short local parts from revealing their length.
	minEmailStars = 4

	// minPhoneDigits is the digit count from which a value is phone-shaped.
	minPhoneDigits = 6

	// longValueThreshold is the length above which generic masking applies.
	longValueThreshold = 8
)

// phoneShape matches an optional leading "+" followed by digits and the
// usual separators.
var phoneShape = regexp.MustCompile(`^\+?[0-9][0-9\s\-().]*$`)

// Mask returns the masked rendition of raw for the given ingredient.
// The boolean is false when raw is empty and nothing should be stored.
func Mask(ingredientKey, raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	if ingredientKey == EmailIngredientKey && strings.Count(raw, "@") == 1 {
		if masked, ok := maskEmail(raw); ok {
			return masked, true
		}
	}

	if IsPhoneShaped(raw) {
		return keepEnds(raw, 3, 2), true
	}

	if len([]rune(raw)) > longValueThreshold {
		return keepEnds(raw, 3, 3), true
	}

	return raw, true
}

// MaskPointer is Mask returning nil instead of false, for nullable columns.
func MaskPointer(ingredientKey, raw string) *string {
	masked, ok := Mask(ingredientKey, raw)
	if !ok {
		return nil
	}
	return &masked
}

// IsPhoneShaped reports whether value looks like a phone number.
func IsPhoneShaped(value string) bool {
	if !phoneShape.MatchString(value) {
		return false
	}
	return countDigits(value) >= minPhoneDigits
}

// maskEmail keeps the first character of the local part and the domain.
func maskEmail(email string) (string, bool) {
	at := strings.IndexByte(email, '@')
	local := []rune(email[:at])
	if len(local) == 0 {
		return "", false
	}

	stars := len(local) - 1
	if stars < minEmailStars {
		stars = minEmailStars
	}

	var sb strings.Builder
	sb.Grow(len(email) + stars)
	sb.WriteRune(local[0])
	sb.WriteString(strings.Repeat(string(Star), stars))
	sb.WriteString(email[at:])
	return sb.String(), true
}

// keepEnds keeps the first head and last tail runes and replaces every rune
// in between with Star.
func keepEnds(value string, head, tail int) string {
	runes := []rune(value)
	if len(runes) <= head+tail {
		return value
	}

	masked := make([]rune, len(runes))
	for i, r := range runes {
		if i < head || i >= len(runes)-tail {
			masked[i] = r
			continue
		}
		masked[i] = Star
	}
	return string(masked)
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
