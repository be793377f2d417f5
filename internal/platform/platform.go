package platform

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/text/cases"

	"github.com/nao1215/exposurescan/internal/model"
)

// fragment ties platform name fragments to an ingredient key.
// hosts match only the whole name or a subdomain of it.
type fragment struct {
	needles       []string
	hosts         []string
	ingredientKey string
}

// matches reports whether the folded platform name hits f.
func (f fragment) matches(folded string) bool {
	for _, needle := range f.needles {
		if strings.Contains(folded, needle) {
			return true
		}
	}
	for _, host := range f.hosts {
		if folded == host || strings.HasSuffix(folded, "."+host) {
			return true
		}
	}
	return false
}

// fragments is checked in order; the first match wins.
var fragments = []fragment{
	{needles: []string{"facebook"}, ingredientKey: model.IngredientFacebook},
	{needles: []string{"instagram"}, ingredientKey: model.IngredientInstagram},
	{needles: []string{"twitter", "x/"}, hosts: []string{"x.com"}, ingredientKey: model.IngredientTwitter},
	{needles: []string{"youtube"}, ingredientKey: model.IngredientYouTube},
	{needles: []string{"reddit"}, ingredientKey: model.IngredientReddit},
	{needles: []string{"telegram"}, ingredientKey: model.IngredientTelegram},
	{needles: []string{"whatsapp"}, ingredientKey: model.IngredientWhatsApp},
	{needles: []string{"github"}, ingredientKey: model.IngredientGitHub},
}

// fold returns the case-folded form of s.
// A cases.Caser is stateful, so one is created per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// MapPlatform returns the ingredient key for a platform name.
// Unknown names resolve through the type hint: PROFESSIONAL falls back to
// linkedin_id, github_profile or company_name; SOCIAL_MEDIA falls back to
// social_photos; anything else becomes web_mentions.
func MapPlatform(name string, hint model.PlatformType) string {
	folded := fold(strings.TrimSpace(name))

	if folded != "" {
		for _, f := range fragments {
			if f.matches(folded) {
				return f.ingredientKey
			}
		}
	}

	switch hint {
	case model.PlatformTypeProfessional:
		if strings.Contains(folded, "linkedin") {
			return model.IngredientLinkedIn
		}
		if strings.Contains(folded, "github") {
			return model.IngredientGitHub
		}
		return model.IngredientCompanyName
	case model.PlatformTypeSocialMedia:
		return model.IngredientSocialPhotos
	default:
		return model.IngredientWebMentions
	}
}

// PlatformFromURL derives a platform name from the registrable domain of
// rawURL, e.g. "https://m.facebook.com/jdoe" becomes "facebook.com".
// It returns an empty string when the URL has no usable host.
func PlatformFromURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}
