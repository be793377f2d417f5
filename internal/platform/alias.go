package platform

import (
	"strings"

	"github.com/nao1215/exposurescan/internal/model"
)

// aliases maps short account-type labels to ingredient keys.
// Lookups are exact after lowercasing and trimming.
var aliases = map[string]string{
	"facebook":  model.IngredientFacebook,
	"fb":        model.IngredientFacebook,
	"instagram": model.IngredientInstagram,
	"insta":     model.IngredientInstagram,
	"ig":        model.IngredientInstagram,
	"twitter":   model.IngredientTwitter,
	"x":         model.IngredientTwitter,
	"tw":        model.IngredientTwitter,
	"youtube":   model.IngredientYouTube,
	"yt":        model.IngredientYouTube,
	"reddit":    model.IngredientReddit,
	"telegram":  model.IngredientTelegram,
	"tg":        model.IngredientTelegram,
	"whatsapp":  model.IngredientWhatsApp,
	"wa":        model.IngredientWhatsApp,
	"github":    model.IngredientGitHub,
	"gh":        model.IngredientGitHub,
	"linkedin":  model.IngredientLinkedIn,
	"li":        model.IngredientLinkedIn,
}

// MapAlias returns the ingredient key for a short platform label such as
// "ig" or "LinkedIn". The boolean is false when the label is not known.
func MapAlias(label string) (string, bool) {
	key, ok := aliases[strings.ToLower(strings.TrimSpace(label))]
	return key, ok
}

// MapAccount maps an account label, trying the alias table first and falling
// back to MapPlatform with a SOCIAL_MEDIA hint.
func MapAccount(label string) string {
	if key, ok := MapAlias(label); ok {
		return key
	}
	return MapPlatform(label, model.PlatformTypeSocialMedia)
}
