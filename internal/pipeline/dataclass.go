package pipeline

import (
	"strings"

	"github.com/nao1215/exposurescan/internal/model"
)

// dataClasses maps breach data class names, lowercased, to ingredient keys.
// Classes that are not listed carry no catalog ingredient and are ignored.
var dataClasses = map[string]string{
	"email addresses":          model.IngredientEmail,
	"passwords":                model.IngredientPasswordLeak,
	"password hints":           model.IngredientPasswordLeak,
	"phone numbers":            model.IngredientPhone,
	"physical addresses":       model.IngredientHomeAddress,
	"dates of birth":           model.IngredientDateOfBirth,
	"names":                    model.IngredientFullName,
	"credit cards":             model.IngredientCardNumber,
	"partial credit card data": model.IngredientCardNumber,
	"usernames":                model.IngredientUsername,
	"ip addresses":             model.IngredientIPAddress,
	"job titles":               model.IngredientJobTitle,
	"employers":                model.IngredientCompanyName,
	"education levels":         model.IngredientEducation,
	"family members' names":    model.IngredientFamilyDetails,
	"family structure":         model.IngredientFamilyDetails,
	"social media profiles":    model.IngredientSocialPhotos,
	"bank account numbers":     model.IngredientBankAccount,
	"passport numbers":         model.IngredientPassport,
	"geographic locations":     model.IngredientLocationHistory,
}

// DataClassIngredient returns the ingredient key for a breach data class.
func DataClassIngredient(class string) (string, bool) {
	key, ok := dataClasses[strings.ToLower(strings.TrimSpace(class))]
	return key, ok
}
