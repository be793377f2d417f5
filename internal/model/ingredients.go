package model

// Ingredient keys produced by the extractor, the platform mapper and the
// scan branches. The catalog may contain more keys than listed here.
const (
	IngredientEmail         = "email_id"
	IngredientPasswordLeak  = "password_leak"
	IngredientPhone         = "phone_number"
	IngredientTaxID         = "pan_number"
	IngredientNationalID    = "aadhaar_number"
	IngredientPaymentHandle = "upi_id"
	IngredientCardNumber    = "card_number"
	IngredientHomeAddress   = "home_address"
	IngredientDateOfBirth   = "date_of_birth"
	IngredientFullName      = "full_name"
	IngredientUsername      = "username"
	IngredientIPAddress     = "ip_address"
	IngredientFamilyDetails = "family_details"
	IngredientJobTitle      = "job_title"
	IngredientCompanyName   = "company_name"
	IngredientEducation     = "education_details"
	IngredientLinkedIn      = "linkedin_id"
	IngredientGitHub        = "github_profile"
	IngredientInstagram     = "instagram_profile"
	IngredientFacebook      = "facebook_profile"
	IngredientTwitter       = "twitter_profile"
	IngredientYouTube       = "youtube_channel"
	IngredientReddit        = "reddit_profile"
	IngredientTelegram      = "telegram_id"
	IngredientWhatsApp      = "whatsapp_number"
	IngredientSocialPhotos  = "social_photos"
	IngredientWebMentions   = "web_mentions"

	// Only surfaced through breach data classes.
	IngredientBankAccount     = "bank_account_number"
	IngredientPassport        = "passport_number"
	IngredientLocationHistory = "location_history"
)
