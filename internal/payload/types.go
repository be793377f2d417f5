package payload

// Branch names a scan result branch.
type Branch string

const (
	// BranchEmailBreach is the breach database lookup for an email address.
	BranchEmailBreach Branch = "email_breach"
	// BranchPasswordCheck is the leaked password check.
	BranchPasswordCheck Branch = "password_check"
	// BranchWebSearch is the search engine web presence scan.
	BranchWebSearch Branch = "web_search"
	// BranchAIResearch is the AI driven open source research.
	BranchAIResearch Branch = "ai_research"
)

// Branches returns every branch in processing order.
func Branches() []Branch {
	return []Branch{BranchEmailBreach, BranchPasswordCheck, BranchWebSearch, BranchAIResearch}
}

// String returns the branch name.
func (b Branch) String() string {
	return string(b)
}

// ScanPayload is the decoded scan result. A nil branch pointer means the
// branch was absent or could not be decoded; Problems says which.
type ScanPayload struct {
	EmailBreach   *EmailBreach
	PasswordCheck *PasswordCheck
	WebSearch     *WebSearch
	AIResearch    *AIResearch

	// Problems holds decode errors per branch that was present but malformed.
	Problems map[Branch]error
}

// Present reports whether a branch was decoded.
func (p *ScanPayload) Present(b Branch) bool {
	switch b {
	case BranchEmailBreach:
		return p.EmailBreach != nil
	case BranchPasswordCheck:
		return p.PasswordCheck != nil
	case BranchWebSearch:
		return p.WebSearch != nil
	case BranchAIResearch:
		return p.AIResearch != nil
	default:
		return false
	}
}

// EmailBreach is the breach lookup result for one email address.
type EmailBreach struct {
	Email    string
	Breaches []Breach

	// Found is true when the email appeared in at least one breach.
	Found bool
}

// Breach is one breach record.
type Breach struct {
	Domain      string
	Description string
	DataClasses []string
}

// PasswordCheck is the leaked password check result.
type PasswordCheck struct {
	Pwned bool
	Count int
}

// Leaked reports whether the password was seen in any breach.
func (p *PasswordCheck) Leaked() bool {
	return p.Pwned || p.Count > 0
}

// WebSearch is the search engine web presence result.
type WebSearch struct {
	Findings []Finding
}

// Finding is one search result attributed to a platform.
type Finding struct {
	Platform      string
	PlatformType  string
	URL           string
	Snippet       string
	ExposureLevel string
}

// AIResearch is the structured output of AI driven research.
type AIResearch struct {
	SocialAccounts []Account
	Professional   ProfessionalInfo
	Personal       PersonalInfo
	OtherPresence  []Presence
	RawResearch    string
}

// Account is a social account with a short platform label.
type Account struct {
	Platform string
	URL      string
	Username string
}

// Value returns the most specific identifier of the account.
func (a Account) Value() string {
	if a.URL != "" {
		return a.URL
	}
	return a.Username
}

// ProfessionalInfo is what the research found about the subject's work.
type ProfessionalInfo struct {
	Company     string
	JobTitle    string
	LinkedInURL string
	WorkEmail   string
	Education   string
}

// PersonalInfo is what the research found about the subject personally.
type PersonalInfo struct {
	FullName    string
	Location    string
	Phone       string
	Email       string
	DateOfBirth string
	Family      []string
}

// Presence is any other place the subject appears.
type Presence struct {
	Platform    string
	URL         string
	Description string
}
