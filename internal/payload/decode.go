package payload

import (
	"encoding/json"
	"fmt"
	"io"
)

// maxWrapperDepth bounds how deep Decode looks for the branches.
const maxWrapperDepth = 3

// wrappers are the keys the collaborators nest the branches under.
var wrappers = []string{"results", "data", "scan"}

// branchWrappers are the keys a single branch may be nested under.
var branchWrappers = []string{"result", "data"}

// alias is one name a branch may appear under. Weak aliases are generic
// words that only count when they hold an object.
type alias struct {
	name string
	weak bool
}

// branchAliases lists the known names per branch, normalized.
var branchAliases = map[Branch][]alias{
	BranchEmailBreach: {
		{name: "emailbreach"},
		{name: "emailbreachcheck"},
		{name: "breachcheck"},
		{name: "breach"},
		{name: "email", weak: true},
	},
	BranchPasswordCheck: {
		{name: "passwordcheck"},
		{name: "pwnedpassword"},
		{name: "passwordbreach"},
		{name: "password", weak: true},
	},
	BranchWebSearch: {
		{name: "webpresence"},
		{name: "websearch"},
		{name: "searchpresence"},
		{name: "webpresencesearch"},
		{name: "searchengine"},
		{name: "search", weak: true},
	},
	BranchAIResearch: {
		{name: "airesearch"},
		{name: "webpresenceai"},
		{name: "aipresence"},
		{name: "osint"},
		{name: "research", weak: true},
	},
}

// Decode parses a scan payload. It fails only when data is not a JSON
// object; problems with individual branches are recorded in Problems.
func Decode(data []byte) (*ScanPayload, error) {
	root, ok := parseObject(data)
	if !ok {
		return nil, ErrNotObject
	}

	root = locate(root, 0)

	p := &ScanPayload{Problems: make(map[Branch]error)}
	for _, b := range Branches() {
		raw, found, err := findBranch(root, b)
		if err != nil {
			p.Problems[b] = err
			continue
		}
		if !found {
			continue
		}
		if err := p.decodeBranch(b, raw); err != nil {
			p.Problems[b] = err
		}
	}

	return p, nil
}

// DecodeReader reads r fully and decodes it.
func DecodeReader(r io.Reader) (*ScanPayload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read scan payload: %w", err)
	}
	return Decode(data)
}

func (p *ScanPayload) decodeBranch(b Branch, raw json.RawMessage) error {
	switch b {
	case BranchEmailBreach:
		v, err := decodeEmailBreach(raw)
		if err != nil {
			return err
		}
		p.EmailBreach = v
	case BranchPasswordCheck:
		v, err := decodePasswordCheck(raw)
		if err != nil {
			return err
		}
		p.PasswordCheck = v
	case BranchWebSearch:
		v, err := decodeWebSearch(raw)
		if err != nil {
			return err
		}
		p.WebSearch = v
	case BranchAIResearch:
		v, err := decodeAIResearch(raw)
		if err != nil {
			return err
		}
		p.AIResearch = v
	}
	return nil
}

// locate descends through wrapper keys until it finds an object holding at
// least one branch.
func locate(obj fields, depth int) fields {
	if depth >= maxWrapperDepth || hasAnyBranch(obj) {
		return obj
	}
	for _, w := range wrappers {
		inner, ok := obj.object(w)
		if !ok {
			continue
		}
		if found := locate(inner, depth+1); hasAnyBranch(found) {
			return found
		}
	}
	return obj
}

func hasAnyBranch(obj fields) bool {
	for _, b := range Branches() {
		if _, found, _ := findBranch(obj, b); found {
			return true
		}
	}
	return false
}

// findBranch returns the raw value of a branch. A strong alias holding a
// value that is neither an object nor an array is an error; weak aliases
// holding scalars are ignored.
func findBranch(obj fields, b Branch) (json.RawMessage, bool, error) {
	var shapeErr error
	for _, a := range branchAliases[b] {
		raw, ok := obj.get(a.name)
		if !ok {
			continue
		}
		if _, isObj := parseObject(raw); isObj {
			return raw, true, nil
		}
		if _, isArr := parseArray(raw); isArr && !a.weak {
			return raw, true, nil
		}
		if b == BranchAIResearch && !a.weak && text(raw) != "" {
			return raw, true, nil
		}
		if !a.weak && shapeErr == nil {
			shapeErr = fmt.Errorf("%w: %s under %q", ErrBranchShape, b, a.name)
		}
	}
	if shapeErr != nil {
		return nil, false, shapeErr
	}
	return nil, false, nil
}

// unwrapBranch descends through "result"/"data" wrappers until an object
// carrying one of the signature keys is found.
func unwrapBranch(obj fields, signature []string) (fields, bool) {
	for i := 0; i < maxWrapperDepth; i++ {
		if obj.has(signature...) {
			return obj, true
		}
		inner, ok := obj.object(branchWrappers...)
		if !ok {
			return obj, false
		}
		obj = inner
	}
	return obj, obj.has(signature...)
}

var emailBreachSignature = []string{"email", "emailaddress", "account", "breaches", "breachlist", "found", "breached", "breachcount"}

func decodeEmailBreach(raw json.RawMessage) (*EmailBreach, error) {
	obj, ok := parseObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an object", ErrBranchShape, BranchEmailBreach)
	}
	obj, ok = unwrapBranch(obj, emailBreachSignature)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no known fields", ErrBranchShape, BranchEmailBreach)
	}

	v := &EmailBreach{
		Email:    obj.str("email", "emailaddress", "account"),
		Breaches: make([]Breach, 0),
	}

	for _, item := range obj.list("breaches", "breachlist") {
		if entry, ok := parseObject(item); ok {
			v.Breaches = append(v.Breaches, Breach{
				Domain:      entry.str("domain", "name", "title"),
				Description: entry.str("description", "summary"),
				DataClasses: entry.strs("dataclasses", "exposeddata", "compromiseddata", "data"),
			})
			continue
		}
		if name := text(item); name != "" {
			v.Breaches = append(v.Breaches, Breach{Domain: name})
		}
	}

	found, _ := obj.boolean("found", "breached")
	count, _ := obj.integer("breachcount")
	v.Found = found || count > 0 || len(v.Breaches) > 0

	return v, nil
}

var passwordSignature = []string{"pwned", "ispwned", "leaked", "compromised", "count", "occurrences", "pwnedcount"}

func decodePasswordCheck(raw json.RawMessage) (*PasswordCheck, error) {
	obj, ok := parseObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an object", ErrBranchShape, BranchPasswordCheck)
	}
	obj, ok = unwrapBranch(obj, passwordSignature)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no known fields", ErrBranchShape, BranchPasswordCheck)
	}

	pwned, _ := obj.boolean("pwned", "ispwned", "leaked", "compromised")
	count, _ := obj.integer("count", "occurrences", "pwnedcount")
	if count < 0 {
		count = 0
	}

	return &PasswordCheck{Pwned: pwned, Count: count}, nil
}

var webSearchSignature = []string{"findings", "results", "items", "matches"}

func decodeWebSearch(raw json.RawMessage) (*WebSearch, error) {
	items, isArr := parseArray(raw)
	if !isArr {
		obj, ok := parseObject(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not an object", ErrBranchShape, BranchWebSearch)
		}
		obj, ok = unwrapBranch(obj, webSearchSignature)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no findings", ErrBranchShape, BranchWebSearch)
		}
		items = obj.list(webSearchSignature...)
	}

	v := &WebSearch{Findings: make([]Finding, 0, len(items))}
	for _, item := range items {
		entry, ok := parseObject(item)
		if !ok {
			if s := text(item); s != "" && looksLikeURL(s) {
				v.Findings = append(v.Findings, Finding{URL: s})
			}
			continue
		}
		v.Findings = append(v.Findings, Finding{
			Platform:      entry.str("platform", "platformname", "site", "source"),
			PlatformType:  entry.str("platformtype", "type", "category"),
			URL:           entry.str("url", "link", "href"),
			Snippet:       entry.str("snippet", "description", "text", "content"),
			ExposureLevel: entry.str("exposurelevel", "exposure", "risk"),
		})
	}

	return v, nil
}

var aiSignature = []string{
	"socialmediaaccounts", "socialaccounts", "socialmedia",
	"professionalinfo", "professional",
	"personalinfo", "personal",
	"otherpresence", "presence",
	"rawresearch", "narrative", "summary", "raw", "rawtext",
}

func decodeAIResearch(raw json.RawMessage) (*AIResearch, error) {
	obj, ok := parseObject(raw)
	if !ok {
		// a bare narrative
		if s := text(raw); s != "" {
			return &AIResearch{RawResearch: s}, nil
		}
		return nil, fmt.Errorf("%w: %s is not an object", ErrBranchShape, BranchAIResearch)
	}
	obj, ok = unwrapBranch(obj, aiSignature)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no known fields", ErrBranchShape, BranchAIResearch)
	}

	v := &AIResearch{
		SocialAccounts: make([]Account, 0),
		OtherPresence:  make([]Presence, 0),
	}

	for _, item := range obj.list("socialmediaaccounts", "socialaccounts", "socialmedia") {
		if acct, ok := decodeAccount(item); ok {
			v.SocialAccounts = append(v.SocialAccounts, acct)
		}
	}

	if prof, ok := obj.object("professionalinfo", "professional"); ok {
		v.Professional = ProfessionalInfo{
			Company:     prof.str("company", "companyname", "employer", "organization", "organisation"),
			JobTitle:    prof.str("jobtitle", "title", "role", "position", "designation"),
			LinkedInURL: prof.str("linkedin", "linkedinurl", "linkedinprofile"),
			WorkEmail:   prof.str("workemail", "email", "officialemail"),
			Education:   prof.str("education", "school", "university", "college"),
		}
	}

	if pers, ok := obj.object("personalinfo", "personal"); ok {
		v.Personal = PersonalInfo{
			FullName:    pers.str("fullname", "name"),
			Location:    pers.str("location", "address", "homeaddress", "city"),
			Phone:       pers.str("phone", "phonenumber", "mobile"),
			Email:       pers.str("email", "personalemail"),
			DateOfBirth: pers.str("dateofbirth", "dob", "birthdate", "birthday"),
			Family:      pers.strs("family", "familymembers", "relatives"),
		}
	}

	for _, item := range obj.list("otherpresence", "presence") {
		if pres, ok := decodePresence(item); ok {
			v.OtherPresence = append(v.OtherPresence, pres)
		}
	}

	if rawText, ok := obj.get("rawresearch", "narrative", "summary", "raw", "rawtext"); ok {
		v.RawResearch = freeText(rawText)
	}

	return v, nil
}

func decodeAccount(raw json.RawMessage) (Account, bool) {
	if entry, ok := parseObject(raw); ok {
		acct := Account{
			Platform: entry.str("platform", "type", "network", "site"),
			URL:      entry.str("url", "link", "profileurl", "profile"),
			Username: entry.str("username", "handle", "user", "id"),
		}
		return acct, acct.Platform != "" || acct.URL != ""
	}

	s := text(raw)
	if s == "" {
		return Account{}, false
	}
	if looksLikeURL(s) {
		return Account{URL: s}, true
	}
	return Account{Platform: s}, true
}

func decodePresence(raw json.RawMessage) (Presence, bool) {
	if entry, ok := parseObject(raw); ok {
		pres := Presence{
			Platform:    entry.str("platform", "site", "name", "source"),
			URL:         entry.str("url", "link"),
			Description: entry.str("description", "snippet", "details"),
		}
		return pres, pres.Platform != "" || pres.URL != ""
	}

	s := text(raw)
	if s == "" {
		return Presence{}, false
	}
	if looksLikeURL(s) {
		return Presence{URL: s}, true
	}
	return Presence{Platform: s}, true
}
