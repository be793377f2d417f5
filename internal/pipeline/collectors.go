package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/exposurescan/internal/extract"
	"github.com/nao1215/exposurescan/internal/model"
	"github.com/nao1215/exposurescan/internal/payload"
	"github.com/nao1215/exposurescan/internal/platform"
)

// Collector turns one branch of a scan payload into candidates.
// Collect is only called when the branch is present.
type Collector interface {
	Branch() payload.Branch
	Collect(ctx context.Context, p *payload.ScanPayload) ([]model.Candidate, error)
}

// DefaultCollectors returns the collectors for every known branch in
// processing order.
func DefaultCollectors(ext *extract.Extractor) []Collector {
	return []Collector{
		&BreachCollector{extractor: ext},
		&PasswordCollector{},
		&SearchCollector{extractor: ext},
		&ResearchCollector{extractor: ext},
	}
}

// candidates accumulates the observations of one branch. add skips empty
// values; addEmpty records valueless observations.
type candidates struct {
	branch payload.Branch
	list   []model.Candidate
}

func newCandidates(branch payload.Branch) *candidates {
	return &candidates{branch: branch, list: make([]model.Candidate, 0)}
}

func (c *candidates) add(key, value string, source model.DetectionSource, evidenceURL, snippet string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	c.addEmpty(key, value, source, evidenceURL, snippet)
}

func (c *candidates) addEmpty(key, value string, source model.DetectionSource, evidenceURL, snippet string) {
	c.list = append(c.list, model.Candidate{
		IngredientKey:   key,
		Value:           value,
		Source:          source,
		EvidenceURL:     strings.TrimSpace(evidenceURL),
		EvidenceSnippet: snippet,
		Branch:          string(c.branch),
	})
}

func (c *candidates) extend(found []model.Candidate, evidenceURL string) {
	for _, cand := range found {
		if cand.EvidenceURL == "" {
			cand.EvidenceURL = strings.TrimSpace(evidenceURL)
		}
		cand.Branch = string(c.branch) + "/" + cand.Branch
		c.list = append(c.list, cand)
	}
}

// BreachCollector handles the email breach branch.
// The email itself is an exposure when it appears in at least one breach;
// every breach data class with a catalog ingredient adds a valueless
// exposure with the breach domain as evidence.
type BreachCollector struct {
	extractor *extract.Extractor
}

// Branch implements Collector.
func (c *BreachCollector) Branch() payload.Branch {
	return payload.BranchEmailBreach
}

// Collect implements Collector.
func (c *BreachCollector) Collect(ctx context.Context, p *payload.ScanPayload) ([]model.Candidate, error) {
	b := p.EmailBreach
	out := newCandidates(c.Branch())

	if !b.Found && len(b.Breaches) == 0 {
		return out.list, nil
	}

	domains := make([]string, 0, len(b.Breaches))
	for _, br := range b.Breaches {
		if br.Domain != "" {
			domains = append(domains, br.Domain)
		}
	}
	out.add(model.IngredientEmail, b.Email, model.SourceBreach, "",
		fmt.Sprintf("found in %d breach(es): %s", len(b.Breaches), strings.Join(domains, ", ")))

	for _, br := range b.Breaches {
		if err := ctx.Err(); err != nil {
			return out.list, err
		}

		snippet := c.extractor.Evidence(br.Description)
		for _, class := range br.DataClasses {
			key, ok := DataClassIngredient(class)
			if !ok {
				continue
			}
			if key == model.IngredientEmail {
				out.add(key, b.Email, model.SourceBreach, br.Domain, snippet)
				continue
			}
			out.addEmpty(key, "", model.SourceBreach, br.Domain, snippet)
		}
	}

	return out.list, nil
}

// PasswordCollector handles the leaked password branch.
type PasswordCollector struct{}

// Branch implements Collector.
func (c *PasswordCollector) Branch() payload.Branch {
	return payload.BranchPasswordCheck
}

// Collect implements Collector.
func (c *PasswordCollector) Collect(_ context.Context, p *payload.ScanPayload) ([]model.Candidate, error) {
	out := newCandidates(c.Branch())
	if p.PasswordCheck.Leaked() {
		out.addEmpty(model.IngredientPasswordLeak, "", model.SourceBreach, "",
			fmt.Sprintf("password seen %d time(s) in breach corpora", p.PasswordCheck.Count))
	}
	return out.list, nil
}

// SearchCollector handles the search engine web presence branch.
// Each finding maps to a platform ingredient with the result URL as value;
// the finding's snippet goes through the identifier extractor.
type SearchCollector struct {
	extractor *extract.Extractor
}

// Branch implements Collector.
func (c *SearchCollector) Branch() payload.Branch {
	return payload.BranchWebSearch
}

// Collect implements Collector.
func (c *SearchCollector) Collect(ctx context.Context, p *payload.ScanPayload) ([]model.Candidate, error) {
	out := newCandidates(c.Branch())

	for _, f := range p.WebSearch.Findings {
		if err := ctx.Err(); err != nil {
			return out.list, err
		}

		name := strings.TrimSpace(f.Platform)
		if name == "" {
			name = platform.PlatformFromURL(f.URL)
		}
		if name == "" && strings.TrimSpace(f.Snippet) == "" {
			continue
		}

		hint := model.ParsePlatformType(f.PlatformType)
		source := model.SourceWebSearch
		if hint == model.PlatformTypeSocialMedia {
			source = model.SourceSocialSearch
		}

		value := f.URL
		if strings.TrimSpace(value) == "" {
			value = name
		}
		out.add(platform.MapPlatform(name, hint), value, source, f.URL, c.extractor.Evidence(f.Snippet))
		out.extend(c.extractor.Extract(f.Snippet, source), f.URL)
	}

	return out.list, nil
}

// ResearchCollector handles the AI research branch.
type ResearchCollector struct {
	extractor *extract.Extractor
}

// Branch implements Collector.
func (c *ResearchCollector) Branch() payload.Branch {
	return payload.BranchAIResearch
}

// Collect implements Collector.
func (c *ResearchCollector) Collect(ctx context.Context, p *payload.ScanPayload) ([]model.Candidate, error) {
	r := p.AIResearch
	out := newCandidates(c.Branch())
	src := model.SourceAIPrompt

	for _, a := range r.SocialAccounts {
		out.add(platform.MapAccount(a.Platform), a.Value(), src, a.URL, "")
	}

	pro := r.Professional
	out.add(model.IngredientCompanyName, pro.Company, src, "", "")
	out.add(model.IngredientJobTitle, pro.JobTitle, src, "", "")
	out.add(model.IngredientLinkedIn, pro.LinkedInURL, src, pro.LinkedInURL, "")
	out.add(model.IngredientEmail, pro.WorkEmail, src, "", "")
	out.add(model.IngredientEducation, pro.Education, src, "", "")

	per := r.Personal
	out.add(model.IngredientFullName, per.FullName, src, "", "")
	out.add(model.IngredientHomeAddress, per.Location, src, "", "")
	out.add(model.IngredientPhone, per.Phone, src, "", "")
	out.add(model.IngredientEmail, per.Email, src, "", "")
	out.add(model.IngredientDateOfBirth, per.DateOfBirth, src, "", "")
	for _, member := range per.Family {
		out.add(model.IngredientFamilyDetails, member, src, "", "")
	}

	for _, pr := range r.OtherPresence {
		if err := ctx.Err(); err != nil {
			return out.list, err
		}
		name := strings.TrimSpace(pr.Platform)
		if name == "" {
			name = platform.PlatformFromURL(pr.URL)
		}
		value := pr.URL
		if strings.TrimSpace(value) == "" {
			value = name
		}
		out.add(platform.MapPlatform(name, model.PlatformTypeUnknown), value, src, pr.URL, c.extractor.Evidence(pr.Description))
	}

	out.extend(c.extractor.Extract(r.RawResearch, src), "")

	return out.list, nil
}
