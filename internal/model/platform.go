package model

import "strings"

// platformUnknownStr is the string representation for unknown platform values.
const platformUnknownStr = "unknown"

// PlatformType is the category hint a web presence finding carries about the
// platform it was found on.
type PlatformType string

// Platform type constants.
const (
	// PlatformTypeUnknown represents a missing or unrecognized hint.
	PlatformTypeUnknown PlatformType = ""
	// PlatformTypeSocialMedia is a social network.
	PlatformTypeSocialMedia PlatformType = "SOCIAL_MEDIA"
	// PlatformTypeProfessional is a professional network or employer site.
	PlatformTypeProfessional PlatformType = "PROFESSIONAL"
	// PlatformTypeForum is a discussion board.
	PlatformTypeForum PlatformType = "FORUM"
	// PlatformTypeNews is a news or media site.
	PlatformTypeNews PlatformType = "NEWS"
	// PlatformTypeOther is any other site.
	PlatformTypeOther PlatformType = "OTHER"
)

// String returns the string representation of the PlatformType.
func (p PlatformType) String() string {
	if p == PlatformTypeUnknown {
		return platformUnknownStr
	}
	return string(p)
}

// IsValid returns true if this is a known platform type.
func (p PlatformType) IsValid() bool {
	switch p {
	case PlatformTypeSocialMedia, PlatformTypeProfessional, PlatformTypeForum,
		PlatformTypeNews, PlatformTypeOther:
		return true
	default:
		return false
	}
}

// ParsePlatformType converts a string to PlatformType.
// Collaborators disagree on spelling, so "social", "social-media" and
// "SOCIAL_MEDIA" all map to the same value.
func ParsePlatformType(s string) PlatformType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "social_media", "social-media", "social media", "social", "socialmedia":
		return PlatformTypeSocialMedia
	case "professional", "work", "business":
		return PlatformTypeProfessional
	case "forum", "community":
		return PlatformTypeForum
	case "news", "media", "press":
		return PlatformTypeNews
	case "other":
		return PlatformTypeOther
	default:
		return PlatformTypeUnknown
	}
}
