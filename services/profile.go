package services

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"little-lemon/models"
)

// Preference keys, shared with older clients of the same store.
const (
	KeyUserName            = "userName"
	KeyUserEmail           = "userEmail"
	KeyUserPhone           = "userPhone"
	KeyUserImage           = "userImage"
	KeySpecialOffers       = "specialOffers"
	KeyNewsletters         = "newsletters"
	KeyOnboardingCompleted = "onboardingCompleted"
)

var profileKeys = []string{
	KeyUserName, KeyUserEmail, KeyUserPhone, KeyUserImage,
	KeySpecialOffers, KeyNewsletters, KeyOnboardingCompleted,
}

var (
	ErrInvalidName  = errors.New("name must contain only letters and spaces")
	ErrInvalidEmail = errors.New("email address is not valid")
	ErrInvalidPhone = errors.New("phone must look like (+46) 701234567")
)

var (
	nameRe  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\(\+46\)\s\d{9,10}$`)
)

func ValidName(s string) bool  { return nameRe.MatchString(s) }
func ValidEmail(s string) bool { return emailRe.MatchString(s) }
func ValidPhone(s string) bool { return phoneRe.MatchString(s) }

// Initials returns the upper-cased first letter of each space-separated
// part of name, or "?" when there is none.
func Initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, " ") {
		for _, r := range part {
			b.WriteRune(r)
			break
		}
	}
	if b.Len() == 0 {
		return "?"
	}
	return strings.ToUpper(b.String())
}

// ProfileService stores onboarding and profile data per user.
type ProfileService struct {
	prefs PreferenceStore
}

func NewProfileService(prefs PreferenceStore) *ProfileService {
	return &ProfileService{prefs: prefs}
}

func (s *ProfileService) EnsureSchema(ctx context.Context) error {
	return s.prefs.EnsureSchema(ctx)
}

func (s *ProfileService) CompleteOnboarding(ctx context.Context, userID int64, name, email string) error {
	if !ValidName(name) {
		return ErrInvalidName
	}
	if !ValidEmail(email) {
		return ErrInvalidEmail
	}
	return s.prefs.Set(ctx, userID, map[string]string{
		KeyUserName:            name,
		KeyUserEmail:           email,
		KeyOnboardingCompleted: "true",
	})
}

// OnboardingCompleted treats a read failure as not onboarded.
func (s *ProfileService) OnboardingCompleted(ctx context.Context, userID int64) bool {
	v, err := s.prefs.Get(ctx, userID, KeyOnboardingCompleted)
	if err != nil {
		return false
	}
	return v[KeyOnboardingCompleted] == "true"
}

func (s *ProfileService) Load(ctx context.Context, userID int64) (*models.Profile, error) {
	v, err := s.prefs.Get(ctx, userID, profileKeys...)
	if err != nil {
		return nil, err
	}
	return &models.Profile{
		Name:                v[KeyUserName],
		Email:               v[KeyUserEmail],
		Phone:               v[KeyUserPhone],
		AvatarURI:           v[KeyUserImage],
		SpecialOffers:       parseFlag(v[KeySpecialOffers]),
		Newsletters:         parseFlag(v[KeyNewsletters]),
		OnboardingCompleted: parseFlag(v[KeyOnboardingCompleted]),
	}, nil
}

// Save validates and stores every editable field. An empty phone is allowed.
func (s *ProfileService) Save(ctx context.Context, userID int64, p *models.Profile) error {
	if !ValidName(p.Name) {
		return ErrInvalidName
	}
	if !ValidEmail(p.Email) {
		return ErrInvalidEmail
	}
	if p.Phone != "" && !ValidPhone(p.Phone) {
		return ErrInvalidPhone
	}
	values := map[string]string{
		KeyUserName:      p.Name,
		KeyUserEmail:     p.Email,
		KeyUserPhone:     p.Phone,
		KeySpecialOffers: strconv.FormatBool(p.SpecialOffers),
		KeyNewsletters:   strconv.FormatBool(p.Newsletters),
	}
	if p.AvatarURI != "" {
		values[KeyUserImage] = p.AvatarURI
	}
	return s.prefs.Set(ctx, userID, values)
}

func (s *ProfileService) SetAvatar(ctx context.Context, userID int64, uri string) error {
	return s.prefs.Set(ctx, userID, map[string]string{KeyUserImage: uri})
}

// Logout forgets everything stored for the user, onboarding included.
func (s *ProfileService) Logout(ctx context.Context, userID int64) error {
	return s.prefs.Remove(ctx, userID, profileKeys...)
}

func parseFlag(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
