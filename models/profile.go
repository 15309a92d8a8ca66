package models

// Profile is what onboarding and the profile screen read and write.
type Profile struct {
	Name                string
	Email               string
	Phone               string
	AvatarURI           string // Telegram file ID of the chosen photo
	SpecialOffers       bool
	Newsletters         bool
	OnboardingCompleted bool
}
