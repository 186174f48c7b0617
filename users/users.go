package users

import (
	"fmt"
	"unicode"
)

// Profile is the normalized user record the SDK exposes to hosts. Fields
// other than ID are optional and present only when the matching scope was
// granted during login.
type Profile struct {
	ID        string `json:"id"`                   // Stable unique identifier (subject)
	Email     string `json:"email,omitempty"`      // User's email address ("email" scope)
	Username  string `json:"username,omitempty"`   // Preferred username ("profile" scope)
	Name      string `json:"name,omitempty"`       // Display name ("profile" scope)
	Picture   string `json:"picture,omitempty"`    // Profile picture URL ("profile" scope)
	PublicKey string `json:"public_key,omitempty"` // Account public key ("keys" scope)
	DID       string `json:"did,omitempty"`        // Decentralized identifier ("did" scope)
}

// NormalizeProfile maps a provider-shaped userinfo response onto the public
// Profile record. Providers differ on claim names, so the common aliases are
// accepted. A missing subject is an error: every profile needs a stable id.
func NormalizeProfile(claims map[string]any) (*Profile, error) {
	profile := &Profile{
		ID:        firstString(claims, "sub", "id", "user_id"),
		Email:     firstString(claims, "email"),
		Username:  firstString(claims, "preferred_username", "username"),
		Name:      firstString(claims, "name", "display_name"),
		Picture:   firstString(claims, "picture", "avatar_url"),
		PublicKey: firstString(claims, "public_key"),
		DID:       firstString(claims, "did"),
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("user info response has no stable id")
	}
	return profile, nil
}

func firstString(claims map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := claims[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}

// ValidatePasswordStrength checks if a password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}
