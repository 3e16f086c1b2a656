package models

import "time"

// User is the credential record. It is persisted as a document and
// never serialized into API responses directly.
type User struct {
	Key          string    `json:"key"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

type UserProfile struct {
	Key       string `json:"key"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func (p UserProfile) DisplayName() string {
	return p.FirstName + " " + p.LastName
}

// ProfilePictureFileName is the blob name used for the user's avatar,
// e.g. viet-gmail-com_profile_picture.png.
func (p UserProfile) ProfilePictureFileName() string {
	return p.Key + "_profile_picture.png"
}

type DirectoryEntry struct {
	Name string `json:"name"`
	Key  string `json:"email"`
}
