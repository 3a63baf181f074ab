// Package identity holds the verified user identity returned by the external
// identity provider and the Google provider that produces it.
package identity

// Claims is the identity obtained from the provider after the authorization code
// exchange. Email is the natural key used by the gateway provisioning.
type Claims struct {
	SubjectID   string
	Email       string
	DisplayName string
	PictureURL  *string
}
