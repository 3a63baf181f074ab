package provisioning

import "strings"

var identifierReplacer = strings.NewReplacer(".", "_", "+", "_")

// DeriveIdentifier maps an email to a gateway-safe identifier: the lower-cased
// local part with '.' and '+' replaced by '_'. Distinct emails may collide.
func DeriveIdentifier(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return identifierReplacer.Replace(strings.ToLower(local))
}
