// Package common contains constants shared by the session client and the
// development auth service.
package common

const (
	// StorageKeyToken holds the opaque bearer credential in the local store.
	StorageKeyToken = "authToken"

	// StorageKeyUser holds the JSON-serialized user record.
	StorageKeyUser = "user"

	// AuthorizationHeaderName carries "Bearer <token>" on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the authorization scheme prefix.
	BearerScheme = "Bearer"
)

// SessionKeys lists the keys that are always written and cleared together.
var SessionKeys = []string{StorageKeyToken, StorageKeyUser}
