package domain

// UserInfo is the key material the backend returns for the signed-in user. The common key
// is wrapped with the account public key; the tag key is wrapped with the common key.
type UserInfo struct {
	UserID             string
	CommonKeyID        string
	EncryptedCommonKey EncryptedKey
	EncryptedTagKey    EncryptedKey
}

// Registration is what a new account uploads: its public key and the freshly generated
// common and tag keys in wrapped form.
type Registration struct {
	PublicKey          []byte
	CommonKeyID        string
	EncryptedCommonKey EncryptedKey
	EncryptedTagKey    EncryptedKey
}
