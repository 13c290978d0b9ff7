package users

// PasswordHasher is the credential service the directory hashes and
// verifies passwords with. *credentials.Hasher implements it.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}
