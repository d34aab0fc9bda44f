package ports

// SecretHasher is a one-way transform for account passwords.
type SecretHasher interface {
	Hash(plaintext string) (string, error)
}
