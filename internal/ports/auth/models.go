package auth

// Claims es la identidad del caller resuelta a partir del token.
type Claims struct {
	UserID   string
	Email    string
	TenantID string // solo lo informa el verificador remoto
}
