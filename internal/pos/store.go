package pos

// Store identifies the business on receipts and WhatsApp messages.
type Store struct {
	Name        string
	Phone       string
	CountryCode string
	Currency    string
}
