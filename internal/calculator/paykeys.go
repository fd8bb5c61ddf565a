package calculator

// ResolvePaymentKeys fills display names and the payee's payment key on each
// suggestion.
func ResolvePaymentKeys(suggestions []Suggestion, dir *Directory) {
	for i := range suggestions {
		s := &suggestions[i]
		s.FromName = dir.Name(s.Key.From)
		s.ToName = dir.Name(s.Key.To)
		s.PaymentKey = dir.PaymentKey(s.Key.To)
	}
}
