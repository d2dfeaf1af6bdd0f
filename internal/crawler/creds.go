package crawler

// ActiveToken selects the scraper credential for a day of month: the primary
// token covers days 1-15, the secondary the rest of the month. An absent
// secondary falls back to the primary so rotation degrades to a single key.
func ActiveToken(dayOfMonth int, primary, secondary string) string {
	if dayOfMonth <= 15 {
		return primary
	}
	if secondary == "" {
		return primary
	}
	return secondary
}
