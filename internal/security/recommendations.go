package security

// categoryRecommendations maps each detection category to its fixed
// recommendation template. Address and location share one template since
// both expose whereabouts.
var categoryRecommendations = map[Category]Recommendation{
	CategoryCreditCard: {
		Title:       "Remove credit card information",
		Description: "Credit card numbers should never be shared in chat messages. Remove all instances of credit card numbers from your conversations.",
	},
	CategoryPhone: {
		Title:       "Be cautious with phone numbers",
		Description: "Phone numbers can be used for identity theft or unwanted contact. Consider removing or obfuscating phone numbers in your chat.",
	},
	CategoryEmail: {
		Title:       "Protect email addresses",
		Description: "Email addresses can lead to spam or phishing attacks. Be careful when sharing email addresses in chat.",
	},
	CategoryDate: {
		Title:       "Mind date references",
		Description: "Specific dates can reveal schedules, travel plans, or personal events. Share them only with people who need to know.",
	},
	CategoryAddress: {
		Title:       "Limit location sharing",
		Description: "Sharing addresses or specific locations can compromise your privacy and safety. Avoid sharing precise location information.",
	},
	CategoryLocation: {
		Title:       "Limit location sharing",
		Description: "Sharing addresses or specific locations can compromise your privacy and safety. Avoid sharing precise location information.",
	},
	CategoryURL: {
		Title:       "Check shared links",
		Description: "Links can point to pages carrying personal data or tracking parameters. Review shared URLs before passing them on.",
	},
}

// generalRecommendations are appended whenever any finding exists.
var generalRecommendations = []Recommendation{
	{
		Title:       "Review chat for sensitive information",
		Description: "Regularly review your chat history and remove any sensitive personal information that doesn't need to be there.",
	},
	{
		Title:       "Use secure communication channels",
		Description: "For highly sensitive information, consider using end-to-end encrypted communication channels or ephemeral messaging.",
	},
}

// recommendations derives the deterministic recommendation list from the
// union of categories across all findings. Duplicate templates (address
// and location share one) are emitted once.
func recommendations(findings []Finding) []Recommendation {
	recs := []Recommendation{}
	if len(findings) == 0 {
		return recs
	}

	seenTitles := make(map[string]bool)
	for _, category := range sortedCategoryUnion(findings) {
		rec, ok := categoryRecommendations[category]
		if !ok || seenTitles[rec.Title] {
			continue
		}
		seenTitles[rec.Title] = true
		recs = append(recs, rec)
	}

	return append(recs, generalRecommendations...)
}
