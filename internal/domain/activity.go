package domain

// Activity is the public view of a catalog entry and its current roster.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	Participants    []string
}

// Has reports whether email is on the roster.
func (a Activity) Has(email string) bool {
	for _, p := range a.Participants {
		if p == email {
			return true
		}
	}
	return false
}

// SeedCatalog returns the activities offered at startup, in display order.
func SeedCatalog() []Activity {
	return []Activity{
		{
			Name:            "Basketball Club",
			Description:     "Play basketball and improve athletic skills",
			Schedule:        "Mondays and Wednesdays, 4:00 PM - 5:30 PM",
			MaxParticipants: 15,
		},
		{
			Name:            "Tennis Team",
			Description:     "Learn tennis techniques and compete in matches",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 10,
		},
		{
			Name:            "Art Studio",
			Description:     "Explore painting, drawing, and sculpture techniques",
			Schedule:        "Wednesdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 18,
		},
		{
			Name:            "Music Band",
			Description:     "Join the school band and perform in concerts",
			Schedule:        "Mondays and Thursdays, 4:00 PM - 5:30 PM",
			MaxParticipants: 25,
		},
		{
			Name:            "Debate Team",
			Description:     "Develop argumentation skills and compete in debates",
			Schedule:        "Tuesdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 16,
		},
		{
			Name:            "Science Club",
			Description:     "Conduct experiments and explore scientific concepts",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 20,
		},
	}
}
