package mixtape

// Song is one entry of a mixtape. Ordering is insertion order.
type Song struct {
	Name       string  `json:"name"`
	Artist     string  `json:"artist"`
	PreviewURL *string `json:"preview_url"`
	ArtworkURL *string `json:"artwork_url"`
}

// Mixtape is a user-owned ordered collection of songs, created and
// updated as a unit.
type Mixtape struct {
	ID       int64   `json:"id"`
	UserID   int64   `json:"user_id"`
	Name     string  `json:"name"`
	Bio      string  `json:"bio"`
	PhotoURL *string `json:"photo_url"`
	Source   string  `json:"source"`
	Songs    []Song  `json:"songs"`
}
