package domain

// User is an account used purely as an identity anchor for token issuance.
// Users own no catalog entities and are immutable after creation.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	FavoriteGenre string `json:"favorite_genre"`
}
