package domain

import "time"

// User is the locally persisted profile for an externally authenticated
// principal. The subject identifier comes from the identity provider
// and is never minted here.
type User struct {
	Subject   string    `bson:"_id" json:"-"`
	Username  string    `bson:"username" json:"username"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Address   string    `bson:"address,omitempty" json:"address,omitempty"`
	Role      string    `bson:"role" json:"role"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
