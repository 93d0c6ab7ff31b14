package entities

import "github.com/Jacobbrewer1/broker/pkg/custom"

// Afk is an away status, cleared on the user's next message.
type Afk struct {
	Reason string          `json:"reason" bson:"reason"`
	Since  custom.Datetime `json:"since" bson:"since"`
}
