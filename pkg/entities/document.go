package entities

// Document is the whole persisted state of the bot.
type Document struct {
	// UsedKeys are the redeemed keys. Append only.
	UsedKeys []string `json:"usedKeys" bson:"used_keys"`

	// UserModes are keyed by user ID.
	UserModes map[string]*UserMode `json:"userModes" bson:"user_modes"`

	// Guilds are keyed by guild ID.
	Guilds map[string]*Guild `json:"guilds" bson:"guilds"`

	// Tickets are keyed by channel ID.
	Tickets map[string]*Ticket `json:"tickets" bson:"tickets"`

	// Vouches are keyed by user ID.
	Vouches map[string]int `json:"vouches" bson:"vouches"`

	// Afk is keyed by user ID.
	Afk map[string]*Afk `json:"afk" bson:"afk"`
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	d := new(Document)
	d.Normalize()
	return d
}

// Normalize replaces nil collections with empty ones so a loaded document can
// be mutated without nil checks.
func (d *Document) Normalize() {
	if d.UsedKeys == nil {
		d.UsedKeys = make([]string, 0)
	}
	if d.UserModes == nil {
		d.UserModes = make(map[string]*UserMode)
	}
	if d.Guilds == nil {
		d.Guilds = make(map[string]*Guild)
	}
	if d.Tickets == nil {
		d.Tickets = make(map[string]*Ticket)
	}
	if d.Vouches == nil {
		d.Vouches = make(map[string]int)
	}
	if d.Afk == nil {
		d.Afk = make(map[string]*Afk)
	}
	for _, t := range d.Tickets {
		if t.AddedUsers == nil {
			t.AddedUsers = make([]string, 0)
		}
	}
}

// Guild returns the guild, creating an empty one if it does not exist.
func (d *Document) Guild(guildID string) *Guild {
	g, ok := d.Guilds[guildID]
	if !ok {
		g = new(Guild)
		d.Guilds[guildID] = g
	}
	return g
}
