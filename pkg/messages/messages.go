package messages

// Generic replies.
const (
	// ErrUserErrorProcessing is sent when something went wrong talking to Discord or the store.
	ErrUserErrorProcessing = "Something went wrong processing your request. Please try again later."

	// ErrNotInGuild is sent when a guild-only command is used in a DM.
	ErrNotInGuild = "This command can only be used in a server."

	// ErrNotTicketChannel is sent when a ticket command is used outside a ticket.
	ErrNotTicketChannel = "This command can only be used inside a ticket channel."

	// UsagePrefix prefixes the usage hint for a command.
	UsagePrefix = "Usage: "
)

// Key redemption.
const (
	InvalidKey        = "That key is not valid."
	KeyAlreadyUsed    = "That key has already been redeemed."
	KeyRedeemed       = "Key redeemed (**%s**). Check your DMs to pick your mode."
	KeyRedeemedNoDM   = "Key redeemed (**%s**). I couldn't DM you, so reply here with `1` for ticket or `2` for middleman."
	RedeemDM          = "Thanks for redeeming a **%s** key!\nReply with `1` to unlock the ticket bot or `2` to unlock the middleman bot."
	ModeSelected      = "You unlocked the **%s** bot. Run `%sshazam` in your server to set it up."
	ModeNotRedeemed   = "You need to redeem a key first with `%sredeem <key>`."
	ModeNotSelected   = "Pick your mode first by replying `1` (ticket) or `2` (middleman)."
	ModeExpired       = "Your key has expired. Redeem a new one with `%sredeem <key>`."
	ModeTicketName    = "ticket"
	ModeMiddlemanName = "middleman"
)

// Setup dialogue.
const (
	SetupTimeout        = "Setup timed out. Run the command again to continue."
	SetupCancelled      = "Setup cancelled."
	SetupComplete       = "Setup complete! Use `%sticket1` to post the panel."
	SetupInvalidLink    = "The verification link must start with `https://`. Try again."
	SetupPromptTemplate = "**Step %d/%d:** %s\nType `cancel` to stop."
)

// Tickets.
const (
	PanelTicketTitle      = "Support Tickets"
	PanelTicketBody       = "Need help? Press the button below to open a private ticket with our staff."
	PanelMiddlemanTitle   = "Middleman Service"
	PanelMiddlemanBody    = "Trading with someone? Press the button below to request a middleman."
	PanelRequestLabel     = "Request"
	TicketCreated         = "Your ticket has been created: <#%s>"
	TicketWelcome         = "<@%s> welcome! A staff member will be with you shortly."
	TicketNotMiddleman    = "Only <@&%s> holders can do that."
	TicketAlreadyClaimed  = "This ticket is already claimed by <@%s>."
	TicketNotClaimed      = "This ticket has not been claimed."
	TicketNotAuthorized   = "You are not allowed to do that in this ticket."
	TicketClaimed         = "<@%s> has claimed this ticket."
	TicketUnclaimed       = "<@%s> unclaimed this ticket."
	TicketTransferred     = "This ticket was transferred to <@%s>."
	TicketTransferNoop    = "<@%s> already owns this ticket."
	TicketTargetNotMM     = "<@%s> is not a middleman."
	TicketAlreadyAdded    = "<@%s> is already in this ticket."
	TicketAdded           = "<@%s> was added to this ticket."
	TicketTransferHint    = "Use `%stransfer @user` to transfer this ticket."
	TicketAddHint         = "Use `%sadd @user` to add someone to this ticket."
	TicketNoSetup         = "This server has not been set up yet. Run `%sshazam` first."
	TranscriptHeader      = "Transcript for <#%s> (opened by <@%s>)"
	InvalidUserReference  = "Mention a user or give their ID."
	ControlsClaimLabel    = "Claim"
	ControlsUnclaimLabel  = "Unclaim"
	ControlsCloseLabel    = "Close"
	ControlsTransferLabel = "Transfer"
	ControlsAddLabel      = "Add"
)

// Social features.
const (
	AfkSet          = "<@%s> is now AFK: %s"
	AfkDefault      = "AFK"
	AfkCleared      = "Welcome back <@%s>, I removed your AFK."
	AfkNotice       = "<@%s> is AFK: %s (since <t:%d:R>)"
	VouchAdded      = "<@%s> now has %d vouches."
	VouchSelf       = "You can't vouch for yourself."
	VouchCount      = "<@%s> has %d vouches."
	DmOwnerOnly     = "Only the bot owner can use this command."
	DmSent          = "Sent to %d members (%d failed)."
	HelpHeader      = "**Commands**"
)
