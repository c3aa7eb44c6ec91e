package common

// InvitePrefix starts every project invite token: invite_<projectID>.
const InvitePrefix = "invite_"

// DateLayout is the storage layout of deadlines. Lexical order of values in
// this layout equals chronological order.
const DateLayout = "2006-01-02"
