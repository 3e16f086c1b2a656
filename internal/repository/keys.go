package repository

// Document keys in the backing store. One document per user account,
// profile and conversation index, one per conversation message log, and
// a single global directory listing.
const directoryKey = "users"

// casAttempts bounds the read-modify-write retry loop on version
// conflicts before the conflict is reported to the caller.
const casAttempts = 3

func accountKey(userKey string) string {
	return "account:" + userKey
}

func profileKey(userKey string) string {
	return "profile:" + userKey
}

func conversationsKey(userKey string) string {
	return "conversations:" + userKey
}

func messagesKey(conversationID string) string {
	return "messages:" + conversationID
}
