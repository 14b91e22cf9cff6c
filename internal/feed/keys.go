package feed

import "strconv"

// KeyPrefixBookmarkFeed is the prefix for per-account bookmark feed keys
const KeyPrefixBookmarkFeed = "feed:bookmark:"

// Key returns the Redis key of an account's bookmark feed
func Key(accountID int64) string {
	return KeyPrefixBookmarkFeed + strconv.FormatInt(accountID, 10)
}
