package app

import (
	"fmt"
	"math/rand"
	"net/url"
)

var avatarStyles = []string{
	"adventurer", "avataaars", "big-smile", "bottts", "fun-emoji",
	"micah", "miniavs", "open-peeps", "personas", "pixel-art",
}

// AvatarRef picks a random avatar style for players that did not bring one.
// The seed keeps the image stable per player across sessions.
func AvatarRef(rnd *rand.Rand, seed string) string {
	style := avatarStyles[rnd.Intn(len(avatarStyles))]
	return fmt.Sprintf("https://api.dicebear.com/7.x/%s/svg?seed=%s", style, url.QueryEscape(seed))
}
