package app

import "github.com/moldworks/moldtrack/internal/keys"

// KeyMap aliases the shared keymap so view code can take it from
// either package.
type KeyMap = keys.KeyMap

// DefaultKeyMap delegates to keys.DefaultKeyMap.
func DefaultKeyMap() *KeyMap {
	return keys.DefaultKeyMap()
}
