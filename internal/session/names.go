package session

import (
	"fmt"
	"math/rand/v2"
)

// displayNames is the fixed word list anonymous visitors draw their display
// name from. A numeric suffix keeps collisions readable ("Walrus-482").
var displayNames = []string{
	"Badger",
	"Falcon",
	"Gecko",
	"Heron",
	"Lynx",
	"Marmot",
	"Narwhal",
	"Otter",
	"Puffin",
	"Raccoon",
	"Stoat",
	"Walrus",
}

// randomDisplayName picks a word from the list and appends a random
// three-digit suffix.
func randomDisplayName() string {
	word := displayNames[rand.IntN(len(displayNames))]
	return fmt.Sprintf("%s-%03d", word, rand.IntN(1000))
}
