package visitors

import "hash/fnv"

// Alias words. Both lists have the same length so that every 32-bit hash
// maps onto a distinct adjective and animal pair.

// aliasAdjectives grouped roughly by temperament.
var aliasAdjectives = []string{
	"Curious", "Happy", "Clever", "Wise", "Playful", "Brave", "Swift", "Gentle", "Smart", "Busy",
	"Daring", "Bold", "Lively", "Vibrant", "Agile", "Nimble", "Quick", "Bright", "Radiant", "Gleaming",
	"Cheerful", "Jolly", "Creative", "Inventive", "Elegant", "Graceful", "Friendly", "Kind", "Warm", "Cordial",
	"Magical", "Mystic", "Charming", "Peaceful", "Calm", "Serene", "Quiet", "Hidden", "Silent", "Masked",
}

// aliasAnimals: land, then sea, then sky.
var aliasAnimals = []string{
	"Panda", "Fox", "Owl", "Otter", "Lion", "Eagle", "Deer", "Raven", "Beaver", "Koala",
	"Sloth", "Hamster", "Cat", "Bear", "Penguin", "Parrot", "Giraffe", "Raccoon", "Meerkat", "Goat",
	"Dolphin", "Whale", "Seahorse", "Turtle", "Octopus", "Squid", "Shark", "Seal", "Walrus", "Crab",
	"Falcon", "Hawk", "Heron", "Swan", "Crane", "Finch", "Sparrow", "Dove", "Lynx", "Wolf",
}

// VisitorAlias returns a readable "Adjective Animal" label for a visitor id.
// The label is for display only and does not identify anything on its own.
func VisitorAlias(visitorID string) string {
	h := fnv.New32a()
	h.Write([]byte(visitorID))
	adjIndex, animalIndex := aliasIndices(h.Sum32())
	return aliasAdjectives[adjIndex] + " " + aliasAnimals[animalIndex]
}

// aliasIndices splits a hash into word list positions. The arithmetic stays
// unsigned so the result is the same on 32-bit platforms.
func aliasIndices(sum uint32) (adjective, animal int) {
	adjectives := uint32(len(aliasAdjectives))
	animals := uint32(len(aliasAnimals))
	return int(sum % adjectives), int((sum / adjectives) % animals)
}
