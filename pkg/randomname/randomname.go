package randomname

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

var adjectives = []string{
	"agile", "ancient", "balanced", "bold", "brave", "bright", "calm",
	"charming", "cheerful", "clever", "cosmic", "crisp", "curious", "daring",
	"dazzling", "eager", "elegant", "epic", "fearless", "fierce", "focused",
	"frosty", "gentle", "gleaming", "golden", "graceful", "happy", "heroic",
	"humble", "jolly", "kind", "lively", "luminous", "majestic", "mighty",
	"mindful", "modern", "noble", "peaceful", "playful", "proud", "quick",
	"quirky", "radiant", "royal", "sage", "serene", "sharp", "silly", "sleek",
	"stellar", "sunny", "swift", "tidy", "tranquil", "vivid", "warm", "wise",
	"witty", "zesty",
}

var nouns = []string{
	"badger", "bear", "beaver", "bison", "bobcat", "camel", "canary",
	"cardinal", "cheetah", "chipmunk", "condor", "crane", "crow", "deer",
	"dolphin", "eagle", "elk", "falcon", "ferret", "finch", "firefly",
	"flamingo", "fox", "gazelle", "gecko", "giraffe", "goose", "hawk",
	"hedgehog", "heron", "hummingbird", "ibis", "jackal", "jaguar",
	"kestrel", "kingfisher", "kiwi", "lemur", "lynx", "magpie", "manatee",
	"marlin", "meerkat", "narwhal", "newt", "ocelot", "okapi", "orca",
	"osprey", "otter", "owl", "panda", "panther", "parrot", "pelican",
	"penguin", "puffin", "quokka", "raven", "robin", "seal", "sparrow",
	"swan", "tiger", "toucan", "walrus", "wolf", "wombat", "wren", "yak",
}

var (
	mu   sync.Mutex
	used = make(map[string]struct{})
)

// Generate returns a unique "adjective-noun-xxxxxx" name with a random
// 24-bit hex suffix. A non-nil check can veto candidates.
func Generate(check func(name string) bool) string {
	return generate(check, true)
}

// GenerateSimple returns a unique "adjective-noun" name. The namespace is
// small, so long-lived heavy users should prefer Generate.
func GenerateSimple(check func(name string) bool) string {
	return generate(check, false)
}

func generate(check func(string) bool, withSuffix bool) string {
	for {
		mu.Lock()
		candidate := adjectives[rand.IntN(len(adjectives))] + "-" + nouns[rand.IntN(len(nouns))]
		if withSuffix {
			candidate = fmt.Sprintf("%s-%06x", candidate, rand.IntN(1<<24))
		}
		if _, taken := used[candidate]; taken {
			mu.Unlock()
			continue
		}
		// Reserve before running the callback so concurrent calls cannot
		// hand out the same candidate.
		used[candidate] = struct{}{}
		mu.Unlock()

		if check != nil && !check(candidate) {
			mu.Lock()
			delete(used, candidate)
			mu.Unlock()
			continue
		}
		return candidate
	}
}

// Reset forgets every name handed out so far.
func Reset() {
	mu.Lock()
	used = make(map[string]struct{})
	mu.Unlock()
}
