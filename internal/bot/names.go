package bot

import (
	"math/rand"
	"sync/atomic"
)

var botIDCounter int64

// NextID hands out user ids for automated seats. They are negative so they
// never collide with database user ids.
func NextID() int64 {
	return atomic.AddInt64(&botIDCounter, -1)
}

var botNames = []string{
	"Bot_Alpha", "Bot_Beta", "Bot_Gamma", "Bot_Delta", "Bot_Epsilon",
	"Bot_Zeta", "Bot_Eta", "Bot_Theta", "Bot_Iota", "Bot_Kappa",
	"Bot_Lambda", "Bot_Mu", "Bot_Nu", "Bot_Xi", "Bot_Omicron",
	"Bot_Pi", "Bot_Rho", "Bot_Sigma", "Bot_Tau", "Bot_Upsilon",
	"Bot_Phi", "Bot_Chi", "Bot_Psi", "Bot_Omega",
	"Bot_Ace", "Bot_King", "Bot_Queen", "Bot_Jack", "Bot_Joker",
	"Bot_Shark", "Bot_Tiger", "Bot_Dragon", "Bot_Phoenix", "Bot_Storm",
}

// Names draws n distinct names from the pool.
func Names(rng *rand.Rand, n int) []string {
	perm := rng.Perm(len(botNames))
	if n > len(perm) {
		n = len(perm)
	}
	out := make([]string, n)
	for i := range out {
		out[i] = botNames[perm[i]]
	}
	return out
}
