package simulation

import (
	"hash/fnv"
	"math/rand/v2"
)

// Cada trial tiene su propio stream PCG derivado de (seed, escenario, trial).
// Así una corrida con seed es bit-idéntica sin importar cuántos workers haya
// ni en qué orden se procesen los chunks.

// trialStream reutiliza un PCG reseteándolo por trial (sin alocar).
type trialStream struct {
	pcg *rand.PCG
	rng *rand.Rand
}

func newTrialStream() *trialStream {
	pcg := rand.NewPCG(0, 0)
	return &trialStream{pcg: pcg, rng: rand.New(pcg)}
}

// reset posiciona el stream en el trial dado.
func (s *trialStream) reset(seed, scenarioKey uint64, trial int) *rand.Rand {
	s.pcg.Seed(splitmix64(seed^scenarioKey), splitmix64(scenarioKey+uint64(trial)))
	return s.rng
}

// scenarioKey hashea el id del escenario (FNV-1a 64).
func scenarioKey(id string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64()
}

// splitmix64 dispersa seeds consecutivos.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
