package ids

import (
	"math/rand/v2"
	"strconv"
	"sync"
)

// CodeGenerator sorteia códigos numéricos de tamanho fixo, sem zero à esquerda.
type CodeGenerator struct {
	mu     sync.Mutex
	rnd    *rand.Rand
	length int
}

func NewCodeGenerator(length int) *CodeGenerator {
	return NewCodeGeneratorWithSource(length, rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func NewCodeGeneratorWithSource(length int, src rand.Source) *CodeGenerator {
	if length <= 0 {
		length = 4
	}
	return &CodeGenerator{rnd: rand.New(src), length: length}
}

func (g *CodeGenerator) Length() int { return g.length }

func (g *CodeGenerator) Next() string {
	min := pow10(g.length - 1)
	max := pow10(g.length) - 1

	g.mu.Lock()
	n := min + g.rnd.Int64N(max-min+1)
	g.mu.Unlock()

	return strconv.FormatInt(n, 10)
}

// ValidCode confere se o código tem exatamente length dígitos.
func ValidCode(code string, length int) bool {
	if len(code) != length {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func pow10(n int) int64 {
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}
