package domain

import (
	"fmt"
	"math/rand/v2"
)

// QuizPalette é a paleta rotativa das opções de quiz.
var QuizPalette = []string{"#2563eb", "#dc2626", "#16a34a", "#d97706", "#7c3aed", "#db2777"}

func PaletteColor(i int) string {
	return QuizPalette[i%len(QuizPalette)]
}

// RandomColor sorteia a cor de uma palavra nova na nuvem.
func RandomColor() string {
	return fmt.Sprintf("#%06x", rand.IntN(0x1000000))
}
