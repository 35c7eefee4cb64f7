package utils

import (
	rndm "math/rand"

	"github.com/google/uuid"
)

var digitRunes = []rune("0123456789")

// GenerateRandomDigitString creates a random numeric string of length n.
func GenerateRandomDigitString(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = digitRunes[rndm.Intn(len(digitRunes))]
	}
	return string(b)
}

func GetUUID() string {
	return uuid.New().String()
}
