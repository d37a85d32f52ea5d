package main

import "crypto/rand"

const roomCodeLen = 5
const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRoomCode returns a short join code like "K3VQ9"
func GenerateRoomCode() string {
	b := make([]byte, roomCodeLen)
	rand.Read(b)
	for i := range b {
		b[i] = roomCodeAlphabet[int(b[i])%len(roomCodeAlphabet)]
	}
	return string(b)
}
