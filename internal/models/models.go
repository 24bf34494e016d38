package models

// This file provides a central import point for all models
// and helpers for generating session secrets

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// AllModels returns all model types for GORM operations
// Note: Migrations are handled by golang-migrate, not GORM AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Course{},
		&Enrollment{},
		&Session{},
		&Attendance{},
		&LoginSession{},
	}
}

// GenerateSecureToken generates a secure random hex token of the given
// character length. A length of 32 carries 128 bits of randomness and
// is what LAB session secrets use.
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, (length+1)/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(bytes)[:length], nil
}

// GeneratePIN generates a uniformly random 6-digit PIN for THEORY
// sessions.
func GeneratePIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900_000))
	if err != nil {
		return "", fmt.Errorf("generate pin: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100_000), nil
}
