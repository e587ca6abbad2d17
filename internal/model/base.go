package model

import "github.com/google/uuid"

// ensureID assigns a fresh UUID to rows created without one. The ids are
// generated in Go so that sqlite and postgres behave the same.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
