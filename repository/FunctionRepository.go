package repository

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateProjectID returns a document id for a new project.
func GenerateProjectID() string {
	return "prj-" + uuid.NewString()
}

// GenerateProjectCode builds the short human-facing code shown on lists and
// reports, e.g. "NH48-2024-7315" for "NH-48 Package 3".
func GenerateProjectCode(name string) string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var letters strings.Builder
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			letters.WriteRune(r)
		}
		if letters.Len() >= 4 {
			break
		}
	}
	prefix := letters.String()
	if prefix == "" {
		prefix = "PRJ"
	}

	return fmt.Sprintf("%s-%d-%04d", prefix, time.Now().Year(), rng.Intn(9000)+1000)
}

// GenerateBOQItemID returns an id for a BOQ line created through the API.
func GenerateBOQItemID() string {
	return "boq-" + uuid.NewString()
}

// GenerateStructureID returns an id for a structure or component row.
func GenerateStructureID(kind string) string {
	return kind + "-" + uuid.NewString()
}

// GenerateMaterialID returns an id for a material created through the API.
// Migrated legacy materials use the epoch-millis scheme instead.
func GenerateMaterialID() string {
	return "mat-" + uuid.NewString()
}
