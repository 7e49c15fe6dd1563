// Command seed generates a deterministic artist seed file for local
// development and writes it where the indexer expects it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
)

var (
	styles       = []string{"traditional", "realism", "blackwork", "fine_line", "japanese", "neo_traditional", "dotwork", "watercolor"}
	difficulties = []string{"beginner", "intermediate", "advanced"}

	cities = []struct {
		name     string
		postcode string
		location entities.Location
	}{
		{"London", "EC1V 9NR", entities.Location{Latitude: 51.5246, Longitude: -0.0980}},
		{"Manchester", "M1 1AD", entities.Location{Latitude: 53.4772, Longitude: -2.2343}},
		{"Leeds", "LS1 4DT", entities.Location{Latitude: 53.7997, Longitude: -1.5492}},
		{"Bristol", "BS1 4ST", entities.Location{Latitude: 51.4536, Longitude: -2.5915}},
		{"Glasgow", "G1 1XQ", entities.Location{Latitude: 55.8579, Longitude: -4.2430}},
		{"Brighton", "BN1 1AL", entities.Location{Latitude: 50.8229, Longitude: -0.1363}},
	}

	firstNames = []string{"Ash", "Morgan", "Riley", "Jo", "Sam", "Alex", "Frankie", "Charlie", "Robyn", "Dex"}
	lastNames  = []string{"Vale", "Mercer", "Hart", "Kowalski", "Nakamura", "Lindqvist", "Byrne", "Silva", "Okafor", "Reyes"}
	studios    = []string{"Black Lotus", "Iron & Ink", "Needle & Thread", "The Velvet Anchor", "Wolfpack Studio", "Saint Marrow", "Copper Rose"}
)

func main() {
	count := flag.Int("count", 50, "number of artists to generate")
	out := flag.String("out", "seed/artists.json", "output file path")
	seed := flag.Int64("seed", 1, "random seed, fixed for reproducible data")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	artists := make([]*entities.Artist, 0, *count)
	for i := 0; i < *count; i++ {
		artists = append(artists, randomArtist(rng))
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	payload, err := json.MarshalIndent(artists, "", "  ")
	if err != nil {
		log.Fatalf("failed to serialize artists: %v", err)
	}
	if err := os.WriteFile(*out, payload, 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", *out, err)
	}

	log.Printf("wrote %d artists to %s", len(artists), *out)
}

func randomArtist(rng *rand.Rand) *entities.Artist {
	city := cities[rng.Intn(len(cities))]
	name := fmt.Sprintf("%s %s", firstNames[rng.Intn(len(firstNames))], lastNames[rng.Intn(len(lastNames))])

	// Jitter the studio location within roughly a kilometer of the city center.
	location := entities.Location{
		Latitude:  city.location.Latitude + (rng.Float64()-0.5)*0.02,
		Longitude: city.location.Longitude + (rng.Float64()-0.5)*0.02,
	}

	styleCount := 1 + rng.Intn(3)
	artistStyles := make([]string, 0, styleCount)
	for _, idx := range rng.Perm(len(styles))[:styleCount] {
		artistStyles = append(artistStyles, styles[idx])
	}

	diffCount := 1 + rng.Intn(2)
	artistDifficulty := make([]string, 0, diffCount)
	for _, idx := range rng.Perm(len(difficulties))[:diffCount] {
		artistDifficulty = append(artistDifficulty, difficulties[idx])
	}

	reviewCount := rng.Intn(400)
	return &entities.Artist{
		ID:              uuid.NewString(),
		Name:            name,
		StudioName:      studios[rng.Intn(len(studios))],
		Styles:          artistStyles,
		Difficulty:      artistDifficulty,
		City:            city.name,
		Postcode:        city.postcode,
		Location:        location,
		Rating:          3.0 + rng.Float64()*2.0,
		ReviewCount:     reviewCount,
		Popularity:      reviewCount + rng.Intn(200),
		EstablishedYear: 2000 + rng.Intn(24),
		IsActive:        rng.Intn(10) > 0,
		CreatedAt:       time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, rng.Intn(365)),
	}
}
