package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/medwhisper/risk-engine/internal/domain"
)

// Specialist is one entry of the referral directory.
type Specialist struct {
	Name            string  `json:"name"`
	Specialty       string  `json:"specialty"`
	City            string  `json:"city"`
	Rating          float64 `json:"rating"`
	ExperienceYears int     `json:"experience_years"`
	Fee             float64 `json:"fee"`
}

// diseaseSpecialty maps a disease to the specialty handling referrals for it.
var diseaseSpecialty = map[string]string{
	domain.DiseaseDiabetes:     "endocrinologist",
	domain.DiseaseHypertension: "cardiologist",
	domain.DiseaseCardiac:      "cardiologist",
	domain.DiseaseLiver:        "hepatologist",
	domain.DiseaseMentalHealth: "psychiatrist",
}

// Suggester serves specialist referrals from a CSV directory loaded at
// startup. An empty or missing directory disables suggestions without
// failing startup.
type Suggester struct {
	logger      *logrus.Logger
	specialists []Specialist
}

// NewSuggester loads the specialist directory. Rows that fail to parse
// are logged and dropped.
func NewSuggester(logger *logrus.Logger, csvPath string) *Suggester {
	s := &Suggester{logger: logger}
	if csvPath == "" {
		return s
	}

	specialists, err := loadSpecialists(csvPath)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"path":  csvPath,
			"error": err.Error(),
		}).Warn("Specialist directory unavailable, suggestions disabled")
		return s
	}
	s.specialists = specialists
	logger.WithField("count", len(specialists)).Info("Specialist directory loaded")
	return s
}

// loadSpecialists parses the directory CSV. Expected header:
// name,specialty,city,rating,experience_years,fee.
func loadSpecialists(path string) ([]Specialist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open specialist directory: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	// Tolerate ragged rows; they are skipped below.
	reader.FieldsPerRecord = -1

	// Header row
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read directory header: %w", err)
	}

	var out []Specialist
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read directory row: %w", err)
		}
		if len(row) < 6 {
			continue
		}
		rating, err1 := strconv.ParseFloat(row[3], 64)
		experience, err2 := strconv.Atoi(row[4])
		fee, err3 := strconv.ParseFloat(row[5], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		out = append(out, Specialist{
			Name:            row[0],
			Specialty:       strings.ToLower(strings.TrimSpace(row[1])),
			City:            strings.ToLower(strings.TrimSpace(row[2])),
			Rating:          rating,
			ExperienceYears: experience,
			Fee:             fee,
		})
	}
	return out, nil
}

// Suggest returns up to limit specialists for a disease in a city,
// best rated first, more experienced first on equal rating. A maxFee of
// zero means no fee limit.
func (s *Suggester) Suggest(disease, city string, maxFee float64, limit int) ([]Specialist, error) {
	specialty, ok := diseaseSpecialty[disease]
	if !ok {
		return nil, fmt.Errorf("no specialty mapped for disease: %s", disease)
	}
	if limit <= 0 {
		limit = 5
	}
	city = strings.ToLower(strings.TrimSpace(city))

	var matches []Specialist
	for _, sp := range s.specialists {
		if sp.Specialty != specialty {
			continue
		}
		if city != "" && sp.City != city {
			continue
		}
		if maxFee > 0 && sp.Fee > maxFee {
			continue
		}
		matches = append(matches, sp)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Rating != matches[j].Rating {
			return matches[i].Rating > matches[j].Rating
		}
		return matches[i].ExperienceYears > matches[j].ExperienceYears
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
