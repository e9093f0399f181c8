package seeder

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// profileNamespace scopes generated profile ids so reseeding the same file
// produces the same ids.
var profileNamespace = uuid.MustParse("6f1c3b52-8d0e-4b8a-9d4f-2a7e51c0b9e3")

// ProfileFile is the YAML seed format. Rates are in major currency units.
type ProfileFile struct {
	Freelancers []Profile `yaml:"freelancers"`
}

type Profile struct {
	ID                       string   `yaml:"id"`
	Title                    string   `yaml:"title"`
	Description              string   `yaml:"description"`
	Specializations          []string `yaml:"specializations"`
	Skills                   []string `yaml:"skills"`
	ExperienceLevel          string   `yaml:"experience_level"`
	HourlyRateMin            *float64 `yaml:"hourly_rate_min"`
	HourlyRateMax            *float64 `yaml:"hourly_rate_max"`
	AvailabilityHoursPerWeek *int     `yaml:"availability_hours_per_week"`
	PortfolioURL             string   `yaml:"portfolio_url"`
	GithubURL                string   `yaml:"github_url"`
	LinkedinURL              string   `yaml:"linkedin_url"`
	Location                 string   `yaml:"location"`
	Timezone                 string   `yaml:"timezone"`
	Languages                []string `yaml:"languages"`
	Rating                   float64  `yaml:"rating"`
	ReviewsCount             int      `yaml:"reviews_count"`
	ProjectsCompleted        int      `yaml:"projects_completed"`
	ResponseTimeHours        *int     `yaml:"response_time_hours"`
	Available                *bool    `yaml:"available"`
	Verified                 bool     `yaml:"verified"`
}

func LoadProfiles(path string) ([]Profile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile file: %w", err)
	}
	defer file.Close()

	return DecodeProfiles(file)
}

func DecodeProfiles(r io.Reader) ([]Profile, error) {
	var pf ProfileFile
	if err := yaml.NewDecoder(r).Decode(&pf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}
	return pf.Freelancers, nil
}

// ToFreelancer converts a seed profile into a validated model. Missing ids are
// derived from title and location; availability defaults to true.
func (cp *ContentProcessor) ToFreelancer(p Profile) (models.Freelancer, error) {
	title := strings.TrimSpace(p.Title)
	location := strings.TrimSpace(p.Location)

	id := strings.TrimSpace(p.ID)
	if id == "" {
		id = uuid.NewSHA1(profileNamespace, []byte(strings.ToLower(title+"|"+location))).String()
	} else if _, err := uuid.Parse(id); err != nil {
		return models.Freelancer{}, fmt.Errorf("profile %q: id must be a uuid: %w", title, err)
	}

	specializations := make([]string, 0, len(p.Specializations))
	for _, s := range cp.NormalizeList(p.Specializations) {
		specializations = append(specializations, strings.ToLower(s))
	}

	available := true
	if p.Available != nil {
		available = *p.Available
	}

	f := models.Freelancer{
		ID:                       id,
		Title:                    title,
		Description:              cp.CleanContent(p.Description),
		Specializations:          models.StringArray(specializations),
		Skills:                   models.StringArray(cp.NormalizeList(p.Skills)),
		ExperienceLevel:          strings.ToLower(strings.TrimSpace(p.ExperienceLevel)),
		HourlyRateMin:            toCents(p.HourlyRateMin),
		HourlyRateMax:            toCents(p.HourlyRateMax),
		AvailabilityHoursPerWeek: p.AvailabilityHoursPerWeek,
		PortfolioURL:             p.PortfolioURL,
		GithubURL:                p.GithubURL,
		LinkedinURL:              p.LinkedinURL,
		Location:                 location,
		Timezone:                 p.Timezone,
		Languages:                models.StringArray(cp.NormalizeList(p.Languages)),
		Rating:                   p.Rating,
		ReviewsCount:             p.ReviewsCount,
		ProjectsCompleted:        p.ProjectsCompleted,
		ResponseTimeHours:        p.ResponseTimeHours,
		IsAvailable:              available,
		IsVerified:               p.Verified,
	}

	if err := f.Validate(); err != nil {
		return models.Freelancer{}, fmt.Errorf("profile %q: %w", title, err)
	}
	return f, nil
}

func toCents(rate *float64) *int {
	if rate == nil {
		return nil
	}
	cents := int(math.Round(*rate * 100))
	return &cents
}
