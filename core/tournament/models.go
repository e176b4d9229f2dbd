package tournament

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tourney/core"
)

// DateLayout is the format of tournament dates.
const DateLayout = "2006-01-02"

type Tournament struct {
	Name    string `json:"name" db:"name"`
	Date    string `json:"date" db:"date"`
	Creator string `json:"-" db:"creator"`
	Rounds  int    `json:"rounds" db:"rounds"`
}

// Entry is the registration of a user in a tournament.
type Entry struct {
	Tournament string `json:"tournament" db:"tournament"`
	Username   string `json:"username" db:"username"`
}

// Details is the summary of a tournament shown on its page.
type Details struct {
	Name    string `json:"name"`
	Date    string `json:"date"`
	Entries int    `json:"entries"`
}

// NewTournament contains information needed to create a new Tournament.
type NewTournament struct {
	Name   string `json:"inputTournamentName" form:"inputTournamentName" validate:"required"`
	Date   string `json:"inputTournamentDate" form:"inputTournamentDate" validate:"required,datetime=2006-01-02"`
	Rounds int    `json:"inputTournamentRounds" form:"inputTournamentRounds" validate:"min=0,max=20"`
}

func (nt *NewTournament) Validate(validate *validator.Validate, svc ServiceInterface) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Date = core.CleanString(nt.Date)

	if err := validate.Struct(nt); err != nil {
		return err
	}

	date, err := time.Parse(DateLayout, nt.Date)
	if err != nil {
		return core.NewValidationError(errInvalidDate, core.FieldError{Field: "inputTournamentDate", Error: errInvalidDate.Error()})
	}
	now := nowFunc().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(today) {
		return core.NewValidationError(errInvalidDate, core.FieldError{Field: "inputTournamentDate", Error: errInvalidDate.Error()})
	}
	return svc.CheckUniqueness(nt.Name)
}

// Application is a request to play in a tournament.
type Application struct {
	Tournament string `json:"tournament" form:"tournament" validate:"required"`
}

func (a *Application) Validate(validate *validator.Validate) error {
	a.Tournament = core.CleanString(a.Tournament)
	return validate.Struct(a)
}

// DefaultMission is the mission of a round the organiser has not set one for.
const DefaultMission = "TBA"

// Mission is the mission played in a round of a tournament. Rounds are numbered from 1.
type Mission struct {
	Tournament string `db:"tournament"`
	Round      int    `db:"round"`
	Mission    string `db:"mission"`
}

// ScoreCategory is a way players score in a tournament, weighted by Percentage.
type ScoreCategory struct {
	Tournament    string `json:"-" db:"tournament"`
	Position      int    `json:"-" db:"position"`
	Name          string `json:"name" db:"name" validate:"notblank,max=50"`
	Percentage    int    `json:"percentage" db:"percentage" validate:"min=1,max=100"`
	PerTournament bool   `json:"per_tournament" db:"per_tournament"`
	MinVal        int    `json:"min_val" db:"min_val" validate:"min=0"`
	MaxVal        int    `json:"max_val" db:"max_val" validate:"gtefield=MinVal"`
}

// RoundsUpdate sets the number of rounds of a tournament.
type RoundsUpdate struct {
	Rounds int `json:"inputRounds" form:"inputRounds" validate:"min=0,max=20"`
}

// MissionsUpdate sets the missions of a tournament, one per round. A blank mission is the DefaultMission.
type MissionsUpdate struct {
	Missions []string `json:"missions" form:"missions" validate:"required,dive,max=100"`
}

func (mu *MissionsUpdate) Validate(validate *validator.Validate) error {
	for i, m := range mu.Missions {
		mu.Missions[i] = core.CleanString(m)
	}
	return validate.Struct(mu)
}

// CategoriesUpdate replaces the score categories of a tournament.
type CategoriesUpdate struct {
	Categories []ScoreCategory `json:"categories" validate:"max=20,dive"`
}

func (cu *CategoriesUpdate) Validate(validate *validator.Validate) error {
	for i := range cu.Categories {
		cu.Categories[i].Name = core.CleanString(cu.Categories[i].Name)
	}
	if err := validate.Struct(cu); err != nil {
		return err
	}

	total := 0
	seen := make(map[string]bool, len(cu.Categories))
	for _, cat := range cu.Categories {
		key := strings.ToLower(cat.Name)
		if seen[key] {
			return core.NewValidationError(fmt.Errorf("Score category %s is listed twice", cat.Name))
		}
		seen[key] = true
		total += cat.Percentage
	}
	if total > 100 {
		return core.NewValidationError(fmt.Errorf("Score category percentages add up to %d. They cannot exceed 100", total))
	}
	return nil
}
